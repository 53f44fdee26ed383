package cache

import "time"

// Default freshness windows.
const (
	DefaultFreshFor    = 5 * time.Minute
	DefaultExpireAfter = 10 * time.Minute
)

// Freshness classifies a snapshot by age.
type Freshness int

const (
	Missing Freshness = iota
	Fresh
	Stale
	Expired
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Expired:
		return "expired"
	default:
		return "missing"
	}
}

// Policy holds the freshness windows. A snapshot younger than FreshFor is
// fresh, one younger than ExpireAfter is stale, anything older is expired.
type Policy struct {
	FreshFor    time.Duration
	ExpireAfter time.Duration
}

// DefaultPolicy returns the 5 and 10 minute windows.
func DefaultPolicy() Policy {
	return Policy{FreshFor: DefaultFreshFor, ExpireAfter: DefaultExpireAfter}
}

// Classify reports the freshness of c at now. A nil or empty snapshot is
// Missing.
func (p Policy) Classify(c *SectionCache, now time.Time) Freshness {
	if c.Empty() {
		return Missing
	}
	age := c.Age(now)
	switch {
	case age < p.FreshFor:
		return Fresh
	case age < p.ExpireAfter:
		return Stale
	default:
		return Expired
	}
}
