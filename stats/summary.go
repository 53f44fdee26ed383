// Package stats turns the metrics corpus into dashboard figures.
package stats

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/bassamadnan/lumimail/gmail"
)

const topN = 10

// Count is one labelled bar of a breakdown.
type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary aggregates a list of emails.
type Summary struct {
	Total           int `json:"total"`
	Unread          int `json:"unread"`
	Starred         int `json:"starred"`
	Archived        int `json:"archived"`
	WithAttachments int `json:"withAttachments"`
	Tracked         int `json:"tracked"`

	TopDomains []Count `json:"topDomains"`
	TopSenders []Count `json:"topSenders"`

	// ByHour has 24 entries, ByWeekday 7 starting on Sunday, ByMonth 12.
	ByHour    []Count `json:"byHour"`
	ByWeekday []Count `json:"byWeekday"`
	ByMonth   []Count `json:"byMonth"`

	// Complete reports whether the corpus covered the whole mailbox.
	Complete bool `json:"complete"`
}

// Percent returns n as a share of Total.
func (s Summary) Percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(s.Total)
}

// Summarize computes the figures for emails. Time buckets use loc; nil
// means UTC.
func Summarize(emails []gmail.Email, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	s := Summary{
		Total:     len(emails),
		ByHour:    make([]Count, 24),
		ByWeekday: make([]Count, 7),
		ByMonth:   make([]Count, 12),
	}
	for h := range s.ByHour {
		s.ByHour[h].Name = time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:00")
	}
	for d := range s.ByWeekday {
		s.ByWeekday[d].Name = time.Weekday(d).String()[:3]
	}
	for m := range s.ByMonth {
		s.ByMonth[m].Name = time.Month(m + 1).String()[:3]
	}

	domains := make(map[string]int)
	senders := make(map[string]int)
	for _, e := range emails {
		if !e.IsRead {
			s.Unread++
		}
		if e.IsStarred {
			s.Starred++
		}
		if e.IsArchived {
			s.Archived++
		}
		if e.HasAttachments {
			s.WithAttachments++
		}
		if e.IsTracked {
			s.Tracked++
		}

		if d := domain(e.FromEmail); d != "" {
			domains[d]++
		}
		if e.FromName != "" {
			senders[e.FromName]++
		}

		if !e.Date.IsZero() {
			t := e.Date.In(loc)
			s.ByHour[t.Hour()].Value++
			s.ByWeekday[t.Weekday()].Value++
			s.ByMonth[t.Month()-1].Value++
		}
	}

	s.TopDomains = top(domains, topN)
	s.TopSenders = top(senders, topN)
	return s
}

func domain(addr string) string {
	at := strings.LastIndexByte(addr, '@')
	if at == -1 || at == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[at+1:])
}

// top returns the n largest counts, ties ordered by name.
func top(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for name, v := range counts {
		out = append(out, Count{Name: name, Value: v})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
