package mailbox

import (
	"errors"
	"fmt"
	"strings"
)

// Section is a logical mailbox view with its own cache entry and query.
type Section string

const (
	Inbox     Section = "inbox"
	Sent      Section = "sent"
	Starred   Section = "starred"
	Archive   Section = "archive"
	Trash     Section = "trash"
	Spam      Section = "spam"
	Drafts    Section = "drafts"
	Important Section = "important"
	Unread    Section = "unread"
	Snoozed   Section = "snoozed"
	Scheduled Section = "scheduled"
	Tracked   Section = "tracked"
	All       Section = "all"
	Metrics   Section = "metrics"
)

const (
	interactivePageSize = 20
	// Gmail allows up to 500; 100 keeps a single detail round reasonable.
	exhaustivePageSize = 100
)

var ErrUnknownSection = errors.New("unknown section")

var queries = map[Section]string{
	Inbox:     "in:inbox",
	Sent:      "in:sent",
	Starred:   "is:starred",
	Archive:   "-in:inbox -in:trash -in:spam -in:sent -in:draft",
	Trash:     "in:trash",
	Spam:      "in:spam",
	Drafts:    "in:draft",
	Important: "is:important",
	Unread:    "is:unread",
	Snoozed:   "in:snoozed",
	Scheduled: "in:scheduled",
	Tracked:   "label:tracked",
	All:       "",
	Metrics:   "",
}

// Sections lists the sections in sidebar order.
var Sections = []Section{
	Inbox, Unread, Starred, Important, Sent, Drafts, Scheduled,
	Snoozed, Archive, Tracked, Spam, Trash, All, Metrics,
}

// Parse maps a user-supplied name onto a known Section.
func Parse(name string) (Section, error) {
	s := Section(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := queries[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
	}
	return s, nil
}

// Query returns the Gmail search query for the section. The "all" and
// metrics views have no filter.
func (s Section) Query() string {
	return queries[s]
}

// PageSize is the number of message IDs requested per list call.
func (s Section) PageSize() int64 {
	if s.Exhaustive() {
		return exhaustivePageSize
	}
	return interactivePageSize
}

// Exhaustive reports whether the section wants the whole corpus rather
// than a single interactive page.
func (s Section) Exhaustive() bool {
	return s == All || s == Metrics
}

func (s Section) Valid() bool {
	_, ok := queries[s]
	return ok
}

// Title is the human-facing label.
func (s Section) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func (s Section) String() string { return string(s) }
