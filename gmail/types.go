package gmail

import "time"

// Gmail system and user label IDs that drive the Email flags.
const (
	LabelUnread        = "UNREAD"
	LabelStarred       = "STARRED"
	LabelArchive       = "ARCHIVE"
	LabelTrash         = "TRASH"
	LabelSnoozed       = "SNOOZED"
	LabelHasAttachment = "HAS_ATTACHMENT"
	LabelSent          = "SENT"
	LabelScheduled     = "SCHEDULED"
	LabelDraft         = "DRAFT"
	LabelSpam          = "SPAM"
	LabelImportant     = "IMPORTANT"
	LabelDone          = "DONE"
	LabelTracked       = "TRACKED"
)

// Flags are derived from a message's label IDs and nothing else.
type Flags struct {
	IsRead         bool `json:"isRead"`
	IsStarred      bool `json:"isStarred"`
	IsArchived     bool `json:"isArchived"`
	IsTrashed      bool `json:"isTrashed"`
	IsSnoozed      bool `json:"isSnoozed"`
	HasAttachments bool `json:"hasAttachments"`
	IsSent         bool `json:"isSent"`
	IsScheduled    bool `json:"isScheduled"`
	IsDraft        bool `json:"isDraft"`
	IsSpam         bool `json:"isSpam"`
	IsImportant    bool `json:"isImportant"`
	IsDone         bool `json:"isDone"`
	IsTracked      bool `json:"isTracked"`
}

// FlagsFromLabels derives the display flags from a label ID list.
func FlagsFromLabels(labels []string) Flags {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	has := func(l string) bool {
		_, ok := set[l]
		return ok
	}
	return Flags{
		IsRead:         !has(LabelUnread),
		IsStarred:      has(LabelStarred),
		IsArchived:     has(LabelArchive),
		IsTrashed:      has(LabelTrash),
		IsSnoozed:      has(LabelSnoozed),
		HasAttachments: has(LabelHasAttachment),
		IsSent:         has(LabelSent),
		IsScheduled:    has(LabelScheduled),
		IsDraft:        has(LabelDraft),
		IsSpam:         has(LabelSpam),
		IsImportant:    has(LabelImportant),
		IsDone:         has(LabelDone),
		IsTracked:      has(LabelTracked),
	}
}

// Email is a normalized Gmail message. Values are never mutated after
// construction; a refreshed section replaces its whole list.
type Email struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId,omitempty"`
	Subject   string    `json:"subject"`
	From      string    `json:"from"`
	FromName  string    `json:"fromName"`
	FromEmail string    `json:"fromEmail"`
	To        string    `json:"to"`
	Cc        string    `json:"cc,omitempty"`
	Date      time.Time `json:"date"`
	Snippet   string    `json:"snippet"`
	BodyText  string    `json:"bodyText"`
	BodyHTML  string    `json:"bodyHtml"`
	LabelIDs  []string  `json:"labelIds"`
	Flags
}

// ListPage is one page of message IDs from the list endpoint.
type ListPage struct {
	IDs                []string
	NextPageToken      string
	ResultSizeEstimate int64
}
