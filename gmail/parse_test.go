package gmail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func b64(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

func header(name, value string) *gmail.MessagePartHeader {
	return &gmail.MessagePartHeader{Name: name, Value: value}
}

func TestFlagsFromLabels(t *testing.T) {
	f := FlagsFromLabels([]string{LabelUnread, LabelStarred})
	assert.Equal(t, Flags{IsStarred: true}, f)

	f = FlagsFromLabels(nil)
	assert.Equal(t, Flags{IsRead: true}, f)

	f = FlagsFromLabels([]string{LabelTrash, LabelHasAttachment, LabelDone, LabelTracked})
	assert.True(t, f.IsRead)
	assert.True(t, f.IsTrashed)
	assert.True(t, f.HasAttachments)
	assert.True(t, f.IsDone)
	assert.True(t, f.IsTracked)
	assert.False(t, f.IsArchived)
}

func TestParseMessageHeaders(t *testing.T) {
	msg := &gmail.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "hello there",
		LabelIds: []string{LabelUnread, LabelImportant},
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				header("From", `"Ada Lovelace" <ada@example.com>`),
				header("To", "me@example.com"),
				header("Subject", "First"),
				header("subject", "Second"),
				header("Date", "Tue, 3 Mar 2026 10:15:00 +0100"),
			},
			Body: &gmail.MessagePartBody{Data: b64("plain body")},
		},
	}

	e := ParseMessage(msg, time.Now())
	assert.Equal(t, "m1", e.ID)
	assert.Equal(t, "t1", e.ThreadID)
	assert.Equal(t, "First", e.Subject, "first header occurrence wins")
	assert.Equal(t, "Ada Lovelace", e.FromName)
	assert.Equal(t, "ada@example.com", e.FromEmail)
	assert.Equal(t, "me@example.com", e.To)
	assert.Equal(t, "plain body", e.BodyText)
	assert.Empty(t, e.BodyHTML)
	assert.False(t, e.IsRead)
	assert.True(t, e.IsImportant)
	assert.True(t, e.Date.Equal(time.Date(2026, 3, 3, 9, 15, 0, 0, time.UTC)))
}

func TestParseMessageDefaults(t *testing.T) {
	fetchedAt := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	e := ParseMessage(&gmail.Message{Id: "bare"}, fetchedAt)
	assert.Equal(t, noSubject, e.Subject)
	assert.Equal(t, unknownSender, e.FromName)
	assert.Equal(t, "", e.FromEmail)
	assert.True(t, e.Date.Equal(fetchedAt))
	assert.True(t, e.IsRead)

	internal := time.Date(2025, 12, 24, 18, 30, 0, 0, time.UTC)
	e = ParseMessage(&gmail.Message{
		Id:           "internal",
		InternalDate: internal.UnixMilli(),
		Payload: &gmail.MessagePart{Headers: []*gmail.MessagePartHeader{
			header("Date", "not a date"),
		}},
	}, fetchedAt)
	assert.True(t, e.Date.Equal(internal))
}

func TestExtractBodiesNested(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/plain; charset=UTF-8", Body: &gmail.MessagePartBody{Data: b64("nested text")}},
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>nested html</p>")}},
				},
			},
			{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("later text")}},
			{MimeType: "application/pdf", Filename: "a.pdf", Body: &gmail.MessagePartBody{AttachmentId: "att"}},
		},
	}

	b := extractBodies(payload)
	assert.Equal(t, "nested text", b.text)
	assert.Equal(t, "<p>nested html</p>", b.html)
}

func TestExtractBodiesHTMLOnly(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<b>only</b>")}},
		},
	}
	b := extractBodies(payload)
	assert.Empty(t, b.text)
	assert.Equal(t, "<b>only</b>", b.html)
}

func TestDecodeBody(t *testing.T) {
	raw := "subjects? ünïcode >>> ~~~"
	assert.Equal(t, raw, decodeBody(base64.URLEncoding.EncodeToString([]byte(raw))))
	assert.Equal(t, raw, decodeBody(base64.RawURLEncoding.EncodeToString([]byte(raw))))
	assert.Equal(t, raw, decodeBody(base64.StdEncoding.EncodeToString([]byte(raw))))
	assert.Equal(t, "", decodeBody("!!!not base64!!!"))
}

func TestParseSender(t *testing.T) {
	tests := []struct {
		in, name, addr string
	}{
		{`"Grace Hopper" <grace@navy.mil>`, "Grace Hopper", "grace@navy.mil"},
		{`Linus <linus@example.org>`, "Linus", "linus@example.org"},
		{`bob@example.com`, "bob@example.com", "bob@example.com"},
		{``, unknownSender, ""},
	}
	for _, tt := range tests {
		name, addr := parseSender(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.addr, addr, tt.in)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	for _, v := range []string{
		"Fri, 2 Jan 2026 15:04:05 +0000",
		"Fri, 02 Jan 2026 15:04:05 +0000",
		"Fri, 2 Jan 2026 15:04:05 +0000 (UTC)",
		"2 Jan 2026 15:04:05 +0000",
		"2026-01-02T15:04:05Z",
	} {
		got, ok := parseDate(v)
		if assert.True(t, ok, v) {
			assert.True(t, got.Equal(want), v)
		}
	}

	_, ok := parseDate("yesterday")
	assert.False(t, ok)
}
