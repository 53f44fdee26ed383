package gmail

import (
	"encoding/base64"
	"mime"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
)

const (
	noSubject     = "(No subject)"
	unknownSender = "Unknown"
)

var senderPattern = regexp.MustCompile(`^\s*"?([^"<]+?)"?\s*<([^>]+)>\s*$`)

var dateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// ParseMessage normalizes a full-format Gmail message. fetchedAt is used
// as the date when neither the Date header nor internalDate is usable.
func ParseMessage(msg *gmail.Message, fetchedAt time.Time) Email {
	var headers map[string]string
	var parts bodies
	if msg.Payload != nil {
		headers = headerMap(msg.Payload.Headers)
		parts = extractBodies(msg.Payload)
	}

	from := headers["from"]
	name, addr := parseSender(from)

	subject := headers["subject"]
	if subject == "" {
		subject = noSubject
	}

	date, ok := parseDate(headers["date"])
	if !ok {
		switch {
		case msg.InternalDate > 0:
			date = time.UnixMilli(msg.InternalDate).UTC()
		default:
			date = fetchedAt.UTC()
		}
	}

	labels := append([]string(nil), msg.LabelIds...)
	return Email{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Subject:   subject,
		From:      from,
		FromName:  name,
		FromEmail: addr,
		To:        headers["to"],
		Cc:        headers["cc"],
		Date:      date,
		Snippet:   msg.Snippet,
		BodyText:  parts.text,
		BodyHTML:  parts.html,
		LabelIDs:  labels,
		Flags:     FlagsFromLabels(labels),
	}
}

// headerMap lowercases header names. The first occurrence of a name wins.
func headerMap(headers []*gmail.MessagePartHeader) map[string]string {
	m := make(map[string]string, len(headers))
	for _, h := range headers {
		if h == nil {
			continue
		}
		key := strings.ToLower(h.Name)
		if _, seen := m[key]; !seen {
			m[key] = h.Value
		}
	}
	return m
}

type bodies struct {
	text string
	html string
}

func (b bodies) complete() bool { return b.text != "" && b.html != "" }

// extractBodies walks the part tree depth-first. For each body kind the
// first non-empty value found wins.
func extractBodies(part *gmail.MessagePart) bodies {
	var b bodies
	if part == nil {
		return b
	}
	if part.Body != nil && part.Body.Data != "" {
		switch mediaType(part.MimeType) {
		case "text/plain":
			b.text = decodeBody(part.Body.Data)
		case "text/html":
			b.html = decodeBody(part.Body.Data)
		}
	}
	for _, sub := range part.Parts {
		if b.complete() {
			break
		}
		found := extractBodies(sub)
		if b.text == "" {
			b.text = found.text
		}
		if b.html == "" {
			b.html = found.html
		}
	}
	return b
}

func mediaType(v string) string {
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

// decodeBody decodes Gmail's URL-safe base64, padded or not. Data that
// cannot be decoded yields "".
func decodeBody(data string) string {
	data = strings.NewReplacer("+", "-", "/", "_").Replace(data)
	data = strings.TrimRight(data, "=")
	decoded, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return strings.ToValidUTF8(string(decoded), "\uFFFD")
}

// parseSender splits a "Name <address>" header. Anything else is used
// whole for both parts.
func parseSender(from string) (name, addr string) {
	if m := senderPattern.FindStringSubmatch(from); m != nil {
		name, addr = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	} else {
		name, addr = from, from
	}
	if name == "" {
		name = unknownSender
	}
	return name, addr
}

func parseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	// Drop a trailing zone comment such as " (UTC)" and try again.
	if open := strings.LastIndex(v, " ("); open != -1 {
		if end := strings.LastIndex(v, ")"); end > open {
			trimmed := strings.TrimSpace(v[:open] + v[end+1:])
			for _, layout := range dateLayouts {
				if t, err := time.Parse(layout, trimmed); err == nil {
					return t, true
				}
			}
		}
	}
	return time.Time{}, false
}
