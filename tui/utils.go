package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/charmbracelet/lipgloss"
)

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if maxLen < 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// formatEmailDate formats the date for display in the email list.
func formatEmailDate(t, now time.Time) string {
	if t.IsZero() {
		return "???"
	}
	t, now = t.Local(), now.Local()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return t.Format("15:04") // Time only for today
	}
	return t.Format("Jan02")
}

// senderLabel is the short sender shown in lists.
func senderLabel(email gmail.Email) string {
	switch {
	case email.FromName != "":
		return email.FromName
	case email.FromEmail != "":
		return email.FromEmail
	default:
		return "(Unknown Sender)"
	}
}

// flagBadges renders the flags worth a glance as a compact prefix.
func flagBadges(email gmail.Email) string {
	var b strings.Builder
	if !email.IsRead {
		b.WriteString("●")
	}
	if email.IsStarred {
		b.WriteString("★")
	}
	if email.HasAttachments {
		b.WriteString("📎")
	}
	return b.String()
}

// emailBody picks the best text to show: the plain body, the HTML body
// reduced to text, then the snippet.
func emailBody(email gmail.Email) string {
	if body := strings.TrimSpace(email.BodyText); body != "" {
		return strings.ReplaceAll(email.BodyText, "\r\n", "\n")
	}
	if email.BodyHTML != "" {
		if text := htmlToText(email.BodyHTML); text != "" {
			return text
		}
	}
	return email.Snippet
}

// htmlToText extracts readable text from an HTML body.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, head").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, tr, li, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// formatEmailListItem formats a single email for the list view.
// itemContentTextWidth is the width for the text inside the box lines.
func formatEmailListItem(email gmail.Email, isSelected bool, itemContentTextWidth int, now time.Time) string {
	style := readCard
	switch {
	case isSelected:
		style = selectedCard
	case !email.IsRead:
		style = unreadCard
	}

	subject := email.Subject
	if badges := flagBadges(email); badges != "" {
		subject = badges + " " + subject
	}
	paddedSubjectText := padRight(truncate(subject, itemContentTextWidth), itemContentTextWidth)

	dateStr := formatEmailDate(email.Date, now)
	fromShort := senderLabel(email)
	maxFromLen := itemContentTextWidth - len(dateStr) - 1
	var fromDate string
	if maxFromLen < 1 {
		fromDate = truncate(dateStr, itemContentTextWidth)
	} else {
		fromDate = fmt.Sprintf("%s %s", truncate(fromShort, maxFromLen), dateStr)
	}
	paddedFromDateText := padRight(truncate(fromDate, itemContentTextWidth), itemContentTextWidth)

	b := cardBorder
	bar := strings.Repeat(b.Top, itemContentTextWidth+2)
	row := func(text string, st lipgloss.Style) string {
		return fmt.Sprintf("%s %s %s", style.edge.Render(b.Left), st.Render(text), style.edge.Render(b.Right))
	}
	lines := []string{
		style.edge.Render(b.TopLeft + bar + b.TopRight),
		row(paddedSubjectText, style.subject),
		row(paddedFromDateText, style.meta),
		style.edge.Render(b.BottomLeft + bar + b.BottomRight),
	}
	return cardMargin.Render(strings.Join(lines, "\n"))
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
