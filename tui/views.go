package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	PageDashboard    = "dashboard"
	PageFocusedEmail = "focusedEmail"
)

// SectionList is the sidebar of mailbox sections.
type SectionList struct {
	*tview.List
	sections []mailbox.Section
}

func NewSectionList(app *App) *SectionList {
	list := tview.NewList().ShowSecondaryText(false)
	list.SetBackgroundColor(tcell.ColorDefault)
	list.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorSteelBlue).
		Attributes(tcell.AttrBold))
	list.SetBorder(true).SetTitle("Mailbox")

	sl := &SectionList{List: list}
	for _, s := range mailbox.Sections {
		if s == mailbox.Metrics {
			continue // has its own dashboard
		}
		sl.sections = append(sl.sections, s)
		list.AddItem(s.Title(), "", 0, nil)
	}

	list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		if app != nil && index >= 0 && index < len(sl.sections) {
			app.SelectSection(sl.sections[index])
		}
	})
	return sl
}

// Highlight moves the cursor to section without triggering a load.
func (sl *SectionList) Highlight(section mailbox.Section) {
	for i, s := range sl.sections {
		if s == section {
			sl.List.SetCurrentItem(i)
			return
		}
	}
}

type EmailListView struct {
	*tview.List
	app    *App
	emails []gmail.Email
}

func NewEmailListView(app *App) *EmailListView {
	list := tview.NewList().
		ShowSecondaryText(true).
		SetSecondaryTextColor(tcell.ColorDimGray)

	list.SetBackgroundColor(tcell.ColorDefault)
	list.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorSteelBlue).
		Attributes(tcell.AttrBold))

	list.SetBorder(true).SetTitle("Emails")

	elv := &EmailListView{List: list, app: app}

	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		if elv.app == nil {
			return
		}
		if index >= 0 && index < len(elv.emails) {
			elv.app.UpdatePreviewPane(elv.emails[index])
		}
	})

	list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		if elv.app == nil {
			return
		}
		if index >= 0 && index < len(elv.emails) {
			elv.app.ShowFocusedEmailView(elv.emails[index])
		}
	})

	return elv
}

// SetEmails replaces the list contents. Pages arrive newest first, so a
// following page is appended as is.
func (elv *EmailListView) SetEmails(emails []gmail.Email, appendPage bool) {
	if appendPage {
		elv.emails = append(elv.emails, emails...)
	} else {
		elv.emails = append([]gmail.Email(nil), emails...)
	}
	elv.updateListItems(appendPage)
}

// Emails returns what the list currently shows.
func (elv *EmailListView) Emails() []gmail.Email { return elv.emails }

func (elv *EmailListView) updateListItems(keepSelection bool) {
	currentSelection := elv.List.GetCurrentItem()
	elv.List.Clear()
	now := time.Now()
	for _, email := range elv.emails {
		elv.List.AddItem(listMainText(email), listSecondaryText(email, now), 0, nil)
	}

	if elv.List.GetItemCount() == 0 {
		if elv.app != nil {
			elv.app.ShowWelcomeMessageInPreview()
		}
		return
	}
	if !keepSelection || currentSelection < 0 || currentSelection >= elv.List.GetItemCount() {
		currentSelection = 0
	}
	elv.List.SetCurrentItem(currentSelection)
	if elv.app != nil {
		elv.app.UpdatePreviewPane(elv.emails[currentSelection])
	}
}

func listMainText(email gmail.Email) string {
	subject := truncate(email.Subject, 25)
	if badges := flagBadges(email); badges != "" {
		subject = badges + " " + subject
	}
	color := "[white]"
	if !email.IsRead {
		color = "[white::b]"
	}
	return color + tview.Escape(subject)
}

func listSecondaryText(email gmail.Email, now time.Time) string {
	from := truncate(senderLabel(email), 15)
	return fmt.Sprintf("[::d]%s · %s\n%s", tview.Escape(from), formatEmailDate(email.Date, now), strings.Repeat("─", 20))
}

// emailHeader renders the header block shared by the preview and the full view.
func emailHeader(email gmail.Email, full bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]From:[::-] %s\n", tview.Escape(email.From))
	if full {
		fmt.Fprintf(&b, "[::b]To:[::-] %s\n", tview.Escape(email.To))
		if email.Cc != "" {
			fmt.Fprintf(&b, "[::b]Cc:[::-] %s\n", tview.Escape(email.Cc))
		}
	}
	dateStr := "N/A"
	if !email.Date.IsZero() {
		dateStr = email.Date.Local().Format(time.RFC1123)
	}
	fmt.Fprintf(&b, "[::b]Date:[::-] %s\n", dateStr)
	fmt.Fprintf(&b, "[::b]Subject:[::-] %s\n", tview.Escape(email.Subject))
	if labels := labelLine(email); labels != "" {
		fmt.Fprintf(&b, "[::b]Labels:[::-] %s\n", labels)
	}
	return b.String()
}

func labelLine(email gmail.Email) string {
	var parts []string
	add := func(ok bool, name string) {
		if ok {
			parts = append(parts, name)
		}
	}
	add(!email.IsRead, "unread")
	add(email.IsStarred, "starred")
	add(email.IsImportant, "important")
	add(email.HasAttachments, "attachments")
	add(email.IsSnoozed, "snoozed")
	add(email.IsTracked, "tracked")
	return strings.Join(parts, ", ")
}

type PreviewPane struct {
	*tview.TextView
	isWelcome bool
}

func NewPreviewPane() *PreviewPane {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	tv.SetBackgroundColor(tcell.ColorDefault)
	tv.SetBorder(true).SetTitle("Preview")
	return &PreviewPane{TextView: tv, isWelcome: true}
}

func (pp *PreviewPane) SetEmailContent(email gmail.Email) {
	pp.isWelcome = false
	var builder strings.Builder
	builder.WriteString(emailHeader(email, false))
	builder.WriteString("\n" + strings.Repeat("─", 60) + "\n\n")
	builder.WriteString(tview.Escape(emailBody(email)))
	pp.SetText(builder.String()).ScrollToBeginning().SetTextAlign(tview.AlignLeft)
	pp.SetTitle(fmt.Sprintf("Preview: %s", tview.Escape(truncate(email.Subject, 40))))
}

func (pp *PreviewPane) SetWelcomeMessage() {
	pp.isWelcome = true
	pp.SetText("\n[lightblue::b]lumimail[-::-]\n\nNo email selected or the section is empty.\n\n" +
		"[::d]Tab switches between sections and emails.\n" +
		"Press Enter to open in full view.\n" +
		"R reloads, M loads the next page.\n" +
		"Press Q or Ctrl+C to quit.[::-]").
		ScrollToBeginning()
	pp.SetTitle("Home")
}

func (pp *PreviewPane) IsShowingWelcome() bool {
	return pp.isWelcome
}

type FocusedEmailView struct {
	*tview.Frame
	textView *tview.TextView
}

func NewFocusedEmailView() *FocusedEmailView {
	textView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	textView.SetBackgroundColor(tcell.ColorDefault)

	frame := tview.NewFrame(textView).
		AddText("", true, tview.AlignCenter, tcell.ColorYellow).
		AddText("Press Esc to go back", false, tview.AlignCenter, tcell.ColorDimGray)
	frame.SetBorder(true).SetBackgroundColor(tcell.ColorDefault)

	return &FocusedEmailView{
		Frame:    frame,
		textView: textView,
	}
}

func (fev *FocusedEmailView) SetEmailContent(email gmail.Email) {
	var builder strings.Builder
	builder.WriteString(emailHeader(email, true))
	builder.WriteString("\n" + strings.Repeat("─", 70) + "\n\n")
	builder.WriteString(tview.Escape(emailBody(email)))
	fev.textView.SetText(builder.String()).ScrollToBeginning()
	fev.Frame.Clear().
		AddText(fmt.Sprintf("Subject: %s", truncate(email.Subject, 60)), true, tview.AlignCenter, tcell.ColorYellow).
		AddText("Press Esc to go back", false, tview.AlignCenter, tcell.ColorDimGray).
		SetPrimitive(fev.textView)
}
