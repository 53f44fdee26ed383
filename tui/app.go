package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bassamadnan/lumimail/fetch"
	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/mailbox"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Mailbox is the slice of the fetch orchestrator the UI drives.
type Mailbox interface {
	FetchEmails(ctx context.Context, section mailbox.Section, pageToken string) (*fetch.Result, error)
	Reload(ctx context.Context, section mailbox.Section) (*fetch.Result, error)
}

// SectionMemory persists the last viewed section between runs.
type SectionMemory interface {
	LastSection() mailbox.Section
	SetLastSection(section mailbox.Section) error
}

type App struct {
	*tview.Application
	rootPages        *tview.Pages
	dashboardFlex    *tview.Flex
	sectionList      *SectionList
	emailListView    *EmailListView
	previewPane      *PreviewPane
	focusedEmailView *FocusedEmailView
	statusBar        *tview.TextView

	ctx    context.Context
	mail   Mailbox
	prefs  SectionMemory
	logger *slog.Logger

	section       mailbox.Section
	nextPageToken string
	loading       bool
	status        string
}

func NewApp(ctx context.Context, mail Mailbox, prefs SectionMemory, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	tuiApp := &App{
		Application: tview.NewApplication(),
		ctx:         ctx,
		mail:        mail,
		prefs:       prefs,
		logger:      logger,
		section:     mailbox.Inbox,
	}
	if prefs != nil {
		tuiApp.section = prefs.LastSection()
	}

	tuiApp.sectionList = NewSectionList(tuiApp)
	tuiApp.emailListView = NewEmailListView(tuiApp)
	tuiApp.previewPane = NewPreviewPane()
	tuiApp.focusedEmailView = NewFocusedEmailView()

	tuiApp.dashboardFlex = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(tuiApp.sectionList.List, 16, 0, false).
		AddItem(tuiApp.emailListView.List, 0, 1, true).
		AddItem(tuiApp.previewPane, 0, 3, false)
	tuiApp.dashboardFlex.SetBackgroundColor(tcell.ColorDefault)

	tuiApp.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tuiApp.statusBar.SetBackgroundColor(tcell.ColorDefault)

	mainLayoutWithStatus := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tuiApp.dashboardFlex, 0, 1, true).
		AddItem(tuiApp.statusBar, 1, 0, false)
	mainLayoutWithStatus.SetBackgroundColor(tcell.ColorDefault)

	tuiApp.rootPages = tview.NewPages().
		AddPage(PageDashboard, mainLayoutWithStatus, true, true).
		AddPage(PageFocusedEmail, tuiApp.focusedEmailView, true, false)

	tuiApp.Application.SetRoot(tuiApp.rootPages, true).EnableMouse(true)
	tuiApp.setGlobalKeybindings()

	tuiApp.sectionList.Highlight(tuiApp.section)
	tuiApp.previewPane.SetWelcomeMessage()
	tuiApp.setStatus("Initializing...")

	return tuiApp
}

func (a *App) Run() error {
	a.load(a.section, "", false)
	go a.updateStatusTimer()
	a.Application.SetFocus(a.emailListView.List)
	return a.Application.Run()
}

func (a *App) setGlobalKeybindings() {
	a.Application.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		currentPage, _ := a.rootPages.GetFrontPage()
		if event.Key() == tcell.KeyCtrlC {
			a.Stop()
			return nil
		}
		if event.Rune() == 'q' || event.Rune() == 'Q' {
			a.Stop()
			return nil
		}

		if currentPage == PageFocusedEmail {
			if event.Key() == tcell.KeyEscape {
				a.ShowDashboardView()
				return nil
			}
			return event
		}

		switch {
		case event.Key() == tcell.KeyTab:
			a.toggleFocus()
			return nil
		case event.Rune() == 'r' || event.Rune() == 'R':
			a.load(a.section, "", true)
			return nil
		case event.Rune() == 'm' || event.Rune() == 'M':
			if a.nextPageToken != "" {
				a.load(a.section, a.nextPageToken, false)
			}
			return nil
		}
		return event
	})
}

func (a *App) toggleFocus() {
	if a.sectionList.HasFocus() {
		a.Application.SetFocus(a.emailListView.List)
		return
	}
	a.Application.SetFocus(a.sectionList.List)
}

// SelectSection switches the browser to section and remembers the choice.
func (a *App) SelectSection(section mailbox.Section) {
	if a.prefs != nil {
		if err := a.prefs.SetLastSection(section); err != nil {
			a.logger.Warn("Could not save last section", "section", section, "error", err)
		}
	}
	a.load(section, "", false)
	a.Application.SetFocus(a.emailListView.List)
}

// load fetches off the UI goroutine and applies the result on it.
func (a *App) load(section mailbox.Section, pageToken string, reload bool) {
	if a.loading {
		return
	}
	a.loading = true
	a.setStatus(fmt.Sprintf("Loading %s...", section.Title()))

	go func() {
		var (
			res *fetch.Result
			err error
		)
		if reload {
			res, err = a.mail.Reload(a.ctx, section)
		} else {
			res, err = a.mail.FetchEmails(a.ctx, section, pageToken)
		}
		a.QueueUpdateDraw(func() {
			a.applyResult(section, pageToken, res, err)
		})
	}()
}

func (a *App) applyResult(section mailbox.Section, pageToken string, res *fetch.Result, err error) {
	a.loading = false
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			a.logger.Error("Failed to load section", "section", section, "error", err)
		}
		a.setStatus(fmt.Sprintf("[red]Failed to load %s: %v[-]", section.Title(), tview.Escape(err.Error())))
		return
	}

	a.section = section
	a.nextPageToken = res.NextPageToken
	a.sectionList.Highlight(section)
	a.emailListView.SetEmails(res.Emails, pageToken != "")
	a.emailListView.SetTitle(fmt.Sprintf("%s (%d)", section.Title(), len(a.emailListView.Emails())))

	status := fmt.Sprintf("%s: %d emails", section.Title(), len(a.emailListView.Emails()))
	switch {
	case res.Degraded:
		status = "[yellow]" + status + " (offline, cached)[-]"
	case res.FromCache:
		status += " (cached)"
	}
	if res.NextPageToken != "" {
		status += " | [::b]M[::-]:More"
	}
	a.setStatus(status)
}

func (a *App) updateStatusTimer() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.QueueUpdateDraw(a.renderStatus)
		}
	}
}

func (a *App) setStatus(status string) {
	a.status = status
	a.renderStatus()
}

func (a *App) renderStatus() {
	if a.statusBar == nil {
		return
	}
	a.statusBar.SetText(fmt.Sprintf(" [::d]%s[::-] | %s | [::b]Tab[::-]:Focus [::b]R[::-]:Reload [::b]Ent[::-]:Full [::b]Esc[::-]:Back [::b]Q[::-]:Quit",
		a.status, time.Now().Format("15:04:05")))
}

func (a *App) UpdatePreviewPane(email gmail.Email) {
	if a.previewPane != nil {
		a.previewPane.SetEmailContent(email)
	}
}

func (a *App) ShowWelcomeMessageInPreview() {
	if a.previewPane != nil {
		a.previewPane.SetWelcomeMessage()
	}
}

func (a *App) ShowFocusedEmailView(email gmail.Email) {
	if a.focusedEmailView == nil || a.rootPages == nil {
		return
	}
	a.focusedEmailView.SetEmailContent(email)
	a.rootPages.SwitchToPage(PageFocusedEmail)
	a.Application.SetFocus(a.focusedEmailView.textView)
}

func (a *App) ShowDashboardView() {
	if a.rootPages == nil {
		return
	}
	a.rootPages.SwitchToPage(PageDashboard)
	a.Application.SetFocus(a.emailListView.List)
}
