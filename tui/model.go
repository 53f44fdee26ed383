package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bassamadnan/lumimail/gmail"
	"github.com/bassamadnan/lumimail/stats"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type viewState int

const (
	viewLoading viewState = iota
	viewDashboard
	viewFocusedEmail
)

const (
	emailListItemHeight = 4
	minListPaneWidth    = 30
	minSummaryPaneWidth = 40
	barWidth            = 20
	topRows             = 5
)

// Model is the metrics dashboard: recent emails on the left, corpus
// figures on the right.
type Model struct {
	ctx  context.Context
	mail Mailbox
	now  func() time.Time

	emails          []gmail.Email
	summary         stats.Summary
	fromCache       bool
	degraded        bool
	selectedIdx     int
	viewportTopLine int

	currentView viewState

	width, height int
	statusBarText string
	statusIsError bool
	statusIsTemp  bool
	loadedAt      time.Time
}

func NewInitialModel(ctx context.Context, mail Mailbox) Model {
	return Model{
		ctx:           ctx,
		mail:          mail,
		now:           time.Now,
		currentView:   viewLoading,
		statusBarText: "Aggregating mailbox metrics...",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchMetricsCmd(m.ctx, m.mail, false),
		statusTickCmd(1*time.Second),
	)
}

func (m Model) getVisibleEmailListHeight() int {
	statusBarHeight := 1
	listTitleRenderedHeight := lipgloss.Height(listHeading.Render(" "))
	return max(m.height-statusBarHeight-listTitleRenderedHeight, 0)
}

func (m Model) getNumItemsThatFitInList() int {
	return m.getVisibleEmailListHeight() / emailListItemHeight
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSelectedVisible()

	case tea.KeyMsg:
		if s := msg.String(); s == "ctrl+c" || s == "q" {
			m.updateStatusBar("Quitting...")
			return m, tea.Quit
		}
		switch m.currentView {
		case viewDashboard:
			switch msg.String() {
			case "up", "k":
				if m.selectedIdx > 0 {
					m.selectedIdx--
					m.ensureSelectedVisible()
				}
			case "down", "j":
				if m.selectedIdx < len(m.emails)-1 {
					m.selectedIdx++
					m.ensureSelectedVisible()
				}
			case "enter":
				if m.selectedIdx >= 0 && m.selectedIdx < len(m.emails) {
					m.currentView = viewFocusedEmail
					m.setStandardStatus()
				}
			case "r":
				m.currentView = viewLoading
				m.updateStatusBar("Reloading metrics...")
				cmds = append(cmds, fetchMetricsCmd(m.ctx, m.mail, true))
			}
		case viewFocusedEmail:
			if msg.String() == "esc" {
				m.currentView = viewDashboard
				m.setStandardStatus()
			}
		}

	case MetricsLoadedMsg:
		m.emails = msg.Result.Emails
		m.summary = msg.Summary
		m.fromCache = msg.Result.FromCache
		m.degraded = msg.Result.Degraded
		m.loadedAt = m.now()
		m.selectedIdx = 0
		m.viewportTopLine = 0
		m.currentView = viewDashboard
		m.statusIsTemp = false
		m.setStandardStatus()
		if m.degraded {
			m.showTemporaryStatus("Gmail unreachable, showing cached metrics", 4*time.Second, &cmds)
		}

	case ErrorMsg:
		if m.currentView == viewLoading && len(m.emails) > 0 {
			m.currentView = viewDashboard
		}
		m.updateStatusError(fmt.Sprintf("Error: %v", msg.Err))

	case StatusTickMsg:
		if !m.statusIsTemp && !m.statusIsError && m.currentView != viewLoading {
			m.setStandardStatus()
		}
		cmds = append(cmds, statusTickCmd(1*time.Second))

	case clearTempStatusMsg:
		if m.statusIsTemp {
			m.statusIsTemp = false
			m.setStandardStatus()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) showTemporaryStatus(text string, duration time.Duration, cmds *[]tea.Cmd) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = true
	*cmds = append(*cmds, tea.Tick(duration, func(time.Time) tea.Msg {
		return clearTempStatusMsg{}
	}))
}

func (m *Model) updateStatusBar(text string) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = false
}

func (m *Model) updateStatusError(text string) {
	m.statusBarText = text
	m.statusIsError = true
	m.statusIsTemp = false
}

func (m *Model) setStandardStatus() {
	if m.statusIsTemp {
		return
	}

	source := "live"
	switch {
	case m.degraded:
		source = "offline"
	case m.fromCache:
		source = "cached"
	}
	coverage := "complete"
	if !m.summary.Complete {
		coverage = "partial"
	}

	statusMsg := fmt.Sprintf(" %d emails (%s, %s) | loaded %s ",
		m.summary.Total, coverage, source, m.loadedAt.Local().Format("15:04:05"))

	keyHints := "[Q/Ctrl+C]:Quit"
	switch m.currentView {
	case viewDashboard:
		keyHints += " | [↑↓/jk]:Nav | [Enter]:Full | [R]:Reload"
	case viewFocusedEmail:
		keyHints += " | [Esc]:Back"
	}
	m.updateStatusBar(statusMsg + "| " + keyHints)
}

func (m *Model) ensureSelectedVisible() {
	if len(m.emails) == 0 {
		m.viewportTopLine = 0
		return
	}

	itemsThatFit := m.getNumItemsThatFitInList()
	if itemsThatFit <= 0 {
		m.viewportTopLine = m.selectedIdx
		return
	}

	if m.selectedIdx < m.viewportTopLine {
		m.viewportTopLine = m.selectedIdx
	} else if m.selectedIdx >= m.viewportTopLine+itemsThatFit {
		m.viewportTopLine = m.selectedIdx - itemsThatFit + 1
	}
	m.viewportTopLine = min(max(m.viewportTopLine, 0), max(len(m.emails)-itemsThatFit, 0))
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing terminal size..."
	}

	var mainUIView string
	contentHeight := max(m.height-1, 0)

	switch m.currentView {
	case viewLoading:
		mainUIView = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, m.statusBarText)
	case viewDashboard:
		listWidth, summaryWidth := m.paneWidths()
		mainUIView = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderEmailList(listWidth, contentHeight),
			m.renderSummaryPane(summaryWidth, contentHeight),
		)
	case viewFocusedEmail:
		mainUIView = m.renderFocusedEmailView(m.width, contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainUIView, m.renderStatusBar())
}

func (m Model) paneWidths() (list, summary int) {
	if m.width < minListPaneWidth+minSummaryPaneWidth {
		if m.width < minListPaneWidth {
			return m.width, 0
		}
		return minListPaneWidth, m.width - minListPaneWidth
	}
	list = max(int(float64(m.width)*0.35), minListPaneWidth)
	list = min(list, m.width-minSummaryPaneWidth)
	return list, m.width - list
}

func (m Model) renderEmailList(paneWidth, paneHeight int) string {
	title := listHeading.Render(fmt.Sprintf("Recent (%d)", len(m.emails)))
	listItemsContainerHeight := max(paneHeight-lipgloss.Height(title), 0)

	itemTextContentWidth := max(paneWidth-cardMargin.GetHorizontalPadding()-2-2, 10)
	numItemsToDisplay := listItemsContainerHeight / emailListItemHeight

	startIdx := min(max(m.viewportTopLine, 0), len(m.emails))
	endIdx := min(startIdx+numItemsToDisplay, len(m.emails))

	var items []string
	if paneWidth > 0 && paneHeight > 0 {
		now := m.now()
		for i := startIdx; i < endIdx; i++ {
			items = append(items, formatEmailListItem(m.emails[i], i == m.selectedIdx, itemTextContentWidth, now))
		}
	}

	fullListRender := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(items, "\n"))
	return listPane.Width(paneWidth).Height(paneHeight).Render(fullListRender)
}

func (m Model) renderSummaryPane(paneWidth, paneHeight int) string {
	if paneWidth <= 0 || paneHeight <= 0 {
		return ""
	}
	s := m.summary
	innerWidth := max(paneWidth-panel.GetHorizontalFrameSize(), 0)

	var b strings.Builder
	b.WriteString(summaryLine("Total", s.Total, -1))
	b.WriteString(summaryLine("Unread", s.Unread, s.Percent(s.Unread)))
	b.WriteString(summaryLine("Starred", s.Starred, s.Percent(s.Starred)))
	b.WriteString(summaryLine("Archived", s.Archived, s.Percent(s.Archived)))
	b.WriteString(summaryLine("Attachments", s.WithAttachments, s.Percent(s.WithAttachments)))
	b.WriteString(summaryLine("Tracked", s.Tracked, s.Percent(s.Tracked)))

	sections := []string{
		b.String(),
		statHeading.Render("Top domains"),
		renderBars(head(s.TopDomains, topRows), innerWidth),
		statHeading.Render("Top senders"),
		renderBars(head(s.TopSenders, topRows), innerWidth),
		statHeading.Render("By weekday"),
		renderBars(s.ByWeekday, innerWidth),
	}
	if !s.Complete {
		sections = append(sections, statLabel.Render("\nCorpus capped; figures cover the most recent emails."))
	}

	title := panelTitle.Render("Mailbox metrics")
	content := lipgloss.NewStyle().
		Width(innerWidth).
		MaxHeight(max(paneHeight-lipgloss.Height(title)-panel.GetVerticalFrameSize(), 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return panel.Width(paneWidth).Height(paneHeight).Render(
		lipgloss.JoinVertical(lipgloss.Top, title, content),
	)
}

// summaryLine renders one figure; pct below zero omits the percentage.
func summaryLine(label string, n int, pct float64) string {
	line := fmt.Sprintf("%s %s", statLabel.Render(padRight(label+":", 13)), statValue.Render(fmt.Sprint(n)))
	if pct >= 0 {
		line += statLabel.Render(fmt.Sprintf(" (%.1f%%)", pct))
	}
	return line + "\n"
}

func head(counts []stats.Count, n int) []stats.Count {
	return counts[:min(n, len(counts))]
}

// renderBars draws counts as horizontal bars scaled to the largest value.
func renderBars(counts []stats.Count, width int) string {
	if len(counts) == 0 {
		return statLabel.Render("(none)")
	}
	labelWidth := 0
	peak := 0
	for _, c := range counts {
		labelWidth = max(labelWidth, lipgloss.Width(c.Name))
		peak = max(peak, c.Value)
	}
	labelWidth = min(labelWidth, 24)
	bw := min(barWidth, max(width-labelWidth-8, 1))

	lines := make([]string, 0, len(counts))
	for _, c := range counts {
		n := 0
		if peak > 0 {
			n = c.Value * bw / peak
		}
		lines = append(lines, fmt.Sprintf("%s %s %d",
			padRight(truncate(c.Name, labelWidth), labelWidth),
			statBar.Render(strings.Repeat(barCell, n)),
			c.Value))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFocusedEmailView(paneWidth, paneHeight int) string {
	if paneWidth <= 0 || paneHeight <= 0 {
		return ""
	}
	styledTitle := panelTitle.Render("Placeholder")
	maxContentHeight := max(paneHeight-lipgloss.Height(styledTitle)-panel.GetVerticalPadding(), 0)

	var titleText, finalContentToRender string
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.emails) {
		titleText = "Error"
		finalContentToRender = lipgloss.NewStyle().
			Width(paneWidth - panel.GetHorizontalPadding()).
			MaxHeight(maxContentHeight).
			Padding(1).Render("No email selected.")
	} else {
		email := m.emails[m.selectedIdx]
		titleText = fmt.Sprintf("Full View: %s", truncate(email.Subject, paneWidth-(panelTitle.GetHorizontalPadding()+15)))

		var contentBuilder strings.Builder
		fmt.Fprintf(&contentBuilder, "%s %s\n", fieldKey.Render("From:"), email.From)
		fmt.Fprintf(&contentBuilder, "%s %s\n", fieldKey.Render("To:"), email.To)
		if email.Cc != "" {
			fmt.Fprintf(&contentBuilder, "%s %s\n", fieldKey.Render("Cc:"), email.Cc)
		}
		dateStr := "N/A"
		if !email.Date.IsZero() {
			dateStr = email.Date.Local().Format(time.RFC1123Z)
		}
		fmt.Fprintf(&contentBuilder, "%s %s\n", fieldKey.Render("Date:"), dateStr)
		fmt.Fprintf(&contentBuilder, "%s %s\n\n", fieldKey.Render("Subject:"), email.Subject)
		contentBuilder.WriteString(strings.Repeat("─", paneWidth/2) + "\n\n")
		contentBuilder.WriteString(bodyBlock.Render(emailBody(email)))

		finalContentToRender = lipgloss.NewStyle().
			Width(paneWidth - panel.GetHorizontalPadding()).
			MaxHeight(maxContentHeight).
			Render(contentBuilder.String())
	}

	return panel.Width(paneWidth).Height(paneHeight).Render(
		lipgloss.JoinVertical(lipgloss.Top, panelTitle.Render(titleText), finalContentToRender),
	)
}

func (m Model) renderStatusBar() string {
	styleToUse := statusNormal
	if m.statusIsError {
		styleToUse = statusError
	} else if m.statusIsTemp {
		styleToUse = statusSuccess
	}
	return styleToUse.Width(m.width).Render(truncate(m.statusBarText, m.width))
}
