package tui

import "github.com/charmbracelet/lipgloss"

var (
	dimGray  = lipgloss.AdaptiveColor{Light: "245", Dark: "238"}
	midGray  = lipgloss.AdaptiveColor{Light: "240", Dark: "244"}
	ink      = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	accent   = lipgloss.Color("63")
	violet   = lipgloss.Color("99")
	amber    = lipgloss.Color("214")
	paneEdge = lipgloss.Color("240")
)

// cardStyle colours one email card in the dashboard list.
type cardStyle struct {
	edge    lipgloss.Style
	subject lipgloss.Style
	meta    lipgloss.Style
}

var (
	readCard = cardStyle{
		edge:    lipgloss.NewStyle().Foreground(dimGray),
		subject: lipgloss.NewStyle().Foreground(ink),
		meta:    lipgloss.NewStyle().Foreground(midGray),
	}
	unreadCard = cardStyle{
		edge:    readCard.edge,
		subject: readCard.subject.Bold(true),
		meta:    readCard.meta,
	}
	selectedCard = cardStyle{
		edge:    lipgloss.NewStyle().Foreground(violet),
		subject: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
		meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("189")),
	}

	// Card edges are drawn by formatEmailListItem, not by a lipgloss border.
	cardBorder  = lipgloss.NormalBorder()
	cardMargin  = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(1)
	listPane    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(paneEdge).PaddingRight(1)
	listHeading = lipgloss.NewStyle().Bold(true).MarginBottom(1).MarginLeft(1).Foreground(accent)
)

var (
	panel      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Background(accent).Foreground(lipgloss.Color("255")).Padding(0, 1)
	fieldKey   = lipgloss.NewStyle().Bold(true).Foreground(amber)
	bodyBlock  = lipgloss.NewStyle().MarginTop(1)

	statHeading = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1)
	statValue   = lipgloss.NewStyle().Bold(true).Foreground(amber)
	statLabel   = lipgloss.NewStyle().Foreground(midGray)
	statBar     = lipgloss.NewStyle().Foreground(violet)
)

const barCell = "█"

func statusBarStyle(bg lipgloss.Color, fg string) lipgloss.Style {
	return lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color(fg)).Padding(0, 1)
}

var (
	statusNormal  = statusBarStyle("235", "250")
	statusSuccess = statusBarStyle("28", "255")
	statusError   = statusBarStyle("196", "255")
)
