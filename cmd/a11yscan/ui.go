// # cmd/a11yscan/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type issueEntry struct {
	RuleID   string
	Severity string
	Message  string
	Element  string
	Source   string
}

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list         list.Model
	issues       []issueEntry
	lastUpdate   time.Time
	docCount     int
	patternCount int
	errorCount   int
	warningCount int
}

type updateMsg struct {
	issues       []issueEntry
	docCount     int
	patternCount int
	errorCount   int
	warningCount int
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.issues = msg.issues
		m.docCount = msg.docCount
		m.patternCount = msg.patternCount
		m.errorCount = msg.errorCount
		m.warningCount = msg.warningCount
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, issue := range m.issues {
			items = append(items, item{
				title: fmt.Sprintf("[%s] %s", issue.Severity, issue.RuleID),
				desc:  fmt.Sprintf("%s at %s (%s)", issue.Message, issue.Element, issue.Source),
			})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d documents | %d patterns",
		m.lastUpdate.Format("15:04:05"), m.docCount, m.patternCount))

	var summary string
	if m.errorCount == 0 && m.warningCount == 0 {
		summary = successStyle.Render("✅ All Patterns Clean")
	} else {
		summary = fmt.Sprintf("⚠️  %s | %s",
			errorStyle.Render(fmt.Sprintf("%d Errors", m.errorCount)),
			warningStyle.Render(fmt.Sprintf("%d Warnings", m.warningCount)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Accessibility Pattern Monitor"), status, summary)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Detected Issues"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
