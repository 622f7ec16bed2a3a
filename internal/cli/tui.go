package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// PodListModel - Interactive pod selection
// =============================================================================

// PodListModel is the bubbletea model used when a pod name matches several
// pods. Typing narrows the list.
type PodListModel struct {
	Query    string
	Pods     []string
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected string
}

// NewPodListModel creates a picker over the matches of query.
func NewPodListModel(query string, pods []string) PodListModel {
	return PodListModel{Query: query, Pods: pods, Height: 15}
}

// visible returns the pods matching the current filter.
func (m PodListModel) visible() []string {
	if m.Filter == "" {
		return m.Pods
	}
	var out []string
	needle := strings.ToLower(m.Filter)
	for _, p := range m.Pods {
		if strings.Contains(strings.ToLower(p), needle) {
			out = append(out, p)
		}
	}
	return out
}

func (m PodListModel) Init() tea.Cmd {
	return nil
}

func (m PodListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		pods := m.visible()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(pods)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(pods) == 0 {
				return m, nil
			}
			m.Selected = pods[m.Cursor]
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PodListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("%d pods match %q", len(m.Pods), m.Query)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  type to filter  esc cancel"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleValue.Render("filter: " + m.Filter))
	}
	b.WriteString("\n")

	pods := m.visible()
	end := min(m.Offset+m.Height, len(pods))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, pods[i]})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Pod").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return listHeaderStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 0 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(pods)), len(pods))))

	return b.String()
}

// choosePod lets the user pick among matches on the terminal. It returns ""
// when the user cancels.
func choosePod(ctx context.Context, query string, matches []string) (string, error) {
	p := tea.NewProgram(NewPodListModel(query, matches), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	return final.(PodListModel).Selected, nil
}
