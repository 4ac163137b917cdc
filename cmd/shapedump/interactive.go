package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/shape-tables/shape"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	shapeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	dynamicStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateListEnums browserState = iota
	stateShowEnum
	stateFilter
)

type browserModel struct {
	filename string
	table    *shape.TagTable
	visible  []int
	filter   textinput.Model
	selected int
	state    browserState
}

func newBrowserModel(filename string, table *shape.TagTable) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "variant name"
	ti.Prompt = "/ "
	ti.Width = 30

	m := &browserModel{
		filename: filename,
		table:    table,
		filter:   ti,
		state:    stateListEnums,
	}
	m.applyFilter("")
	return m
}

func (m *browserModel) applyFilter(query string) {
	m.visible = m.visible[:0]
	for tag, e := range m.table.Enums {
		if query == "" {
			m.visible = append(m.visible, tag)
			continue
		}
		for _, v := range e.Variants {
			if strings.Contains(v.Name, query) {
				m.visible = append(m.visible, tag)
				break
			}
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateFilter {
		switch keyMsg.String() {
		case "enter":
			m.applyFilter(m.filter.Value())
			m.state = stateListEnums
		case "esc":
			m.filter.SetValue("")
			m.applyFilter("")
			m.state = stateListEnums
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.state == stateListEnums && m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateListEnums && m.selected < len(m.visible)-1 {
			m.selected++
		}

	case "enter":
		if m.state == stateListEnums && len(m.visible) > 0 {
			m.state = stateShowEnum
		}

	case "/":
		if m.state == stateListEnums {
			m.filter.Focus()
			m.state = stateFilter
		}

	case "esc":
		if m.state == stateShowEnum {
			m.state = stateListEnums
		}
	}

	return m, nil
}

func (m *browserModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Shape Tables"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateListEnums, stateFilter:
		if len(m.table.Enums) == 0 {
			b.WriteString("Table contains no enums.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}

		for i, tag := range m.visible {
			line := m.formatEnumLine(tag)
			if i == m.selected && m.state == stateListEnums {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateFilter {
			b.WriteString(m.filter.View())
			b.WriteString("\n")
			b.WriteString(helpStyle.Render("enter apply • esc clear"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter details • / filter • q quit"))
		}

	case stateShowEnum:
		tag := m.visible[m.selected]
		e := m.table.Enums[tag]
		b.WriteString(tagStyle.Render(fmt.Sprintf("tag %d", tag)))
		if e.StaticSize == 0 && e.StaticAlign == 0 {
			b.WriteString(" " + dynamicStyle.Render("dynamic layout"))
		} else {
			b.WriteString(fmt.Sprintf("  size %d  align %d", e.StaticSize, e.StaticAlign))
		}
		b.WriteString("\n\n")

		for i, v := range e.Variants {
			marker := "  "
			for _, l := range e.Largest {
				if l == i {
					marker = "* "
				}
			}
			fields := make([]string, 0, len(v.Fields))
			for _, f := range v.Fields {
				fields = append(fields, renderNode(f))
			}
			b.WriteString(marker + v.Name + "(" + shapeStyle.Render(strings.Join(fields, ", ")) + ")\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("* largest variant • esc back • q quit"))
	}

	return b.String()
}

func (m *browserModel) formatEnumLine(tag int) string {
	e := m.table.Enums[tag]
	names := make([]string, 0, len(e.Variants))
	for _, v := range e.Variants {
		names = append(names, v.Name)
	}
	layout := fmt.Sprintf("size %d", e.StaticSize)
	if e.StaticSize == 0 && e.StaticAlign == 0 {
		layout = "dynamic"
	}
	return fmt.Sprintf("%s  %s  %s",
		tagStyle.Render(fmt.Sprintf("tag %d", tag)),
		layout,
		strings.Join(names, " | "))
}

func runInteractive(filename string, table *shape.TagTable) error {
	p := tea.NewProgram(newBrowserModel(filename, table), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
