package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bindlab/girt/loader"
	"github.com/bindlab/girt/meta"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type symbolInfo struct {
	value any
	name  string
	kind  string
}

type browseModel struct {
	err       error
	pkg       *loader.Package
	filter    textinput.Model
	namespace string
	version   string
	symbols   []symbolInfo
	visible   []symbolInfo
	selected  int
}

type loadedMsg struct {
	err     error
	pkg     *loader.Package
	symbols []symbolInfo
}

func newBrowseModel(namespace, version string) *browseModel {
	ti := textinput.New()
	ti.Placeholder = "filter symbols"
	ti.Focus()
	return &browseModel{
		namespace: namespace,
		version:   version,
		filter:    ti,
	}
}

func (m *browseModel) Init() tea.Cmd {
	return tea.Batch(m.loadNamespace, textinput.Blink)
}

func (m *browseModel) loadNamespace() tea.Msg {
	ld := newLoader()

	pkg, err := ld.LoadPackage(m.namespace, m.version)
	if err != nil {
		return loadedMsg{err: err}
	}
	pkg.Resolve()

	names := pkg.Symbols()
	sort.Strings(names)

	var symbols []symbolInfo
	for _, name := range names {
		v, ok, err := pkg.Lookup(name)
		si := symbolInfo{name: name}
		switch {
		case err != nil:
			si.kind = "error"
			si.value = err
		case !ok:
			si.kind = "absent"
		default:
			si.kind = kindOf(v)
			si.value = v
		}
		symbols = append(symbols, si)
	}

	return loadedMsg{pkg: pkg, symbols: symbols}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.err = msg.err
		m.pkg = msg.pkg
		m.symbols = msg.symbols
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down":
			if m.selected < len(m.visible)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *browseModel) applyFilter() {
	query := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for _, s := range m.symbols {
		if query == "" || strings.Contains(strings.ToLower(s.name), query) {
			m.visible = append(m.visible, s)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = 0
	}
}

func (m *browseModel) View() string {
	var b strings.Builder

	if m.pkg != nil {
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s %s", m.pkg.Namespace(), m.pkg.Version())))
	} else {
		b.WriteString(titleStyle.Render(m.namespace))
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("load failed: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("esc to quit"))
		return b.String()
	}

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	for i, s := range m.visible {
		nameStyle := symbolStyle
		if i == m.selected {
			nameStyle = selectedStyle
		}
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-20s", s.name)))
		b.WriteString(" ")
		b.WriteString(kindStyle.Render(s.kind))
		b.WriteString("\n")
	}

	if len(m.visible) > 0 && m.selected < len(m.visible) {
		b.WriteString("\n")
		b.WriteString(detailStyle.Render(detailOf(m.visible[m.selected])))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select · type to filter · esc to quit"))
	return b.String()
}

func kindOf(v any) string {
	switch t := v.(type) {
	case *loader.Enum:
		return "enum"
	case *loader.Flags:
		return "flags"
	case *loader.Struct:
		return "struct"
	case *loader.Entity:
		if t.Kind() == meta.KindInterface {
			return "interface"
		}
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func detailOf(s symbolInfo) string {
	switch t := s.value.(type) {
	case *loader.Enum:
		return fmt.Sprintf("members: %s", strings.Join(t.Names(), ", "))
	case *loader.Flags:
		return fmt.Sprintf("bits: %s", strings.Join(t.Names(), ", "))
	case *loader.Struct:
		return fmt.Sprintf("%d fields", len(t.Fields()))
	case *loader.Entity:
		return fmt.Sprintf("%d ancestor fragments", t.Inherits().Len())
	case error:
		return t.Error()
	default:
		return fmt.Sprintf("%v", s.value)
	}
}

func runInteractive(namespace, version string) error {
	p := tea.NewProgram(newBrowseModel(namespace, version))
	_, err := p.Run()
	return err
}
