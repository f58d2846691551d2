package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arborist-labs/hnswgraph/pkg/hnsw"
	"github.com/arborist-labs/hnswgraph/pkg/smallworld"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	resultsBoxStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("#FFFF00")).
				Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type vector []float64

func euclidean(a, b vector) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

const dim = 4

func randomVector() vector {
	v := make(vector, dim)
	for i := range v {
		v[i] = rand.Float64() * 100
	}
	return v
}

type keyMap struct {
	Enter   key.Binding
	Insert  key.Binding
	Insert100 key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	Insert:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert one")),
	Insert100: key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "insert 100")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Insert, k.Insert100, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	world       *smallworld.SmallWorld[vector, float64]
	queryInput  textinput.Model
	resultTable table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
	startTime   time.Time
	liveCount   int
	lastSearch  time.Duration
}

func initialModel(world *smallworld.SmallWorld[vector, float64]) model {
	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("k  (searches a random %d-dim query vector)", dim)
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Distance", Width: 14},
		{Title: "Vector", Width: 50},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)

	return model{
		world:       world,
		queryInput:  ti,
		resultTable: t,
		help:        help.New(),
		keys:        keys,
		startTime:   time.Now(),
		liveCount:   world.Len(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tickCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tickMsg:
		m.liveCount = m.world.Len()
		return m, tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Insert):
			m.insertRandom(1)

		case key.Matches(msg, m.keys.Insert100):
			m.insertRandom(100)

		case key.Matches(msg, m.keys.Enter):
			m.runSearch()
		}
	}

	m.queryInput, cmd = m.queryInput.Update(msg)
	return m, cmd
}

func (m *model) insertRandom(n int) {
	items := make([]vector, n)
	for i := range items {
		items[i] = randomVector()
	}
	ids, err := m.world.AddItems(context.Background(), items, nil)
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}
	m.liveCount = m.world.Len()
	m.message = fmt.Sprintf("inserted %d items (last id %d)", len(ids), ids[len(ids)-1])
	m.messageErr = false
}

func (m *model) runSearch() {
	k, err := strconv.Atoi(strings.TrimSpace(m.queryInput.Value()))
	if err != nil || k <= 0 {
		m.message = "enter a positive integer k before pressing enter"
		m.messageErr = true
		return
	}
	if m.world.Len() == 0 {
		m.message = "index is empty, press i to insert"
		m.messageErr = true
		return
	}

	start := time.Now()
	results, err := m.world.KnnSearch(context.Background(), randomVector(), k, nil)
	m.lastSearch = time.Since(start)
	if err != nil {
		m.message = err.Error()
		m.messageErr = true
		return
	}

	rows := make([]table.Row, len(results))
	for i, r := range results {
		rows[i] = table.Row{strconv.Itoa(r.ID), fmt.Sprintf("%.4f", r.Distance), fmt.Sprintf("%v", r.Item)}
	}
	m.resultTable.SetRows(rows)
	m.message = fmt.Sprintf("%d results in %v", len(results), m.lastSearch)
	m.messageErr = false
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("HNSW — Hierarchical Navigable Small World"))
	b.WriteString("\n\n")

	stats := statsBoxStyle.Render(fmt.Sprintf(
		"Live items: %d\nUptime:     %s\nLast search: %v",
		m.liveCount, time.Since(m.startTime).Round(time.Second), m.lastSearch,
	))

	queryBox := headerStyle.Render("k = ") + m.queryInput.View()

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, stats, "  ", lipgloss.NewStyle().MarginTop(0).Render(queryBox)))
	b.WriteString("\n\n")

	b.WriteString(resultsBoxStyle.Render(m.resultTable.View()))
	b.WriteString("\n")

	if m.message != "" {
		if m.messageErr {
			b.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			b.WriteString(successStyle.Render("✓ " + m.message))
		}
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

func main() {
	params := hnsw.DefaultParameters()
	world, err := smallworld.Build[vector, float64](euclidean, hnsw.NewSystemRNG(), params, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build index: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(world), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
