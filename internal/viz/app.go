package viz

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/scene"
)

const (
	historyCapacity = 600
	panelWidth      = 44
)

type TickMsg time.Time

// doneMsg reports the outcome of a scene operation run as a command.
type doneMsg struct {
	what string
	err  error
}

// Options configures the terminal app.
type Options struct {
	Columns int
	Theme   string
	GIFPath string
	Logger  *log.Logger
}

// history keeps the root's attributes after every scene transition. Scene
// observers run on whatever goroutine caused the change, so it is locked.
type history struct {
	mu    sync.Mutex
	roots []attr.Values
}

func (h *history) OnChange(s scene.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.roots = append(h.roots, s.Trees[s.Root])
	if len(h.roots) > historyCapacity {
		h.roots = h.roots[1:]
	}
}

func (h *history) series(n attr.Name) []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]float64, len(h.roots))
	for i, v := range h.roots {
		out[i] = v[n]
	}
	return out
}

// Model is the interactive scene: a grid of tree tiles plus a side panel.
type Model struct {
	ctx       context.Context
	scene     *scene.Scene
	tiles     []*Tile
	columns   int
	cursor    int
	theme     Theme
	history   *history
	attribute attr.Name
	pasting   bool
	pasteBuf  string
	status    string
	err       error
	showHelp  bool
	recording bool
	frames    []*image.Paletted
	gifPath   string
	logger    *log.Logger
	width     int
	height    int
}

// NewModel builds the app over a started scene whose views draw onto tiles.
func NewModel(ctx context.Context, s *scene.Scene, tiles []*Tile, opts Options) Model {
	if opts.Columns <= 0 {
		opts.Columns = 3
	}
	if opts.GIFPath == "" {
		opts.GIFPath = "arbor.gif"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	h := &history{}
	h.OnChange(s.Snapshot())
	s.AddObserver(h)

	return Model{
		ctx:     ctx,
		scene:   s,
		tiles:   tiles,
		columns: opts.Columns,
		cursor:  s.Root(),
		theme:   GetTheme(opts.Theme),
		history: h,
		gifPath: opts.GIFPath,
		logger:  opts.Logger,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) promote(i int) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{what: fmt.Sprintf("promoted tree %d", i+1), err: m.scene.Promote(m.ctx, i)}
	}
}

func (m Model) randomize(i int) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{what: fmt.Sprintf("randomized tree %d", i+1), err: m.scene.Randomize(m.ctx, i)}
	}
}

func (m Model) restore(state string) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{what: "restored pasted state", err: m.scene.Restore(m.ctx, state)}
	}
}

// Update handles input events and scene results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.pasting {
			return m.pasteKey(msg)
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i, ok := m.tileAt(msg.X, msg.Y); ok {
				m.cursor = i
				return m, m.promote(i)
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case doneMsg:
		m.err = msg.err
		m.status = msg.what
		if msg.err != nil {
			m.logger.Warn(msg.what, "err", msg.err)
		}
	case TickMsg:
		if m.recording && len(m.tiles) > 0 {
			m.frames = append(m.frames, CanvasImage(m.tiles[m.cursor].Frame(), m.theme))
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.tiles)
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		i, _ := strconv.Atoi(key)
		if i-1 < n {
			m.cursor = i - 1
			return m, m.promote(i - 1)
		}
	case "left", "h":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor < n-1 {
			m.cursor++
		}
	case "up", "k":
		if m.cursor-m.columns >= 0 {
			m.cursor -= m.columns
		}
	case "down", "j":
		if m.cursor+m.columns < n {
			m.cursor += m.columns
		}
	case "enter", " ":
		return m, m.promote(m.cursor)
	case "r":
		return m, m.randomize(m.cursor)
	case "p":
		m.pasting, m.pasteBuf = true, ""
	case "tab":
		m.attribute = attr.Name((int(m.attribute) + 1) % attr.Count)
	case "t":
		m.theme = NextTheme(m.theme.Name)
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) pasteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		state := strings.TrimSpace(m.pasteBuf)
		m.pasting, m.pasteBuf = false, ""
		return m, m.restore(state)
	case tea.KeyEsc:
		m.pasting, m.pasteBuf = false, ""
	case tea.KeyBackspace:
		if len(m.pasteBuf) > 0 {
			m.pasteBuf = m.pasteBuf[:len(m.pasteBuf)-1]
		}
	case tea.KeyRunes:
		m.pasteBuf += string(msg.Runes)
	}
	return m, nil
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		m.status = "recording"
		return
	}
	m.recording = false
	m.err = SaveGIF(m.gifPath, m.frames, 2)
	m.status = "saved " + m.gifPath
	m.frames = nil
}

// tileAt maps a terminal cell to the tile under it.
func (m Model) tileAt(x, y int) (int, bool) {
	if len(m.tiles) == 0 {
		return 0, false
	}
	c := m.tiles[0].canvas
	cellW, cellH := c.Width+2, c.Height+2
	y -= headerHeight
	if x < 0 || y < 0 {
		return 0, false
	}
	col, row := x/cellW, y/cellH
	if col >= m.columns {
		return 0, false
	}
	i := row*m.columns + col
	if i >= len(m.tiles) {
		return 0, false
	}
	return i, true
}

const headerHeight = 2

// View renders the tile grid and the side panel.
func (m Model) View() string {
	root := m.scene.Root()

	var rows []string
	for start := 0; start < len(m.tiles); start += m.columns {
		var cells []string
		for i := start; i < start+m.columns && i < len(m.tiles); i++ {
			border := m.theme.Frame
			switch {
			case i == root:
				border = m.theme.Root
			case i == m.cursor:
				border = m.theme.Accent
			}
			style := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(border).
				Background(m.theme.Background)
			cells = append(cells, style.Render(m.tiles[i].Render(m.theme)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := lipgloss.JoinVertical(lipgloss.Left, rows...)

	title := GradientText("ARBOR", m.theme.Leaf, m.theme.Root) + Subtle.Render("  fractal tree breeder")
	main := lipgloss.JoinHorizontal(lipgloss.Top, grid, m.panel(root))
	view := title + "\n\n" + main
	if m.showHelp {
		return helpText + "\n" + view
	}
	return view
}

func (m Model) panel(root int) string {
	snap := m.scene.Snapshot()
	var s strings.Builder

	s.WriteString(HeaderStyle.Render(fmt.Sprintf("TREE %d", m.cursor+1)) + "\n")
	if m.cursor < len(snap.Trees) {
		v := snap.Trees[m.cursor]
		for _, n := range attr.Names() {
			label := n.String()
			if n == m.attribute {
				label = "> " + label
			}
			s.WriteString(MetricLabel.Render(label) + MetricValue.Render(strconv.FormatFloat(v[n], 'f', -1, 64)) + "\n")
		}
	}
	s.WriteString(MetricLabel.Render("root") + MetricValue.Render(strconv.Itoa(root+1)) + "\n\n")

	s.WriteString(Subtle.Render("across trees") + "\n")
	for _, n := range attr.Names() {
		col := make([]float64, len(snap.Trees))
		for i, v := range snap.Trees {
			col[i] = v[n]
		}
		s.WriteString(MetricLabel.Render(n.String()) + SparklineChart(col, len(col)) + "\n")
	}

	if series := m.history.series(m.attribute); len(series) > 1 {
		chart := asciigraph.Plot(series, asciigraph.Height(4), asciigraph.Width(30),
			asciigraph.Caption("root "+m.attribute.String()))
		s.WriteString("\n" + chart + "\n")
	}

	s.WriteString("\n" + Separator(panelWidth-4) + "\n")
	switch {
	case m.pasting:
		s.WriteString(KeyHint.Render("paste> ") + m.pasteBuf + "_\n")
	case m.err != nil:
		s.WriteString(StatusError.Render(m.err.Error()) + "\n")
	case m.status != "":
		s.WriteString(Subtle.Render(m.status) + "\n")
	}
	if m.recording {
		s.WriteString(StatusError.Render("● REC") + "\n")
	}
	s.WriteString(KeyHint.Render("1-9") + Subtle.Render(" promote  ") +
		KeyHint.Render("r") + Subtle.Render(" randomize  ") +
		KeyHint.Render("?") + Subtle.Render(" help"))

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(m.theme.Frame).
		Padding(0, 2).
		Width(panelWidth).
		Render(s.String())
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  1-9        - Promote tree to root   ║
║  hjkl/arrow - Move selection         ║
║  Enter      - Promote selection      ║
║  Click      - Promote clicked tree   ║
║  R          - Randomize selection    ║
║  P          - Paste a state string   ║
║  Tab        - Cycle charted attribute║
║  T          - Cycle themes           ║
║  G          - Toggle GIF recording   ║
║  ?          - Toggle this help       ║
║  Q          - Quit                   ║
╚══════════════════════════════════════╝`

// Run starts the full-screen app and blocks until it quits.
func Run(ctx context.Context, s *scene.Scene, tiles []*Tile, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, s, tiles, opts),
		tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
