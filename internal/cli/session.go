package cli

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/rigwire/pkg/network"
	"github.com/matzehuels/rigwire/pkg/observability"
	"github.com/matzehuels/rigwire/pkg/route"
)

// =============================================================================
// Key Bindings
// =============================================================================

type sessionKeys struct {
	Up, Down, Left, Right key.Binding
	Next, Prev            key.Binding
	Click                 key.Binding
	Kind                  key.Binding
	Axis                  key.Binding
	Backtrack             key.Binding
	Cancel                key.Binding
	Save                  key.Binding
	Quit                  key.Binding
}

var defaultSessionKeys = sessionKeys{
	Up:        key.NewBinding(key.WithKeys("up", "k", "shift+up", "K"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j", "shift+down", "J"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h", "shift+left", "H"), key.WithHelp("←/h", "left")),
	Right:     key.NewBinding(key.WithKeys("right", "l", "shift+right", "L"), key.WithHelp("→/l", "right")),
	Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next item")),
	Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev item")),
	Click:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start/bend/finish")),
	Kind:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "power/dmx")),
	Axis:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "flip corner")),
	Backtrack: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("⌫", "undo bend")),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Save:      key.NewBinding(key.WithKeys("s", "ctrl+s"), key.WithHelp("s", "save & quit")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k sessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Click, k.Kind, k.Axis, k.Backtrack, k.Cancel, k.Save, k.Quit}
}

func (k sessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Next, k.Prev},
		{k.Click, k.Kind, k.Axis, k.Backtrack, k.Cancel},
		{k.Save, k.Quit},
	}
}

// =============================================================================
// Session Model
// =============================================================================

const (
	defaultStep  = 10.0
	bigStepRatio = 5
)

// session is the bubbletea model of an interactive routing session. A
// keyboard cursor stands in for the mouse: enter clicks at the cursor.
// It is used through a pointer so that the router's source keeps seeing
// the snapshot after wires are added.
type session struct {
	ctx      context.Context
	snapshot network.Snapshot
	router   *route.Router
	radius   float64
	kind     network.Kind
	cursor   network.Point
	step     float64
	preview  route.Preview
	added    []network.Edge
	message  string
	saved    bool

	width, height int
	keys          sessionKeys
	help          help.Model
}

// newSession creates a session over s. Router options come from the
// config; radius is the distance within which enter picks a start item.
func newSession(ctx context.Context, s network.Snapshot, radius float64, opts ...route.Option) *session {
	m := &session{
		ctx:      ctx,
		snapshot: s,
		radius:   radius,
		kind:     network.KindPower,
		step:     defaultStep,
		width:    72,
		height:   20,
		keys:     defaultSessionKeys,
		help:     help.New(),
	}
	m.router = route.New(route.SnapshotSource(&m.snapshot), opts...)
	if items := m.items(); len(items) > 0 {
		m.cursor = items[0].Base().Position
	}
	return m
}

// Added returns the wires completed during the session.
func (m *session) Added() []network.Edge { return m.added }

// Saved reports whether the session ended with a save.
func (m *session) Saved() bool { return m.saved }

func (m *session) Init() tea.Cmd { return nil }

func (m *session) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = max(msg.Width-2, 20)
		m.height = max(msg.Height-7, 5)
		m.help.Width = msg.Width
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *session) handleKey(msg tea.KeyMsg) tea.Cmd {
	step := m.step
	if s := msg.String(); strings.HasPrefix(s, "shift+") || (len(s) == 1 && s >= "A" && s <= "Z") {
		step *= bigStepRatio
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Save):
		m.saved = true
		return tea.Quit
	case key.Matches(msg, m.keys.Prev):
		m.jump(-1)
	case key.Matches(msg, m.keys.Up):
		m.moveTo(network.Pt(m.cursor.X, m.cursor.Y-step))
	case key.Matches(msg, m.keys.Down):
		m.moveTo(network.Pt(m.cursor.X, m.cursor.Y+step))
	case key.Matches(msg, m.keys.Left):
		m.moveTo(network.Pt(m.cursor.X-step, m.cursor.Y))
	case key.Matches(msg, m.keys.Right):
		m.moveTo(network.Pt(m.cursor.X+step, m.cursor.Y))
	case key.Matches(msg, m.keys.Next):
		m.jump(1)
	case key.Matches(msg, m.keys.Click):
		m.click()
	case key.Matches(msg, m.keys.Kind):
		if m.router.State() == route.Idle {
			m.kind = otherKind(m.kind)
			m.message = fmt.Sprintf("next wire: %s", m.kind)
		}
	case key.Matches(msg, m.keys.Axis):
		axis := m.router.ToggleAxis()
		m.preview = m.router.Move(m.cursor)
		m.message = fmt.Sprintf("corner: %s first", axis)
	case key.Matches(msg, m.keys.Backtrack):
		kind := m.router.Kind()
		m.preview = m.router.Backtrack()
		if m.router.State() == route.Idle && kind != "" {
			observability.Route().OnRouteCancel(m.ctx, kind.String())
			m.message = "cancelled"
		}
	case key.Matches(msg, m.keys.Cancel):
		if m.router.State() == route.Routing {
			observability.Route().OnRouteCancel(m.ctx, m.router.Kind().String())
			m.message = "cancelled"
		}
		m.router.Cancel()
		m.preview = route.Preview{}
	}
	return nil
}

// moveTo places the cursor at p and refreshes the preview.
func (m *session) moveTo(p network.Point) {
	m.cursor = p
	m.preview = m.router.Move(p)
}

// jump moves the cursor to the next or previous wireable item in id order.
func (m *session) jump(dir int) {
	items := m.items()
	if len(items) == 0 {
		return
	}
	i := slices.IndexFunc(items, func(c network.Connectable) bool { return c.Base().Position == m.cursor })
	switch {
	case i < 0 && dir < 0:
		i = len(items) - 1
	case i < 0:
		i = 0
	default:
		i = (i + dir + len(items)) % len(items)
	}
	m.moveTo(items[i].Base().Position)
	m.message = network.ID(items[i])
}

// click begins a wire at the item under the cursor when idle, and clicks
// the router otherwise.
func (m *session) click() {
	if m.router.State() == route.Idle {
		start, ok := m.under(m.cursor)
		if !ok {
			m.message = "nothing to wire here"
			return
		}
		p, err := m.router.Begin(start, m.kind)
		if err != nil {
			m.message = err.Error()
			return
		}
		m.preview = p
		m.message = fmt.Sprintf("%s wire from %s", m.kind, start)
		return
	}

	p, edge, err := m.router.Click(m.cursor)
	if err != nil {
		m.message = err.Error()
		return
	}
	m.preview = p
	if edge == nil {
		return
	}
	next, err := m.snapshot.WithEdge(*edge)
	if err != nil {
		m.message = fmt.Sprintf("rejected %s: %v", edge.ID, err)
		return
	}
	m.snapshot = next
	m.added = append(m.added, *edge)
	m.preview = route.Preview{}
	observability.Route().OnRouteComplete(m.ctx, edge.Kind.String(), len(edge.Via))
	m.message = fmt.Sprintf("added %s %s → %s", edge.Kind, edge.From, edge.To)
}

// under returns the nearest wireable item within the pick radius of p.
func (m *session) under(p network.Point) (string, bool) {
	best, bestDist := "", math.Inf(1)
	for _, c := range m.items() {
		pos := c.Base().Position
		dx, dy := math.Abs(pos.X-p.X), math.Abs(pos.Y-p.Y)
		if dx >= m.radius || dy >= m.radius {
			continue
		}
		if d := math.Hypot(dx, dy); d < bestDist {
			best, bestDist = c.Base().ID, d
		}
	}
	return best, best != ""
}

// items returns the wireable connectables sorted by id.
func (m *session) items() []network.Connectable {
	var out []network.Connectable
	for _, c := range m.snapshot.Connectables {
		if c != nil && c.IsWireable() {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b network.Connectable) int { return cmp.Compare(a.Base().ID, b.Base().ID) })
	return out
}

func otherKind(k network.Kind) network.Kind {
	if k == network.KindPower {
		return network.KindDMX
	}
	return network.KindPower
}

// =============================================================================
// View
// =============================================================================

type cellClass int

const (
	cellEmpty cellClass = iota
	cellPower
	cellDMX
	cellPreview
	cellItem
	cellCursor
)

var cellStyles = map[cellClass]lipgloss.Style{
	cellEmpty:   StyleDim,
	cellPower:   lipgloss.NewStyle().Foreground(colorRed),
	cellDMX:     lipgloss.NewStyle().Foreground(colorCyan),
	cellPreview: lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
	cellItem:    StyleValue.Bold(true),
	cellCursor:  lipgloss.NewStyle().Reverse(true),
}

// canvas is a character grid over the scene bounds.
type canvas struct {
	runes   [][]rune
	classes [][]cellClass
	minX    float64
	minY    float64
	scaleX  float64
	scaleY  float64
}

func newCanvas(w, h int, pts []network.Point) *canvas {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	if len(pts) == 0 {
		minX, minY, maxX, maxY = 0, 0, 1, 1
	}
	cv := &canvas{minX: minX, minY: minY, scaleX: 1, scaleY: 1}
	if maxX > minX {
		cv.scaleX = float64(w-1) / (maxX - minX)
	}
	if maxY > minY {
		cv.scaleY = float64(h-1) / (maxY - minY)
	}
	cv.runes = make([][]rune, h)
	cv.classes = make([][]cellClass, h)
	for r := range cv.runes {
		cv.runes[r] = []rune(strings.Repeat(" ", w))
		cv.classes[r] = make([]cellClass, w)
	}
	return cv
}

func (cv *canvas) cell(p network.Point) (int, int) {
	col := int(math.Round((p.X - cv.minX) * cv.scaleX))
	row := int(math.Round((p.Y - cv.minY) * cv.scaleY))
	return col, row
}

func (cv *canvas) set(col, row int, r rune, class cellClass) {
	if row < 0 || row >= len(cv.runes) || col < 0 || col >= len(cv.runes[row]) {
		return
	}
	cv.runes[row][col] = r
	cv.classes[row][col] = class
}

// line draws the polyline pts.
func (cv *canvas) line(pts []network.Point, class cellClass) {
	for i := 1; i < len(pts); i++ {
		c0, r0 := cv.cell(pts[i-1])
		c1, r1 := cv.cell(pts[i])
		n := max(abs(c1-c0), abs(r1-r0))
		ch := '─'
		if abs(r1-r0) > abs(c1-c0) {
			ch = '│'
		}
		for s := 0; s <= n; s++ {
			col, row := c0, r0
			if n > 0 {
				col = c0 + (c1-c0)*s/n
				row = r0 + (r1-r0)*s/n
			}
			cv.set(col, row, ch, class)
		}
	}
}

func (cv *canvas) String() string {
	var b strings.Builder
	for r, row := range cv.runes {
		start := 0
		for c := 1; c <= len(row); c++ {
			if c < len(row) && cv.classes[r][c] == cv.classes[r][start] {
				continue
			}
			b.WriteString(cellStyles[cv.classes[r][start]].Render(string(row[start:c])))
			start = c
		}
		b.WriteString("\n")
	}
	return b.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// glyph is the map symbol of a connectable.
func glyph(c network.Connectable) rune {
	switch v := c.(type) {
	case *network.Outlet:
		return 'O'
	case *network.Equipment:
		switch {
		case v.IsController:
			return 'C'
		case !v.IsWireable():
			return '.'
		}
		return '#'
	}
	return '?'
}

func (m *session) View() string {
	idx := m.snapshot.Index()
	var pts []network.Point
	for _, c := range m.snapshot.Connectables {
		if c != nil {
			pts = append(pts, c.Base().Position)
		}
	}
	pts = append(pts, m.cursor)
	pts = append(pts, m.preview.Points...)
	for _, e := range m.snapshot.Edges {
		pts = append(pts, e.Via...)
	}

	cv := newCanvas(m.width, m.height, pts)
	for _, e := range m.snapshot.Edges {
		from, ok1 := idx[e.From]
		to, ok2 := idx[e.To]
		if !ok1 || !ok2 {
			continue
		}
		class := cellPower
		if e.Kind == network.KindDMX {
			class = cellDMX
		}
		cv.line(e.Polyline(from.Base().Position, to.Base().Position), class)
	}
	cv.line(m.preview.Points, cellPreview)
	for _, c := range m.snapshot.Connectables {
		if c == nil {
			continue
		}
		col, row := cv.cell(c.Base().Position)
		cv.set(col, row, glyph(c), cellItem)
	}
	col, row := cv.cell(m.cursor)
	r := '+'
	if row >= 0 && row < len(cv.runes) && col >= 0 && col < len(cv.runes[row]) && cv.runes[row][col] != ' ' {
		r = cv.runes[row][col]
	}
	cv.set(col, row, r, cellCursor)

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Route cables"))
	b.WriteString("\n")
	b.WriteString(cv.String())
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *session) statusLine() string {
	kind := m.kind
	if m.router.State() == route.Routing {
		kind = m.router.Kind()
	}
	kindStyle := cellStyles[cellPower]
	if kind == network.KindDMX {
		kindStyle = cellStyles[cellDMX]
	}

	parts := []string{
		kindStyle.Render(strings.ToUpper(kind.String())),
		StyleDim.Render(m.router.Axis().String() + " first"),
		StyleDim.Render(fmt.Sprintf("(%g, %g)", m.cursor.X, m.cursor.Y)),
	}
	if m.router.State() == route.Routing {
		parts = append(parts, StyleHighlight.Render("from "+m.router.Start()))
	}
	if m.preview.Snapped() {
		parts = append(parts, StyleSuccess.Render("→ "+m.preview.Target))
	}
	if len(m.added) > 0 {
		parts = append(parts, StyleNumber.Render(fmt.Sprintf("%d added", len(m.added))))
	}
	if m.message != "" {
		parts = append(parts, StyleValue.Render(m.message))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
