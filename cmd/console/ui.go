package main

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/input"
	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/textfilter"
	"github.com/jwebster45206/resume-quest/pkg/world"
)

const (
	frameInterval  = time.Second / 30
	sidePanelWidth = 46
	// Terminals report key repeats but never key releases, so a movement
	// key counts as held until this long after its last repeat.
	keyHold = 180 * time.Millisecond

	PlaceHolderText = "Ask about this mission..."
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	titlePulseStyle = titleStyle.Reverse(true)

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")). // green
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	mapStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))

	sidePanelStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			PaddingRight(1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)
)

type frameMsg time.Time

func nextFrame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	eng   *engine.Engine
	title string
	snap  engine.Snapshot

	held      map[input.Key]time.Time
	lastFrame time.Time

	side     viewport.Model
	textarea textarea.Model
	width    int
	height   int
	ready    bool
	status   string // console-only messages, e.g. clipboard results

	showQuitModal bool
}

func NewConsoleUI(eng *engine.Engine, title string) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = chat.MaxQuestionLength
	ta.SetWidth(sidePanelWidth - 4)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	return ConsoleUI{
		eng:      eng,
		title:    strings.ToUpper(title),
		snap:     eng.Snapshot(),
		held:     make(map[input.Key]time.Time),
		side:     viewport.New(sidePanelWidth, 20),
		textarea: ta,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nextFrame()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.side.Width = sidePanelWidth
		m.side.Height = max(msg.Height-6, 5)
		m.ready = true
		m.side.SetContent(m.renderSide())
		return m, nil

	case frameMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastFrame.IsZero() {
			dt = now.Sub(m.lastFrame).Seconds()
		}
		m.lastFrame = now
		m.releaseExpired(now)
		m.eng.Tick(dt)
		m.refresh()
		return m, nextFrame()

	case tea.MouseMsg:
		// The title sits on the first row; clicking it is the secret handshake.
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
			m.eng.ClickTitle()
			m.refresh()
		}
		var cmd tea.Cmd
		m.side, cmd = m.side.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		if m.snap.Chat != nil {
			return m.updateChat(msg)
		}
		m.handleGameKey(msg.String(), time.Now())
		m.refresh()
		return m, nil
	}

	return m, nil
}

// handleGameKey routes one key press while no chat is open.
func (m *ConsoleUI) handleGameKey(raw string, now time.Time) {
	m.status = ""

	if n, ok := digit(raw); ok {
		switch {
		case m.snap.ShopOpen:
			catalog := m.eng.Catalog()
			if n <= len(catalog) {
				_ = m.eng.Purchase(catalog[n-1].ID) // the engine notifies either way
			}
			return
		case m.snap.MenuOpen && m.snap.MenuView == engine.MenuMissions:
			if id, ok := completedMissionAt(m.snap.Missions, n); ok && m.eng.OpenChat(id) == nil {
				m.textarea.Focus()
			}
			return
		}
	}
	if raw == "tab" && m.snap.MenuOpen {
		view := engine.MenuMissions
		if m.snap.MenuView == engine.MenuMissions {
			view = engine.MenuMain
		}
		m.eng.OpenMenu(view)
		return
	}

	key, ok := input.Parse(raw)
	if !ok {
		return
	}
	if key.IsMovement() {
		m.eng.SetKey(key, true)
		m.held[key] = now.Add(keyHold)
		return
	}
	m.eng.Press(key)
}

func (m ConsoleUI) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.eng.CloseChat()
		m.textarea.Blur()
		m.textarea.Reset()
		m.refresh()
		return m, nil
	case "enter":
		question := strings.TrimSpace(m.textarea.Value())
		if question == "" {
			return m, nil
		}
		if err := m.eng.AskChat(question); err != nil {
			m.status = err.Error()
		} else {
			m.textarea.Reset()
		}
		m.refresh()
		return m, nil
	case "ctrl+y":
		m.status = m.copyLastAnswer()
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m *ConsoleUI) copyLastAnswer() string {
	msgs := m.snap.Chat.Messages
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == chat.ChatRoleAgent {
			if err := clipboard.WriteAll(msgs[i].Text); err != nil {
				return "Could not copy: " + err.Error()
			}
			return "Answer copied to clipboard."
		}
	}
	return "Nothing to copy yet."
}

func (m *ConsoleUI) releaseExpired(now time.Time) {
	for k, until := range m.held {
		if now.After(until) {
			m.eng.SetKey(k, false)
			delete(m.held, k)
		}
	}
}

func (m *ConsoleUI) refresh() {
	m.snap = m.eng.Snapshot()
	if m.ready {
		m.side.SetContent(m.renderSide())
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case frameMsg:
		// The world keeps its clock while the modal is up.
		return m, nextFrame()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "enter", "y", "Y":
			return m, tea.Quit
		case "esc", "n", "N":
			m.showQuitModal = false
		}
	}
	return m, nil
}

func (m ConsoleUI) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	style := titleStyle
	if m.snap.TitlePulse {
		style = titlePulseStyle
	}
	header := style.Render(m.title) + "  " + promptStyle.Render("WASD/arrows move · E interact · I inventory · M menu · H HUD · Ctrl+C quit")

	cols := max(m.width-sidePanelWidth-4, 10)
	rows := max(m.height-4, 5)
	board := mapStyle.Render(renderMap(m.snap, cols, rows))

	side := m.side.View()
	if m.snap.Chat != nil {
		side = lipgloss.JoinVertical(lipgloss.Left, side, m.textarea.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, board, sidePanelStyle.Render(side)),
	)
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave? Progress is not saved.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

// renderSide builds the HUD and whichever modal is open.
func (m ConsoleUI) renderSide() string {
	s := m.snap
	width := sidePanelWidth - 2
	var b strings.Builder

	if s.Notification != "" {
		b.WriteString(noticeStyle.Render(wordwrap.String(s.Notification, width)) + "\n\n")
	}
	if m.status != "" {
		b.WriteString(promptStyle.Render(m.status) + "\n\n")
	}

	switch {
	case s.Chat != nil:
		writeChat(&b, s.Chat, width)
		return b.String()
	case s.Dialogue != nil:
		b.WriteString(speakerStyle.Render(s.Dialogue.NPCName+":") + "\n")
		b.WriteString(wordwrap.String(s.Dialogue.Text, width) + "\n\n")
		b.WriteString(promptStyle.Render("E or Esc to close") + "\n\n")
	case s.ShopOpen:
		writeShop(&b, m.eng, s, width)
		return b.String()
	case s.InventoryOpen:
		writeInventory(&b, s)
		return b.String()
	case s.MenuOpen:
		writeMenu(&b, s, width)
		return b.String()
	}

	if s.HUDVisible {
		writeHUD(&b, s, width)
	}
	return b.String()
}

func writeHUD(b *strings.Builder, s engine.Snapshot, width int) {
	p := s.Player
	b.WriteString(headingStyle.Render("PLAYER") + "\n")
	fmt.Fprintf(b, "Level %d  XP %.0f/%.0f\n", p.Level, p.XP, s.XPToLevelUp)
	fmt.Fprintf(b, "Coins %d\n", p.Coins)
	if len(p.Gems) > 0 {
		colors := make([]string, 0, len(p.Gems))
		for c := range p.Gems {
			colors = append(colors, c)
		}
		slices.Sort(colors)
		parts := make([]string, len(colors))
		for i, c := range colors {
			parts[i] = fmt.Sprintf("%s %d", c, p.Gems[c])
		}
		b.WriteString("Gems " + strings.Join(parts, ", ") + "\n")
	}
	if s.DevMode {
		b.WriteString(noticeStyle.Render("DEV MODE (T teleports)") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("OBJECTIVE") + "\n")
	active, ok := s.Missions.Find(s.ActiveMissionID)
	if !ok {
		b.WriteString("Every mission is complete. Check the menu (M) to chat about them.\n")
	} else {
		b.WriteString(textfilter.TitleCase(active.Title) + "\n")
		if step, ok := active.CurrentStep(); ok {
			b.WriteString(wordwrap.String(step.Description, width) + "\n")
		}
		if s.MissionTarget != nil {
			tx, ty := s.MissionTarget.Rect.Center()
			px, py := p.Box().Center()
			dx, dy := tx-px, ty-py
			fmt.Fprintf(b, "%s %s\n", arrow(dx, dy), s.MissionTarget.DisplayName(s.MissionTarget.ID))
		}
	}
	b.WriteString("\n")

	if s.Target != nil {
		fmt.Fprintf(b, "Press E: %s\n", s.Target.DisplayName(s.Target.ID))
	}
}

func writeShop(b *strings.Builder, eng *engine.Engine, s engine.Snapshot, width int) {
	b.WriteString(headingStyle.Render("SHOP") + fmt.Sprintf("  (coins %d)\n\n", s.Player.Coins))
	for i, item := range eng.Catalog() {
		owned := ""
		if s.Player.HasUpgrade(item.ID) {
			owned = " [owned]"
		}
		fmt.Fprintf(b, "%d. %s  %d coins%s\n", i+1, item.Name, item.Cost, owned)
		b.WriteString(promptStyle.Render(wordwrap.String(item.Description, width-3)) + "\n")
	}
	b.WriteString("\n" + promptStyle.Render("Number to buy, Esc to leave") + "\n")
}

func writeInventory(b *strings.Builder, s engine.Snapshot) {
	b.WriteString(headingStyle.Render("INVENTORY") + "\n\n")
	if len(s.Player.Inventory) == 0 {
		b.WriteString("Empty.\n")
	}
	for _, it := range s.Player.Inventory {
		fmt.Fprintf(b, "• %s x%d\n", it.Name, it.Quantity)
	}
	if len(s.Player.Upgrades) > 0 {
		b.WriteString("\nUpgrades: " + strings.Join(s.Player.Upgrades, ", ") + "\n")
	}
	b.WriteString("\n" + promptStyle.Render("I or Esc to close") + "\n")
}

func writeMenu(b *strings.Builder, s engine.Snapshot, width int) {
	if s.MenuView == engine.MenuMain {
		b.WriteString(headingStyle.Render("MENU") + "\n\n")
		b.WriteString("Tab: missions\nH: toggle HUD\nEsc: resume\n")
		return
	}

	b.WriteString(headingStyle.Render("MISSIONS") + "\n\n")
	n := 0
	for _, ms := range s.Missions {
		label := "  "
		if ms.Status == mission.StatusCompleted {
			n++
			label = fmt.Sprintf("%d.", n)
		}
		fmt.Fprintf(b, "%s %s [%s]\n", label, ms.Title, ms.Status)
		if ms.Status != mission.StatusLocked {
			b.WriteString(promptStyle.Render(wordwrap.String(ms.Description, width-3)) + "\n")
		}
	}
	b.WriteString("\n" + promptStyle.Render("Number to chat about a completed mission, Tab: main menu") + "\n")
}

func writeChat(b *strings.Builder, c *engine.ChatSession, width int) {
	b.WriteString(headingStyle.Render("ASK ABOUT: "+c.MissionTitle) + "\n\n")
	for _, msg := range c.Messages {
		if msg.Sender == chat.ChatRoleUser {
			b.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Text, width-5) + "\n\n")
			continue
		}
		b.WriteString(speakerStyle.Render("Assistant:") + "\n" + wordwrap.String(msg.Text, width) + "\n")
		for _, src := range msg.Sources {
			b.WriteString(promptStyle.Render("  ↳ "+src.Title+" "+src.URI) + "\n")
		}
		b.WriteString("\n")
	}
	if c.Pending {
		b.WriteString(noticeStyle.Render("Thinking...") + "\n\n")
	}
	b.WriteString(promptStyle.Render("Enter to ask, Ctrl+Y copies the last answer, Esc closes") + "\n")
}

// completedMissionAt returns the id of the n-th completed mission, counting
// from 1 in table order.
func completedMissionAt(t mission.Table, n int) (int, bool) {
	for _, m := range t {
		if m.Status != mission.StatusCompleted {
			continue
		}
		n--
		if n == 0 {
			return m.ID, true
		}
	}
	return 0, false
}

func digit(raw string) (int, bool) {
	if len(raw) != 1 || raw[0] < '1' || raw[0] > '9' {
		return 0, false
	}
	return int(raw[0] - '0'), true
}

var arrows = []string{"→", "↘", "↓", "↙", "←", "↖", "↑", "↗"}

// arrow points from the player toward (dx, dy). Screen y grows downward.
func arrow(dx, dy float64) string {
	if dx == 0 && dy == 0 {
		return "•"
	}
	angle := math.Atan2(dy, dx)
	i := int(math.Round(angle/(math.Pi/4))+8) % 8
	return arrows[i]
}

type cell struct {
	r     rune
	color string
}

// renderMap draws the world scaled into a cols x rows character grid.
func renderMap(s engine.Snapshot, cols, rows int) string {
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{'·', "236"}
		}
	}
	sx := s.WorldWidth / float64(cols)
	sy := s.WorldHeight / float64(rows)

	fill := func(r world.Rect, ch rune, color string) {
		x0, y0 := int(r.X/sx), int(r.Y/sy)
		x1, y1 := int((r.X+r.W-1)/sx), int((r.Y+r.H-1)/sy)
		for y := max(y0, 0); y <= min(y1, rows-1); y++ {
			for x := max(x0, 0); x <= min(x1, cols-1); x++ {
				grid[y][x] = cell{ch, color}
			}
		}
	}

	for _, o := range s.Objects {
		color := o.Color
		if color == "" {
			color = "250"
		}
		switch o.Category {
		case world.CategoryBuilding:
			fill(o.Rect, '█', color)
		case world.CategoryObstacle:
			fill(o.Rect, '♣', color)
		case world.CategoryNPC:
			ch := 'N'
			if name := o.DisplayName(o.ID); name != "" {
				ch = []rune(name)[0]
			}
			fill(o.Rect, ch, color)
		default:
			fill(o.Rect, '◆', color)
		}
	}
	if s.Target != nil {
		fill(s.Target.Rect, '!', "226")
	}
	fill(s.Player.Box(), '@', "231")

	var out strings.Builder
	for y, row := range grid {
		var run strings.Builder
		color := row[0].color
		for _, c := range row {
			if c.color != color {
				out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
				run.Reset()
				color = c.color
			}
			run.WriteRune(c.r)
		}
		out.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(run.String()))
		if y < rows-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}
