package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"studyroom/internal/companion"
	"studyroom/internal/i18n"
	"studyroom/internal/identity"
	"studyroom/internal/room"
	"studyroom/internal/timer"
)

type screen int

const (
	screenLogin screen = iota
	screenRoom
)

// focusArea 学习室页面上可获得焦点的区域，按 tab 顺序排列
// focusArea is a focusable region of the room screen, in tab order.
type focusArea int

const (
	focusTaskInput focusArea = iota
	focusTaskList
	focusChat
	focusBase
	focusKey
	focusModel
	focusCount
)

// --- Tea Messages ---

// tickMsg 每秒刷新一次时钟显示
// tickMsg redraws the clocks once per second.
type tickMsg time.Time

// sendDoneMsg 对话请求结束
// sendDoneMsg carries the outcome of one companion send.
type sendDoneMsg struct {
	result companion.Result
	err    error
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	room *room.Room
	tr   *i18n.I18n
	now  func() time.Time

	// 布局 / Layout
	width  int
	height int
	screen screen

	// 登录 / Login
	loginInput textinput.Model
	loginErr   string

	// 学习室 / Room
	focus      focusArea
	taskInput  textinput.Model
	selected   int
	chatInput  textinput.Model
	cfgInputs  [3]textinput.Model
	transcript viewport.Model
	rendered   string
	pending    bool
	notice     string

	// 配置 / Config
	theme Theme
	keys  KeyMap
}

// NewApp 创建 TUI 应用；已有登录身份时直接进入学习室
// NewApp creates the TUI. A room with an active session opens on the room screen.
func NewApp(r *room.Room, now func() time.Time) App {
	if now == nil {
		now = time.Now
	}
	tr := r.Translator()

	login := textinput.New()
	login.Placeholder = tr.T("login.placeholder")
	login.CharLimit = 64
	login.Focus()

	task := textinput.New()
	task.Placeholder = tr.T("todo.placeholder")
	task.CharLimit = 200

	msg := textinput.New()
	msg.Placeholder = tr.T("companion.placeholder")
	msg.CharLimit = 2000

	var cfg [3]textinput.Model
	for i := range cfg {
		cfg[i] = textinput.New()
		cfg[i].CharLimit = 512
	}
	cfg[1].EchoMode = textinput.EchoPassword

	a := App{
		room:       r,
		tr:         tr,
		now:        now,
		loginInput: login,
		taskInput:  task,
		chatInput:  msg,
		cfgInputs:  cfg,
		transcript: viewport.New(40, 10),
		theme:      WarmTheme(),
		keys:       DefaultKeyMap(tr),
	}
	if r.Session() != nil {
		a.enterRoom()
	}
	return a
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case tickMsg:
		return a, tick()

	case sendDoneMsg:
		a.pending = false
		if errors.Is(msg.err, companion.ErrSendInFlight) {
			a.notice = a.tr.T("companion.error.busy")
		}
		a.refreshTranscript()
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		if a.screen == screenLogin {
			return a.updateLogin(msg)
		}
		return a.updateRoom(msg)
	}

	return a.forwardToInput(msg)
}

func (a App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, a.keys.Submit) {
		var cmd tea.Cmd
		a.loginInput, cmd = a.loginInput.Update(msg)
		return a, cmd
	}
	if _, err := a.room.Login(a.loginInput.Value()); err != nil {
		if errors.Is(err, identity.ErrEmptyName) {
			a.loginErr = a.tr.T("login.empty")
		} else {
			a.loginErr = a.tr.T("error.storage", err.Error())
		}
		return a, nil
	}
	a.loginErr = ""
	a.loginInput.Reset()
	a.enterRoom()
	return a, nil
}

func (a App) updateRoom(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := a.room.Session()
	if s == nil {
		a.leaveRoom()
		return a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Toggle):
		s.Timer.Toggle()
		return a, nil
	case key.Matches(msg, a.keys.End):
		s.Timer.EndSession()
		a.notice = a.tr.T("room.session_end", timer.FormatClock(s.Timer.Snapshot().CumulativeSeconds))
		return a, nil
	case key.Matches(msg, a.keys.Visual):
		if _, err := a.room.ToggleVisual(); err != nil {
			a.notice = a.tr.T("error.storage", err.Error())
		}
		return a, nil
	case key.Matches(msg, a.keys.Logout):
		if err := a.room.Logout(); err != nil {
			a.notice = a.tr.T("error.storage", err.Error())
		}
		a.leaveRoom()
		return a, nil
	case key.Matches(msg, a.keys.Focus):
		step := focusArea(1)
		if msg.String() == "shift+tab" {
			step = focusCount - 1
		}
		a.setFocus((a.focus + step) % focusCount)
		return a, nil
	case key.Matches(msg, a.keys.Tips):
		tips := s.Companion.StarterPrompts()
		idx := int(msg.String()[1] - '1')
		if idx >= 0 && idx < len(tips) {
			return a.send(s.Companion, tips[idx])
		}
		return a, nil
	}

	if a.focus == focusTaskList {
		return a.updateTaskList(msg), nil
	}
	if key.Matches(msg, a.keys.Submit) {
		return a.submit(s)
	}
	return a.forwardToInput(msg)
}

func (a App) updateTaskList(msg tea.KeyMsg) App {
	s := a.room.Session()
	items := s.Tasks.Items()
	if len(items) == 0 {
		return a
	}
	if a.selected >= len(items) {
		a.selected = len(items) - 1
	}
	var err error
	switch {
	case key.Matches(msg, a.keys.ItemUp):
		if a.selected > 0 {
			a.selected--
		}
	case key.Matches(msg, a.keys.ItemDown):
		if a.selected < len(items)-1 {
			a.selected++
		}
	case key.Matches(msg, a.keys.TodoDone):
		_, err = s.Tasks.Toggle(items[a.selected].ID)
	case key.Matches(msg, a.keys.TodoRemove):
		_, err = s.Tasks.Remove(items[a.selected].ID)
		if a.selected > 0 && a.selected >= len(items)-1 {
			a.selected--
		}
	}
	if err != nil {
		a.notice = a.tr.T("error.storage", err.Error())
	}
	return a
}

func (a App) submit(s *room.Session) (tea.Model, tea.Cmd) {
	switch a.focus {
	case focusTaskInput:
		item, added, err := s.Tasks.Add(a.taskInput.Value())
		if err != nil {
			a.notice = a.tr.T("error.storage", err.Error())
			return a, nil
		}
		if added {
			a.taskInput.Reset()
			a.notice = a.tr.T("todo.added", item.ID)
		}
		return a, nil
	case focusChat:
		text := a.chatInput.Value()
		a.chatInput.Reset()
		return a.send(s.Companion, text)
	case focusBase, focusKey, focusModel:
		fields := [3]companion.Field{companion.FieldEndpointBase, companion.FieldAPIKey, companion.FieldModel}
		idx := int(a.focus - focusBase)
		value := strings.TrimSpace(a.cfgInputs[idx].Value())
		// 密钥输入框不回显已有值，空回车不清除密钥
		if a.focus == focusKey && value == "" {
			return a, nil
		}
		if err := s.Companion.UpdateConfig(fields[idx], value); err != nil {
			a.notice = a.tr.T("error.storage", err.Error())
			return a, nil
		}
		a.notice = a.tr.T("config.saved", a.cfgLabel(idx))
		a.loadConfigInputs(s.Companion)
		return a, nil
	}
	return a, nil
}

// send 在后台发送消息，期间显示"思考中"
// send runs SendMessage off the update loop.
func (a App) send(c *companion.Client, text string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return a, nil
	}
	if a.pending || c.Sending() {
		a.notice = a.tr.T("companion.error.busy")
		return a, nil
	}
	a.pending = true
	a.notice = ""
	cmd := func() tea.Msg {
		res, err := c.SendMessage(context.Background(), text)
		return sendDoneMsg{result: res, err: err}
	}
	return a, cmd
}

func (a App) forwardToInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.screen == screenLogin:
		a.loginInput, cmd = a.loginInput.Update(msg)
	case a.focus == focusTaskInput:
		a.taskInput, cmd = a.taskInput.Update(msg)
	case a.focus == focusChat:
		a.chatInput, cmd = a.chatInput.Update(msg)
	case a.focus >= focusBase && a.focus <= focusModel:
		idx := a.focus - focusBase
		a.cfgInputs[idx], cmd = a.cfgInputs[idx].Update(msg)
	}
	return a, cmd
}

// --- 内部方法 / Internal methods ---

func (a *App) enterRoom() {
	a.screen = screenRoom
	a.loginInput.Blur()
	a.selected = 0
	a.notice = ""
	if s := a.room.Session(); s != nil {
		a.loadConfigInputs(s.Companion)
	}
	a.setFocus(focusTaskInput)
	a.refreshTranscript()
}

func (a *App) leaveRoom() {
	a.screen = screenLogin
	a.pending = false
	a.rendered = ""
	a.taskInput.Reset()
	a.chatInput.Reset()
	a.setFocus(focusTaskInput)
	a.taskInput.Blur()
	a.loginInput.Focus()
}

func (a *App) loadConfigInputs(c *companion.Client) {
	cfg := c.Config()
	a.cfgInputs[0].SetValue(cfg.EndpointBase)
	a.cfgInputs[1].Reset()
	a.cfgInputs[1].Placeholder = cfg.MaskedKey()
	a.cfgInputs[2].SetValue(cfg.Model)
}

func (a *App) setFocus(f focusArea) {
	a.focus = f
	a.taskInput.Blur()
	a.chatInput.Blur()
	for i := range a.cfgInputs {
		a.cfgInputs[i].Blur()
	}
	switch f {
	case focusTaskInput:
		a.taskInput.Focus()
	case focusChat:
		a.chatInput.Focus()
	case focusBase, focusKey, focusModel:
		a.cfgInputs[f-focusBase].Focus()
	}
}

func (a *App) relayout() {
	_, right := a.columnWidths()
	h := a.height - 18
	if h < 4 {
		h = 4
	}
	a.transcript.Width = right - 4
	a.transcript.Height = h
	a.chatInput.Width = right - 6
	a.taskInput.Width = right - 6
	for i := range a.cfgInputs {
		a.cfgInputs[i].Width = right - 20
	}
	a.refreshTranscript()
}

func (a *App) refreshTranscript() {
	s := a.room.Session()
	if s == nil {
		return
	}
	width := a.transcript.Width
	if width <= 0 {
		width = 40
	}
	a.rendered = RenderTranscript(s.Companion.Transcript(), width, a.theme)
	a.transcript.SetContent(a.rendered)
	a.transcript.GotoBottom()
}

func (a App) columnWidths() (left, right int) {
	if a.width < 60 {
		return a.width, a.width
	}
	left = a.width * 2 / 5
	return left, a.width - left
}

func (a App) cfgLabel(idx int) string {
	return a.tr.T([3]string{"config.endpoint_base", "config.api_key", "config.model"}[idx])
}

// --- 渲染方法 / Render methods ---

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "..."
	}
	if a.screen == screenLogin {
		return a.renderLogin()
	}
	s := a.room.Session()
	if s == nil {
		return a.renderLogin()
	}

	left, right := a.columnWidths()
	header := a.renderHeader(s)
	leftCol := lipgloss.JoinVertical(lipgloss.Left,
		a.renderTimer(s, left),
		a.renderTasks(s, left),
	)
	rightCol := a.renderCompanion(s, right)

	var body string
	if a.width < 60 {
		body = lipgloss.JoinVertical(lipgloss.Left, leftCol, rightCol)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, a.renderStatusBar(a.width))
}

func (a App) renderLogin() string {
	parts := []string{
		a.theme.TitleStyle.Render(a.tr.T("login.title")),
		"",
		a.tr.T("login.prompt"),
		a.loginInput.View(),
	}
	if a.loginErr != "" {
		parts = append(parts, a.theme.ErrorStyle.Render(a.loginErr))
	}
	box := a.theme.FocusedStyle.Render(strings.Join(parts, "\n"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, box)
}

func (a App) renderHeader(s *room.Session) string {
	visual := a.tr.T("room.visual_off")
	if on, err := a.room.VisualEnabled(); err == nil && on {
		visual = a.tr.T("room.visual_on")
	}
	left := a.theme.TitleStyle.Render(a.tr.T("login.title")) + "  " + a.tr.T("room.welcome", s.Identity.Name)
	right := a.theme.MutedStyle.Render(visual + " · " + a.tr.T("keys.logout"))
	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a App) renderTimer(s *room.Session, width int) string {
	st := s.Timer.Snapshot()
	action := a.tr.T("room.start")
	if st.Active {
		action = a.tr.T("room.pause")
	}

	line := a.room.CompanionLine(a.now())
	if on, err := a.room.VisualEnabled(); err == nil && on {
		avatar := "(•‿•)"
		if st.Active {
			avatar = "(◕‿◕)✎"
		}
		line = a.theme.UserStyle.Render(avatar) + " " + line
	}

	parts := []string{
		fmt.Sprintf("%s  %s", a.tr.T("room.current"), a.theme.ClockStyle.Render(timer.FormatClock(st.CurrentSeconds))),
		fmt.Sprintf("%s  %s", a.tr.T("room.total"), a.theme.ClockStyle.Render(timer.FormatClock(st.CumulativeSeconds))),
		a.theme.MutedStyle.Render(timer.StatusLine(a.tr, st.Active, st.CurrentSeconds)),
		"",
		line,
		"",
		a.theme.SelectedStyle.Render("[ctrl+s] "+action) + "  " + a.theme.MutedStyle.Render("[ctrl+e] "+a.tr.T("room.end")),
	}
	return a.theme.PanelStyle.Width(width - 2).Render(strings.Join(parts, "\n"))
}

func (a App) renderTasks(s *room.Session, width int) string {
	items := s.Tasks.Items()
	done, total := s.Tasks.Progress()

	parts := []string{
		a.theme.TitleStyle.Render(a.tr.T("todo.title")) + "  " + a.theme.MutedStyle.Render(a.tr.T("todo.progress", done, total)),
		RenderProgress(done, total, width-8),
	}
	if len(items) == 0 {
		parts = append(parts, a.theme.MutedStyle.Render(a.tr.T("todo.empty")))
	}
	for i, item := range items {
		box := "[ ]"
		text := item.Text
		if item.Done {
			box = "[x]"
			text = a.theme.DoneStyle.Render(text)
		}
		row := fmt.Sprintf("%s %s", box, text)
		if a.focus == focusTaskList && i == a.selected {
			row = a.theme.SelectedStyle.Render("›") + " " + row
		} else {
			row = "  " + row
		}
		parts = append(parts, row)
	}
	parts = append(parts, "", a.taskInput.View())

	style := a.theme.PanelStyle
	if a.focus == focusTaskInput || a.focus == focusTaskList {
		style = a.theme.FocusedStyle
	}
	return style.Width(width - 2).Render(strings.Join(parts, "\n"))
}

func (a App) renderCompanion(s *room.Session, width int) string {
	c := s.Companion
	parts := []string{a.theme.TitleStyle.Render(a.tr.T("companion.title")), a.transcript.View()}

	if len(c.Transcript()) == 1 {
		for i, tip := range c.StarterPrompts() {
			parts = append(parts, a.theme.MutedStyle.Render(fmt.Sprintf("F%d  %s", i+1, tip)))
		}
	}
	if a.pending || c.Sending() {
		parts = append(parts, a.theme.MutedStyle.Render(a.tr.T("companion.sending")))
	}
	if msg := c.LastError(); msg != "" {
		parts = append(parts, a.theme.ErrorStyle.Render(msg))
	}
	parts = append(parts, a.chatInput.View(), "", a.theme.TitleStyle.Render(a.tr.T("config.title")))
	for i := range a.cfgInputs {
		parts = append(parts, fmt.Sprintf("%-14s %s", a.cfgLabel(i), a.cfgInputs[i].View()))
	}

	style := a.theme.PanelStyle
	if a.focus >= focusChat {
		style = a.theme.FocusedStyle
	}
	return style.Width(width - 2).Render(strings.Join(parts, "\n"))
}

func (a App) renderStatusBar(width int) string {
	helps := make([]string, 0, 8)
	for _, b := range a.keys.HelpLine() {
		helps = append(helps, b.Help().Desc)
	}
	if a.focus == focusTaskList {
		helps = append(helps, a.keys.TodoDone.Help().Desc, a.keys.TodoRemove.Help().Desc)
	}
	left := " " + strings.Join(helps, " · ")
	right := a.notice + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(r *room.Room) error {
	p := tea.NewProgram(NewApp(r, time.Now), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
