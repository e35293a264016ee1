package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"studyroom/internal/clock"
	"studyroom/internal/companion"
	"studyroom/internal/contextmgr"
	"studyroom/internal/i18n"
	"studyroom/internal/provider"
	"studyroom/internal/room"
	"studyroom/internal/storage"
)

type echoProvider struct{}

func (echoProvider) Chat(_ context.Context, req provider.ChatRequest) (provider.ChatResponse, error) {
	last := req.Messages[len(req.Messages)-1]
	return provider.ChatResponse{Content: "**got** " + last.Content}, nil
}

func newTestApp(t *testing.T) (App, *room.Room) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	r := room.Open(storage.NewMemoryStore(), echoProvider{}, clk, room.Options{
		Companion: companion.Options{
			Defaults:   companion.Config{APIKey: "sk-test-key"},
			Translator: i18n.New("zh-CN"),
			Tokenizer:  contextmgr.NewHeuristicTokenizer(),
		},
	})
	t.Cleanup(func() { _ = r.Close() })
	app := NewApp(r, clk.Now)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), r
}

func typeText(t *testing.T, a App, text string) App {
	t.Helper()
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m.(App)
}

func press(t *testing.T, a App, k tea.KeyType) App {
	t.Helper()
	m, _ := a.Update(tea.KeyMsg{Type: k})
	return m.(App)
}

func login(t *testing.T, a App, name string) App {
	t.Helper()
	a = typeText(t, a, name)
	return press(t, a, tea.KeyEnter)
}

func TestApp_Login(t *testing.T) {
	app, r := newTestApp(t)
	if app.screen != screenLogin {
		t.Fatalf("screen=%v, want login", app.screen)
	}

	app = press(t, app, tea.KeyEnter)
	if app.loginErr != "请输入昵称。" {
		t.Fatalf("loginErr=%q", app.loginErr)
	}
	if r.Session() != nil {
		t.Fatalf("blank name must not log in")
	}

	app = login(t, app, "小林")
	if app.screen != screenRoom {
		t.Fatalf("screen=%v, want room", app.screen)
	}
	if s := r.Session(); s == nil || s.Identity.Name != "小林" {
		t.Fatalf("session=%+v", s)
	}
	if view := app.View(); !strings.Contains(view, "欢迎，小林") {
		t.Fatalf("view missing welcome:\n%s", view)
	}
}

func TestApp_ResumedSessionOpensRoom(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	kv := storage.NewMemoryStore()
	r := room.Open(kv, echoProvider{}, clk, room.Options{})
	if _, err := r.Login("alice"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = r.Close() })

	app := NewApp(r, clk.Now)
	if app.screen != screenRoom {
		t.Fatalf("screen=%v, want room", app.screen)
	}
}

func TestApp_TimerAndVisualKeys(t *testing.T) {
	app, r := newTestApp(t)
	app = login(t, app, "alice")
	s := r.Session()

	app = press(t, app, tea.KeyCtrlS)
	if !s.Timer.Active() {
		t.Fatalf("ctrl+s should start the timer")
	}
	app = press(t, app, tea.KeyCtrlS)
	if s.Timer.Active() {
		t.Fatalf("second ctrl+s should pause the timer")
	}

	app = press(t, app, tea.KeyCtrlE)
	if !strings.Contains(app.notice, "00:00:00") {
		t.Fatalf("notice=%q", app.notice)
	}

	app = press(t, app, tea.KeyCtrlV)
	if on, _ := r.VisualEnabled(); !on {
		t.Fatalf("ctrl+v should enable the visual")
	}
	if !strings.Contains(app.View(), "陪伴形象：开") {
		t.Fatalf("view should show the visual state")
	}

	app = press(t, app, tea.KeyCtrlL)
	if app.screen != screenLogin || r.Session() != nil {
		t.Fatalf("ctrl+l should log out")
	}
}

func TestApp_Tasks(t *testing.T) {
	app, r := newTestApp(t)
	app = login(t, app, "alice")
	s := r.Session()

	app = typeText(t, app, "复习英语")
	app = press(t, app, tea.KeyEnter)
	app = typeText(t, app, "背单词")
	app = press(t, app, tea.KeyEnter)
	if got := len(s.Tasks.Items()); got != 2 {
		t.Fatalf("items=%d, want 2", got)
	}
	if app.taskInput.Value() != "" {
		t.Fatalf("task input not cleared: %q", app.taskInput.Value())
	}

	app = press(t, app, tea.KeyTab)
	if app.focus != focusTaskList {
		t.Fatalf("focus=%v, want task list", app.focus)
	}
	app = press(t, app, tea.KeyDown)
	app = press(t, app, tea.KeySpace)
	items := s.Tasks.Items()
	if items[0].Done || !items[1].Done {
		t.Fatalf("second task should be done: %+v", items)
	}
	if done, total := s.Tasks.Progress(); done != 1 || total != 2 {
		t.Fatalf("progress=%d/%d", done, total)
	}

	app = press(t, app, tea.KeyDelete)
	if got := s.Tasks.Items(); len(got) != 1 || got[0].Text != "复习英语" {
		t.Fatalf("items after delete=%+v", got)
	}
	if app.selected != 0 {
		t.Fatalf("selected=%d, want 0", app.selected)
	}
}

func TestApp_ChatRoundTrip(t *testing.T) {
	app, r := newTestApp(t)
	app = login(t, app, "alice")

	app = press(t, app, tea.KeyTab)
	app = press(t, app, tea.KeyTab)
	if app.focus != focusChat {
		t.Fatalf("focus=%v, want chat", app.focus)
	}
	app = typeText(t, app, "hello")
	m, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = m.(App)
	if cmd == nil || !app.pending {
		t.Fatalf("enter should start a send")
	}
	if !strings.Contains(app.View(), "思考中") {
		t.Fatalf("view should show the sending indicator")
	}

	m, _ = app.Update(cmd())
	app = m.(App)
	if app.pending {
		t.Fatalf("pending should clear after the reply")
	}
	transcript := r.Session().Companion.Transcript()
	if len(transcript) != 3 || transcript[2].Content != "**got** hello" {
		t.Fatalf("transcript=%+v", transcript)
	}
	if !strings.Contains(app.rendered, "hello") || strings.Contains(app.rendered, "**") {
		t.Fatalf("reply not rendered: %q", app.rendered)
	}
}

func TestApp_ConfigFields(t *testing.T) {
	app, r := newTestApp(t)
	app = login(t, app, "alice")

	for app.focus != focusModel {
		app = press(t, app, tea.KeyTab)
	}
	app.cfgInputs[2].SetValue("study-model")
	app = press(t, app, tea.KeyEnter)
	if got := r.Session().Companion.Config().Model; got != "study-model" {
		t.Fatalf("model=%q", got)
	}

	app = press(t, app, tea.KeyShiftTab)
	if app.focus != focusKey {
		t.Fatalf("focus=%v, want key", app.focus)
	}
	app = press(t, app, tea.KeyEnter)
	if got := r.Session().Companion.Config().APIKey; got != "sk-test-key" {
		t.Fatalf("empty enter must keep the key, got %q", got)
	}
	if app.cfgInputs[1].Placeholder != "sk-******-key" {
		t.Fatalf("placeholder=%q", app.cfgInputs[1].Placeholder)
	}
}
