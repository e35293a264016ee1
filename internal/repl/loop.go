// Package repl is the line-mode front end of the study room: slash commands drive the
// timer, tasks and settings, and any other line is sent to the study buddy.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"studyroom/internal/companion"
	"studyroom/internal/i18n"
	"studyroom/internal/identity"
	"studyroom/internal/logger"
	"studyroom/internal/room"
	"studyroom/internal/timer"
)

// ANSI colors for the prompt and inline errors
const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[90m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

const todoTextCells = 40

// Options configures a Loop.
type Options struct {
	Now   func() time.Time
	Color bool
}

// Loop holds REPL state: the room, the line reader and the output.
// Loop 持有 REPL 状态：学习室、输入与输出。
type Loop struct {
	room  *room.Room
	tr    *i18n.I18n
	in    LineInput
	out   io.Writer
	now   func() time.Time
	color bool
	log   zerolog.Logger
}

// NewLoop builds a REPL loop over r.
func NewLoop(r *room.Room, in LineInput, out io.Writer, opts Options) *Loop {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Loop{
		room:  r,
		tr:    r.Translator(),
		in:    in,
		out:   out,
		now:   now,
		color: opts.Color,
		log:   logger.With("repl"),
	}
}

// Run reads lines until /quit or EOF. The caller closes the room afterwards.
func (l *Loop) Run(ctx context.Context) error {
	if s := l.room.Session(); s != nil {
		l.println(l.tr.T("room.welcome", s.Identity.Name))
	} else {
		l.println(l.tr.T("room.not_logged"))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := l.in.ReadLine(l.prompt())
		if errors.Is(err, io.EOF) {
			l.println(l.tr.T("repl.bye"))
			return nil
		}
		if err != nil {
			return err
		}
		if l.Handle(ctx, line) {
			l.println(l.tr.T("repl.bye"))
			return nil
		}
	}
}

// Handle 执行一行输入，返回 true 表示退出
// Handle executes one input line and reports whether the loop should stop.
func (l *Loop) Handle(ctx context.Context, line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		l.chat(ctx, line)
		return false
	}

	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	rest := strings.TrimSpace(line[len(fields[0]):])
	l.log.Debug().Str("command", cmd).Msg("repl command")

	switch cmd {
	case "/help":
		l.println(l.tr.T("repl.help"))
		return false
	case "/quit", "/exit":
		return true
	case "/login":
		l.login(rest)
		return false
	case "/logout":
		l.logout()
		return false
	}

	s := l.room.Session()
	if s == nil {
		if isKnownCommand(cmd) {
			l.println(l.tr.T("room.not_logged"))
		} else {
			l.println(l.tr.T("repl.unknown_command", cmd))
		}
		return false
	}

	switch cmd {
	case "/start":
		s.Timer.Start()
		l.printTimer(s)
	case "/pause":
		s.Timer.Pause()
		l.printTimer(s)
	case "/end":
		s.Timer.EndSession()
		l.println(l.tr.T("room.session_end", timer.FormatClock(s.Timer.Snapshot().CumulativeSeconds)))
	case "/status":
		l.printStatus(s)
	case "/todo":
		l.todo(s, rest)
	case "/todos":
		l.printTodos(s)
	case "/config":
		l.config(s, rest)
	case "/tips":
		for i, tip := range s.Companion.StarterPrompts() {
			l.println(fmt.Sprintf("%d. %s", i+1, tip))
		}
	case "/visual":
		on, err := l.room.ToggleVisual()
		if err != nil {
			l.printError(l.tr.T("error.storage", err.Error()))
			break
		}
		if on {
			l.println(l.tr.T("room.visual_on"))
		} else {
			l.println(l.tr.T("room.visual_off"))
		}
	default:
		l.println(l.tr.T("repl.unknown_command", cmd))
	}
	return false
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "/start", "/pause", "/end", "/status", "/todo", "/todos", "/config", "/tips", "/visual":
		return true
	}
	return false
}

func (l *Loop) login(name string) {
	s, err := l.room.Login(name)
	if errors.Is(err, identity.ErrEmptyName) {
		l.printError(l.tr.T("login.empty"))
		return
	}
	if err != nil {
		l.printError(l.tr.T("error.storage", err.Error()))
		return
	}
	l.println(l.tr.T("room.logged_in", s.Identity.Name))
}

func (l *Loop) logout() {
	if l.room.Session() == nil {
		l.println(l.tr.T("room.not_logged"))
		return
	}
	if err := l.room.Logout(); err != nil {
		l.printError(l.tr.T("error.storage", err.Error()))
		return
	}
	l.println(l.tr.T("room.logged_out"))
}

func (l *Loop) todo(s *room.Session, rest string) {
	sub, arg, _ := strings.Cut(rest, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(sub) {
	case "add":
		item, added, err := s.Tasks.Add(arg)
		if err != nil {
			l.printError(l.tr.T("error.storage", err.Error()))
			return
		}
		if !added {
			l.println(l.tr.T("repl.help"))
			return
		}
		l.println(l.tr.T("todo.added", item.ID))
	case "done", "rm":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			l.printError(l.tr.T("todo.bad_id", arg))
			return
		}
		var found bool
		if strings.EqualFold(sub, "done") {
			found, err = s.Tasks.Toggle(id)
		} else {
			found, err = s.Tasks.Remove(id)
		}
		if err != nil {
			l.printError(l.tr.T("error.storage", err.Error()))
			return
		}
		if !found {
			l.printError(l.tr.T("todo.not_found", arg))
			return
		}
		l.printTodos(s)
	default:
		l.println(l.tr.T("repl.help"))
	}
}

func (l *Loop) config(s *room.Session, rest string) {
	c := s.Companion
	if rest == "" {
		cfg := c.Config()
		l.println(padRight(l.tr.T("config.endpoint_base"), 14) + cfg.EndpointBase)
		l.println(padRight(l.tr.T("config.api_key"), 14) + cfg.MaskedKey())
		l.println(padRight(l.tr.T("config.model"), 14) + cfg.Model)
		return
	}
	name, value, _ := strings.Cut(rest, " ")
	field, ok := companion.ParseField(name)
	if !ok {
		l.printError(l.tr.T("config.unknown_field", name))
		return
	}
	if err := c.UpdateConfig(field, strings.TrimSpace(value)); err != nil {
		l.printError(l.tr.T("error.storage", err.Error()))
		return
	}
	l.println(l.tr.T("config.saved", l.fieldLabel(field)))
}

func (l *Loop) fieldLabel(f companion.Field) string {
	switch f {
	case companion.FieldEndpointBase:
		return l.tr.T("config.endpoint_base")
	case companion.FieldAPIKey:
		return l.tr.T("config.api_key")
	}
	return l.tr.T("config.model")
}

func (l *Loop) chat(ctx context.Context, text string) {
	s := l.room.Session()
	if s == nil {
		l.println(l.tr.T("room.not_logged"))
		return
	}
	l.printDim(l.tr.T("companion.sending"))

	res, err := s.Companion.SendMessage(ctx, text)
	switch {
	case errors.Is(err, companion.ErrEmptyMessage):
		return
	case errors.Is(err, companion.ErrSendInFlight):
		l.printError(l.tr.T("companion.error.busy"))
		return
	case errors.Is(err, companion.ErrIncompleteConfig):
		l.printError(s.Companion.LastError())
		return
	}
	l.println(l.paint(ansiCyan, "✦ ") + res.Reply.Content)
	if err != nil {
		l.printError(s.Companion.LastError())
	}
}

func (l *Loop) printTimer(s *room.Session) {
	st := s.Timer.Snapshot()
	l.println(timer.StatusLine(l.tr, st.Active, st.CurrentSeconds))
}

func (l *Loop) printStatus(s *room.Session) {
	st := s.Timer.Snapshot()
	done, total := s.Tasks.Progress()
	l.println(l.tr.T("cli.status.owner", s.Identity.Name))
	l.println(padRight(l.tr.T("room.current"), 14) + timer.FormatClock(st.CurrentSeconds))
	l.println(padRight(l.tr.T("room.total"), 14) + timer.FormatClock(st.CumulativeSeconds))
	l.println(timer.StatusLine(l.tr, st.Active, st.CurrentSeconds))
	l.println(l.tr.T("todo.progress", done, total))
	l.printDim(l.room.CompanionLine(l.now()))
}

func (l *Loop) printTodos(s *room.Session) {
	items := s.Tasks.Items()
	if len(items) == 0 {
		l.println(l.tr.T("todo.empty"))
		return
	}
	for _, item := range items {
		box := "[ ]"
		if item.Done {
			box = "[x]"
		}
		text := padRight(truncateCells(item.Text, todoTextCells), todoTextCells)
		l.println(fmt.Sprintf("%s %s %s", box, text, l.paint(ansiDim, "#"+strconv.FormatInt(item.ID, 10))))
	}
	done, total := s.Tasks.Progress()
	l.printDim(l.tr.T("todo.progress", done, total))
}

// prompt 显示当前学习时长与状态，例如 "[00:01:05 ●] 小林> "
// prompt shows the session clock and state, e.g. "[00:01:05 ●] alice> ".
func (l *Loop) prompt() string {
	s := l.room.Session()
	if s == nil {
		return l.paint(ansiDim, "[--:--:--]") + " > "
	}
	st := s.Timer.Snapshot()
	mark := l.paint(ansiYellow, "○")
	if st.Active {
		mark = l.paint(ansiGreen, "●")
	}
	return fmt.Sprintf("[%s %s] %s> ", timer.FormatClock(st.CurrentSeconds), mark, s.Identity.Name)
}

func (l *Loop) paint(code, s string) string {
	if !l.color {
		return s
	}
	return code + s + ansiReset
}

func (l *Loop) println(s string) {
	_, _ = fmt.Fprintln(l.out, s)
}

func (l *Loop) printDim(s string) {
	l.println(l.paint(ansiDim, s))
}

func (l *Loop) printError(s string) {
	l.println(l.paint(ansiRed, s))
}

// ColorEnabled reports whether f is a terminal that should get ANSI colors.
func ColorEnabled(f *os.File) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) == "dumb" {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}
