// Package room wires the per-login study components together: identity, timer, task
// list and companion, all reading and writing through the owner's scoped store.
package room

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studyroom/internal/clock"
	"studyroom/internal/companion"
	"studyroom/internal/i18n"
	"studyroom/internal/identity"
	"studyroom/internal/logger"
	"studyroom/internal/provider"
	"studyroom/internal/storage"
	"studyroom/internal/timer"
	"studyroom/internal/todo"
)

// LineInterval is how long each companion line stays on screen.
const LineInterval = 12 * time.Second

const companionLineCount = 5

// ErrLoggedOut 当前没有登录身份
// ErrLoggedOut is returned by operations that need a logged-in owner.
var ErrLoggedOut = errors.New("not logged in")

// Options configures the components created on login.
type Options struct {
	Timer     timer.Options
	Companion companion.Options
	// Secrets builds the secret store for an owner's scoped view.
	// Nil keeps secrets next to the owner's other values.
	Secrets func(scoped storage.KV) storage.SecretStore
}

// Session 一次登录对应的组件集合
// Session is the set of components belonging to one logged-in owner.
type Session struct {
	Identity  identity.Identity
	Store     *storage.ScopedKV
	Timer     *timer.Timer
	Tasks     *todo.List
	Companion *companion.Client
}

// Room 组合根：登录时创建组件，登出时落盘并释放
// Room is the composition root. Components are built on login and torn down on logout.
type Room struct {
	kv       storage.KV
	ids      *identity.Manager
	provider provider.Provider
	clock    clock.Clock
	opts     Options
	tr       *i18n.I18n
	openedAt time.Time
	log      zerolog.Logger

	mu      sync.Mutex
	session *Session
}

// Open prepares a room over kv. Nobody is logged in until Resume or Login.
func Open(kv storage.KV, p provider.Provider, clk clock.Clock, opts Options) *Room {
	if clk == nil {
		clk = clock.Real()
	}
	tr := opts.Companion.Translator
	if tr == nil {
		tr = i18n.Global()
		opts.Companion.Translator = tr
	}
	return &Room{
		kv:       kv,
		ids:      identity.NewManager(kv),
		provider: p,
		clock:    clk,
		opts:     opts,
		tr:       tr,
		openedAt: clk.Now(),
		log:      logger.With("room"),
	}
}

// Resume restores the stored identity, if any, and builds its session.
func (r *Room) Resume() (*Session, bool, error) {
	id, ok, err := r.ids.Current()
	if err != nil {
		return nil, false, fmt.Errorf("read identity: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.replaceSessionLocked(id); err != nil {
		return nil, false, err
	}
	return r.session, true, nil
}

// Login opens name's session and then stores name as the identity.
// Logging in while another owner is active closes that owner's session first. If the new
// session cannot be opened, nothing is stored and the previous owner's session is reopened.
func (r *Room) Login(name string) (*Session, error) {
	id, err := identity.Parse(name)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var prev *identity.Identity
	if r.session != nil {
		p := r.session.Identity
		prev = &p
	}
	if err := r.replaceSessionLocked(id); err != nil {
		r.restoreLocked(prev)
		return nil, err
	}
	if err := r.ids.Save(id); err != nil {
		if closeErr := r.session.close(); closeErr != nil {
			r.log.Warn().Err(closeErr).Msg("close unsaved session")
		}
		r.session = nil
		r.restoreLocked(prev)
		return nil, err
	}
	r.log.Info().Str("owner", storage.OwnerPrefix(id.Name)).Msg("logged in")
	return r.session, nil
}

// restoreLocked reopens the session that a failed Login replaced.
func (r *Room) restoreLocked(prev *identity.Identity) {
	if prev == nil {
		return
	}
	s, err := r.newSession(*prev)
	if err != nil {
		r.log.Error().Err(err).Str("owner", storage.OwnerPrefix(prev.Name)).Msg("reopen previous session")
		return
	}
	r.session = s
}

func (r *Room) replaceSessionLocked(id identity.Identity) error {
	if r.session != nil {
		if err := r.session.close(); err != nil {
			r.log.Warn().Err(err).Msg("close previous session")
		}
		r.session = nil
	}
	s, err := r.newSession(id)
	if err != nil {
		return err
	}
	r.session = s
	return nil
}

func (r *Room) newSession(id identity.Identity) (*Session, error) {
	scoped := storage.Scoped(r.kv, id.Name)

	tm, err := timer.New(scoped, r.clock, r.opts.Timer)
	if err != nil {
		return nil, fmt.Errorf("open timer: %w", err)
	}
	tasks, err := todo.New(scoped, r.clock)
	if err != nil {
		_ = tm.Close()
		return nil, fmt.Errorf("open tasks: %w", err)
	}

	var secrets storage.SecretStore
	if r.opts.Secrets != nil {
		secrets = r.opts.Secrets(scoped)
	}
	chat, err := companion.New(scoped, secrets, r.provider, tm, r.opts.Companion)
	if err != nil {
		_ = tm.Close()
		return nil, fmt.Errorf("open companion: %w", err)
	}

	return &Session{
		Identity:  id,
		Store:     scoped,
		Timer:     tm,
		Tasks:     tasks,
		Companion: chat,
	}, nil
}

// close pauses the timer and writes the cumulative counter.
func (s *Session) close() error {
	s.Timer.Pause()
	return s.Timer.Close()
}

// Logout 暂停计时、落盘并清除身份；该身份下的数据保留
// Logout pauses and flushes the timer, drops the session and clears the identity.
// Data under the owner's namespace is kept for the next login.
func (r *Room) Logout() error {
	r.mu.Lock()
	s := r.session
	r.session = nil
	r.mu.Unlock()

	var closeErr error
	if s != nil {
		closeErr = s.close()
		r.log.Info().Str("owner", storage.OwnerPrefix(s.Identity.Name)).Msg("logged out")
	}
	if err := r.ids.Logout(); err != nil {
		return err
	}
	return closeErr
}

// Close releases the session without clearing the identity, so the next start resumes it.
func (r *Room) Close() error {
	r.mu.Lock()
	s := r.session
	r.session = nil
	r.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.close()
}

// Session returns the active session, or nil when logged out.
func (r *Room) Session() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

func (r *Room) requireSession() (*Session, error) {
	s := r.Session()
	if s == nil {
		return nil, ErrLoggedOut
	}
	return s, nil
}

// VisualEnabled reports the owner's companion visual preference. It defaults to off.
func (r *Room) VisualEnabled() (bool, error) {
	s, err := r.requireSession()
	if err != nil {
		return false, err
	}
	return storage.LoadFlag(s.Store, storage.KeyVisualEnabled)
}

// ToggleVisual flips and persists the visual preference, returning the new value.
func (r *Room) ToggleVisual() (bool, error) {
	s, err := r.requireSession()
	if err != nil {
		return false, err
	}
	on, err := storage.LoadFlag(s.Store, storage.KeyVisualEnabled)
	if err != nil {
		return false, err
	}
	if err := storage.SaveFlag(s.Store, storage.KeyVisualEnabled, !on); err != nil {
		return on, fmt.Errorf("save visual flag: %w", err)
	}
	return !on, nil
}

// CompanionLine 学习中每 12 秒轮换一句陪伴语；未学习时显示提示语
// CompanionLine returns the line shown beside the companion at now. While studying it
// cycles through five lines, advancing every LineInterval since the room opened.
func (r *Room) CompanionLine(now time.Time) string {
	s := r.Session()
	if s == nil || !s.Timer.Active() {
		return r.tr.T("companion.line.idle")
	}
	elapsed := now.Sub(r.openedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	idx := int(elapsed/LineInterval) % companionLineCount
	return r.tr.T("companion.line." + strconv.Itoa(idx+1))
}

// Translator returns the catalog used for every user-facing string.
func (r *Room) Translator() *i18n.I18n {
	return r.tr
}
