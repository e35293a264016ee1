package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"studyroom/internal/clock"
	"studyroom/internal/companion"
	"studyroom/internal/config"
	"studyroom/internal/contextmgr"
	"studyroom/internal/i18n"
	"studyroom/internal/logger"
	"studyroom/internal/provider"
	"studyroom/internal/room"
	"studyroom/internal/storage"
	"studyroom/internal/timer"
)

// Options 控制构建方式
// Options tweaks how Build assembles the room.
type Options struct {
	// Ephemeral keeps everything in memory; nothing is read from or written to disk.
	Ephemeral bool
	// ConsoleLog writes logs to stderr instead of the log file (line mode).
	ConsoleLog bool
	Clock      clock.Clock
}

// BuildResult 与 UI 无关的构建结果，供 TUI 或 REPL 使用
// BuildResult is UI-agnostic; the TUI and the REPL both run on top of it.
type BuildResult struct {
	Room       *room.Room
	Store      storage.Store
	Provider   *provider.Client
	Translator *i18n.I18n
	Config     config.Config
}

// Build 按顺序初始化日志、存储、模型客户端与 Room；调用方负责 defer result.Close()
// Build initializes logging, storage, the chat client and the room, in that order.
// The caller must defer result.Close().
func Build(cfg config.Config, opts Options) (*BuildResult, error) {
	if err := configureLogging(cfg, opts.ConsoleLog); err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	store, err := openStore(cfg, opts.Ephemeral)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	tr := i18n.New(cfg.UI.Locale)
	client := provider.NewClient(provider.Options{TimeoutMS: cfg.Provider.TimeoutMS})

	r := room.Open(store, client, opts.Clock, room.Options{
		Timer: timer.Options{
			TickInterval:  time.Duration(cfg.Timer.TickMS) * time.Millisecond,
			FlushInterval: time.Duration(cfg.Timer.FlushMS) * time.Millisecond,
		},
		Companion: companion.Options{
			Defaults:          companionDefaults(cfg),
			Translator:        tr,
			Tokenizer:         contextmgr.NewTokenizerForModel(cfg.Provider.Model),
			HistoryTokenLimit: cfg.Chat.HistoryTokenLimit,
		},
	})

	log := logger.With("bootstrap")
	log.Info().
		Bool("ephemeral", opts.Ephemeral).
		Str("locale", tr.Locale()).
		Msg("study room ready")

	return &BuildResult{
		Room:       r,
		Store:      store,
		Provider:   client,
		Translator: tr,
		Config:     cfg,
	}, nil
}

// Close flushes the active session, then closes the store and the log file.
func (b *BuildResult) Close() error {
	return errors.Join(b.Room.Close(), b.Store.Close(), logger.Close())
}
