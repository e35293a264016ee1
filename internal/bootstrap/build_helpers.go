package bootstrap

import (
	"studyroom/internal/companion"
	"studyroom/internal/config"
	"studyroom/internal/logger"
	"studyroom/internal/storage"
)

func configureLogging(cfg config.Config, console bool) error {
	level := logger.LogLevel(cfg.Log.Level)
	if console {
		logger.ConfigureConsole(level)
		return nil
	}
	return logger.ConfigureFile(level, cfg.LogPath())
}

func openStore(cfg config.Config, ephemeral bool) (storage.Store, error) {
	if ephemeral {
		return storage.NewMemoryStore(), nil
	}
	return storage.NewSQLiteStore(cfg.DBPath())
}

// companionDefaults 配置文件与环境变量中的值只在存储为空时生效
// companionDefaults seeds the companion config; stored values always win.
func companionDefaults(cfg config.Config) companion.Config {
	return companion.Config{
		EndpointBase: cfg.Provider.BaseURL,
		APIKey:       cfg.Provider.APIKey,
		Model:        cfg.Provider.Model,
	}
}
