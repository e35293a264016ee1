package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"studyroom/internal/logger"
)

type ProviderConfig struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	TimeoutMS int    `json:"timeout_ms"`
}

type TimerConfig struct {
	TickMS  int `json:"tick_ms"`
	FlushMS int `json:"flush_ms"`
}

type ChatConfig struct {
	HistoryTokenLimit int `json:"history_token_limit"`
}

type StorageConfig struct {
	BaseDir string `json:"base_dir"`
}

type UIConfig struct {
	Locale string `json:"locale"`
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Config struct {
	Provider ProviderConfig `json:"provider"`
	Timer    TimerConfig    `json:"timer"`
	Chat     ChatConfig     `json:"chat"`
	Storage  StorageConfig  `json:"storage"`
	UI       UIConfig       `json:"ui"`
	Log      LogConfig      `json:"log"`
}

type fileConfig struct {
	Provider *ProviderConfig `json:"provider"`
	Timer    *TimerConfig    `json:"timer"`
	Chat     *ChatConfig     `json:"chat"`
	Storage  *StorageConfig  `json:"storage"`
	UI       *UIConfig       `json:"ui"`
	Log      *LogConfig      `json:"log"`
}

func Default() Config {
	return Config{
		Provider: ProviderConfig{
			BaseURL: DefaultProviderBaseURL,
			Model:   DefaultProviderModel,
		},
		Timer: TimerConfig{
			TickMS:  DefaultTimerTickMS,
			FlushMS: DefaultTimerFlushMS,
		},
		Chat: ChatConfig{
			HistoryTokenLimit: DefaultChatHistoryTokenLimit,
		},
		Storage: StorageConfig{
			BaseDir: "~/.studyroom",
		},
		Log: LogConfig{
			Level: string(logger.LevelInfo),
		},
	}
}

// Load 依次合并默认值、全局配置、项目配置与环境变量
// Load merges defaults, the global config, the project config and the environment, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	for _, globalPath := range globalConfigPaths() {
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return Config{}, err
		}
	}

	resolvedPath := strings.TrimSpace(path)
	if resolvedPath == "" {
		resolvedPath = strings.TrimSpace(os.Getenv("STUDYROOM_CONFIG_PATH"))
	}
	if resolvedPath == "" {
		resolvedPath = findProjectConfigPath()
	}
	if err := mergeFromFile(&cfg, resolvedPath); err != nil {
		return Config{}, err
	}

	if err := normalize(&cfg); err != nil {
		return Config{}, err
	}
	return applyEnv(cfg)
}

// Override applies command-line values on top of a loaded config.
func (c *Config) Override(baseDir, locale string) error {
	if strings.TrimSpace(baseDir) != "" {
		c.Storage.BaseDir = baseDir
	}
	if strings.TrimSpace(locale) != "" {
		c.UI.Locale = locale
	}
	return normalize(c)
}

// DBPath is the SQLite file holding all persisted study room state.
func (c Config) DBPath() string {
	return filepath.Join(c.Storage.BaseDir, "studyroom.db")
}

// LogPath is where the file logger writes.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.Log.File) != "" {
		return c.Log.File
	}
	return filepath.Join(c.Storage.BaseDir, "logs", "studyroom.log")
}

func globalConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(home, ".studyroom", "config.json")}
}

func findProjectConfigPath() string {
	candidates := []string{
		"studyroom.config.json",
		".studyroom/config.json",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

func mergeFromFile(cfg *Config, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	resolved, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("expand config path %q: %w", path, err)
	}

	var fc fileConfig
	found, err := readJSONC(resolved, &fc)
	if err != nil || !found {
		return err
	}
	applyFileConfig(cfg, fc)
	return nil
}

func applyFileConfig(cfg *Config, fc fileConfig) {
	if fc.Provider != nil {
		cfg.Provider = mergeProvider(cfg.Provider, *fc.Provider)
	}
	if fc.Timer != nil {
		if fc.Timer.TickMS > 0 {
			cfg.Timer.TickMS = fc.Timer.TickMS
		}
		if fc.Timer.FlushMS > 0 {
			cfg.Timer.FlushMS = fc.Timer.FlushMS
		}
	}
	if fc.Chat != nil && fc.Chat.HistoryTokenLimit != 0 {
		cfg.Chat.HistoryTokenLimit = fc.Chat.HistoryTokenLimit
	}
	if fc.Storage != nil && strings.TrimSpace(fc.Storage.BaseDir) != "" {
		cfg.Storage.BaseDir = fc.Storage.BaseDir
	}
	if fc.UI != nil && strings.TrimSpace(fc.UI.Locale) != "" {
		cfg.UI.Locale = fc.UI.Locale
	}
	if fc.Log != nil {
		if strings.TrimSpace(fc.Log.Level) != "" {
			cfg.Log.Level = fc.Log.Level
		}
		if strings.TrimSpace(fc.Log.File) != "" {
			cfg.Log.File = fc.Log.File
		}
	}
}

func mergeProvider(base ProviderConfig, override ProviderConfig) ProviderConfig {
	if strings.TrimSpace(override.BaseURL) != "" {
		base.BaseURL = override.BaseURL
	}
	if strings.TrimSpace(override.Model) != "" {
		base.Model = override.Model
	}
	if strings.TrimSpace(override.APIKey) != "" {
		base.APIKey = override.APIKey
	}
	if override.TimeoutMS > 0 {
		base.TimeoutMS = override.TimeoutMS
	}
	return base
}

func normalize(cfg *Config) error {
	cfg.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.Provider.BaseURL), "/")
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = DefaultProviderBaseURL
	}
	cfg.Provider.Model = strings.TrimSpace(cfg.Provider.Model)
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = DefaultProviderModel
	}
	cfg.Provider.APIKey = strings.TrimSpace(cfg.Provider.APIKey)
	if cfg.Provider.TimeoutMS < 0 {
		return fmt.Errorf("provider.timeout_ms must be >= 0")
	}

	if cfg.Timer.TickMS <= 0 {
		cfg.Timer.TickMS = DefaultTimerTickMS
	}
	if cfg.Timer.FlushMS <= 0 {
		cfg.Timer.FlushMS = DefaultTimerFlushMS
	}
	if cfg.Chat.HistoryTokenLimit == 0 {
		cfg.Chat.HistoryTokenLimit = DefaultChatHistoryTokenLimit
	}
	if cfg.Chat.HistoryTokenLimit < 0 {
		// 负数表示不限制 / negative means unlimited
		cfg.Chat.HistoryTokenLimit = -1
	}

	if strings.TrimSpace(cfg.Storage.BaseDir) == "" {
		cfg.Storage.BaseDir = "~/.studyroom"
	}
	baseDir, err := expandPath(cfg.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("expand storage.base_dir: %w", err)
	}
	cfg.Storage.BaseDir = baseDir

	if strings.TrimSpace(cfg.Log.File) != "" {
		logFile, err := expandPath(cfg.Log.File)
		if err != nil {
			return fmt.Errorf("expand log.file: %w", err)
		}
		cfg.Log.File = logFile
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if cfg.Log.Level == "" {
		cfg.Log.Level = string(logger.LevelInfo)
	}
	if !logger.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("invalid log.level %q", cfg.Log.Level)
	}

	cfg.UI.Locale = strings.TrimSpace(cfg.UI.Locale)
	return nil
}

func applyEnv(cfg Config) (Config, error) {
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_BASE_URL")); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_MODEL")); v != "" {
		cfg.Provider.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_API_KEY")); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_HOME")); v != "" {
		cfg.Storage.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_LANG")); v != "" {
		cfg.UI.Locale = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_LOG_LEVEL")); v != "" {
		cfg.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("STUDYROOM_TIMEOUT_MS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("invalid STUDYROOM_TIMEOUT_MS: %q", v)
		}
		cfg.Provider.TimeoutMS = n
	}

	return cfg, normalize(&cfg)
}

// expandPath resolves a leading "~" and makes path absolute.
func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || rest[0] == '/') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
