package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigureFiltersByLevelAndTagsComponent(t *testing.T) {
	t.Cleanup(func() { _ = Close() })

	var buf bytes.Buffer
	Configure(LevelWarn, &buf)

	l := With("timer")
	l.Info().Msg("hidden")
	l.Warn().Int64("seconds", 42).Msg("flush failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "warn", entry["level"])
	require.Equal(t, "timer", entry["component"])
	require.Equal(t, "flush failed", entry["message"])
	require.EqualValues(t, 42, entry["seconds"])
}

func TestConfigureFileAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "studyroom.log")
	require.NoError(t, ConfigureFile(LevelInfo, path))

	log := With("room")
	log.Info().Msg("logged in")
	require.NoError(t, Close())

	// 关闭后不再写入 / nothing is written after Close
	log = With("room")
	log.Info().Msg("after close")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "logged in")
	require.NotContains(t, string(data), "after close")

	require.Error(t, ConfigureFile(LevelInfo, "  "))
}

func TestValidLevel(t *testing.T) {
	for _, s := range []string{"debug", "INFO", " warn ", "error"} {
		require.True(t, ValidLevel(s), s)
	}
	for _, s := range []string{"", "trace", "loud"} {
		require.False(t, ValidLevel(s), s)
	}
}
