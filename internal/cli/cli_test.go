package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// executeCommand runs a fresh command tree with args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	_, err := root.ExecuteC()
	return buf.String(), err
}

// sandbox points HOME and the working directory at temp dirs and returns the data dir.
func sandbox(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		"STUDYROOM_CONFIG_PATH", "STUDYROOM_BASE_URL", "STUDYROOM_MODEL", "STUDYROOM_API_KEY",
		"STUDYROOM_HOME", "STUDYROOM_LANG", "STUDYROOM_LOG_LEVEL", "STUDYROOM_TIMEOUT_MS",
	} {
		t.Setenv(k, "")
	}
	oldwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	return filepath.Join(t.TempDir(), "data")
}

func writeDump(t *testing.T, values map[string]string) string {
	t.Helper()
	data, err := json.Marshal(values)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "localStorage.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestStatusWithoutLogin(t *testing.T) {
	home := sandbox(t)

	out, err := executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
}

func TestImportLegacyThenStatus(t *testing.T) {
	home := sandbox(t)
	dump := writeDump(t, map[string]string{
		"study_room_user":           `{"name":"Mei"}`,
		"study_room_total_seconds":  "3725",
		"study_room_todos":          `[{"id":1,"text":"read","done":true},{"id":2,"text":"write","done":false}]`,
		"study_room_live2d_enabled": "1",
		"study_ai_api_base":         "https://legacy.example/v1",
		"study_ai_api_key":          "sk-legacy-abcd1234",
		"study_ai_model":            "legacy-model",
	})

	out, err := executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "import-legacy", dump)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 7 value(s) for Mei, skipped 0.")

	out, err = executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "status")
	require.NoError(t, err)
	require.Contains(t, out, "User: Mei")
	require.Contains(t, out, "01:02:05")
	require.Contains(t, out, "1/2 done")
	require.Contains(t, out, "legacy-model")
	require.Contains(t, out, "sk-******1234")
	require.NotContains(t, out, "sk-legacy-abcd1234")

	// 再次导入不覆盖已有值
	out, err = executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "import-legacy", "--owner", "Mei", dump)
	require.NoError(t, err)
	require.Contains(t, out, "Imported 0 value(s) for Mei, skipped 7.")
}

func TestImportLegacyNeedsOwner(t *testing.T) {
	home := sandbox(t)
	dump := writeDump(t, map[string]string{"study_room_total_seconds": "10"})

	_, err := executeCommand(NewRootCmd(), "--home", home, "import-legacy", dump)
	require.Error(t, err)
	require.Contains(t, err.Error(), "owner")
}

func TestModelsListsEndpointModels(t *testing.T) {
	home := sandbox(t)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[
			{"id":"tutor-small","object":"model","owned_by":"lab"},
			{"id":"alpha","object":"model","owned_by":""}
		]}`))
	}))
	defer srv.Close()

	dump := writeDump(t, map[string]string{
		"study_room_user":   `{"name":"Mei"}`,
		"study_ai_api_base": srv.URL + "/v1",
		"study_ai_api_key":  "sk-models",
		"study_ai_model":    "tutor-small",
	})
	_, err := executeCommand(NewRootCmd(), "--home", home, "import-legacy", dump)
	require.NoError(t, err)

	out, err := executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "models")
	require.NoError(t, err)
	require.Equal(t, "Bearer sk-models", gotAuth)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "alpha", lines[0])
	require.True(t, strings.HasPrefix(lines[1], "tutor-small"), "line=%q", lines[1])
	require.Contains(t, lines[1], "lab")
}

func TestModelsRequiresLogin(t *testing.T) {
	home := sandbox(t)

	_, err := executeCommand(NewRootCmd(), "--home", home, "models")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not logged in")
}

func TestReplSessionPersists(t *testing.T) {
	home := sandbox(t)

	root := NewRootCmd()
	root.SetIn(strings.NewReader("/login Mei\n/todo add read chapter 3\n/todos\n/quit\n"))
	out, err := executeCommand(root, "--home", home, "--lang", "en", "repl")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
	require.Contains(t, out, "Logged in as Mei.")
	require.Contains(t, out, "read chapter 3")

	out, err = executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "status")
	require.NoError(t, err)
	require.Contains(t, out, "User: Mei")
	require.Contains(t, out, "0/1 done")
}

func TestEphemeralLeavesNoData(t *testing.T) {
	home := sandbox(t)

	root := NewRootCmd()
	root.SetIn(strings.NewReader("/login Mei\n/quit\n"))
	_, err := executeCommand(root, "--home", home, "--lang", "en", "--ephemeral", "repl")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(home, "studyroom.db"))
	require.True(t, os.IsNotExist(err), "stat err=%v", err)

	out, err := executeCommand(NewRootCmd(), "--home", home, "--lang", "en", "status")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
}

func TestInitWritesProjectConfig(t *testing.T) {
	sandbox(t)
	dir := t.TempDir()

	out, err := executeCommand(NewRootCmd(), "--lang", "en", "init", dir)
	require.NoError(t, err)
	path := filepath.Join(dir, ".studyroom", "config.json")
	require.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "api_key\": \"sk")
}
