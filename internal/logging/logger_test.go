package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	configDir = ""
	config = loggingConfig{}
}

func TestInitializeWritesLogsWhenDebugEnabled(t *testing.T) {
	tempDir := t.TempDir()
	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"json_format": true
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(configContent), 0o644))

	resetState()
	require.NoError(t, Initialize(tempDir))
	require.True(t, IsDebugMode())

	Get(CategorySafety).Info("safety engine ready")
	Get(CategoryJournal).Debug("journal entry count=%d", 3)

	entries, err := os.ReadDir(filepath.Join(tempDir, "logs"))
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	var sawSafety bool
	for _, e := range entries {
		if strings.Contains(e.Name(), "safety") {
			sawSafety = true
		}
	}
	require.True(t, sawSafety, "expected a safety-category log file")
}

func TestInitializeNoOpWhenDebugDisabled(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(`{"logging":{"debug_mode":false}}`), 0o644))

	resetState()
	require.NoError(t, Initialize(tempDir))
	require.False(t, IsDebugMode())

	_, err := os.Stat(filepath.Join(tempDir, "logs"))
	require.True(t, os.IsNotExist(err))
}

func TestCategoryDisabledSuppressesOutput(t *testing.T) {
	tempDir := t.TempDir()
	content := `{
		"logging": {
			"debug_mode": true,
			"categories": {"safety": true, "audio": false}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(content), 0o644))

	resetState()
	require.NoError(t, Initialize(tempDir))

	require.True(t, IsCategoryEnabled(CategorySafety))
	require.False(t, IsCategoryEnabled(CategoryAudio))
}

func TestRequestLoggerIncludesCorrelationID(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.json"), []byte(`{"logging":{"debug_mode":true,"level":"debug"}}`), 0o644))

	resetState()
	require.NoError(t, Initialize(tempDir))

	rl := WithRequestID(CategoryDispatch, "req-123").WithField("tool", "click")
	rl.Info("dispatching")

	data, err := os.ReadFile(latestLogFile(t, tempDir, "dispatch"))
	require.NoError(t, err)
	require.Contains(t, string(data), "req-123")
}

func latestLogFile(t *testing.T, dir, category string) string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	for _, e := range entries {
		if strings.Contains(e.Name(), category) {
			return filepath.Join(dir, "logs", e.Name())
		}
	}
	t.Fatalf("no log file found for category %s", category)
	return ""
}
