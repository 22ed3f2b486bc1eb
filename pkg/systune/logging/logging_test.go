package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTest initializes the global logging state against temp files and tears
// it down after the test.
func initTest(t *testing.T, cfg Config) (logPath, summaryPath string) {
	t.Helper()

	dir := t.TempDir()
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Path == "" {
		cfg.Path = filepath.Join(dir, "systune.log")
	}
	if cfg.SummaryPath == "" {
		cfg.SummaryPath = filepath.Join(dir, "summary.log")
	}
	cfg.ConsoleLevel = "none"

	require.NoError(t, Init(cfg))
	t.Cleanup(func() { require.NoError(t, Close()) })
	return cfg.Path, cfg.SummaryPath
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input     string
		want      Level
		wantError bool
	}{
		{input: "debug", want: LevelDebug},
		{input: "info", want: LevelInfo},
		{input: "warn", want: LevelWarn},
		{input: "warning", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "ERROR", want: LevelError},
		{input: "verbose", wantError: true},
		{input: "", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
}

func TestInit_WritesToFile(t *testing.T) {
	logPath, _ := initTest(t, Config{})

	Get("tuning").Info("governor set", "governor", "performance")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "governor set")
	assert.Contains(t, string(data), "tuning")
	assert.Contains(t, string(data), "performance")
}

func TestInit_InvalidLevel(t *testing.T) {
	err := Init(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestGet_ComponentLevelOverride(t *testing.T) {
	logPath, _ := initTest(t, Config{
		Level:      "info",
		Components: map[string]string{"backup": "error"},
	})

	Get("backup").Info("snapshot created")
	Get("backup").Error("snapshot failed")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "snapshot created")
	assert.Contains(t, string(data), "snapshot failed")
}

func TestGet_BeforeInitIsSilent(t *testing.T) {
	// Must not panic or write anywhere.
	Get("early").Info("message before init")
}

func TestLogger_With(t *testing.T) {
	logPath, _ := initTest(t, Config{})

	Get("deps").With("manager", "apt").Info("package installed")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "manager")
	assert.Contains(t, string(data), "apt")
}

func TestSummary(t *testing.T) {
	_, summaryPath := initTest(t, Config{})

	Summary("memory", "swappiness 60 -> 10, hugepages 512")

	data, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[SUMMARY] memory: swappiness 60 -> 10, hugepages 512")
}

func TestSummary_BeforeInitIsNoop(t *testing.T) {
	// Nothing to assert beyond not panicking.
	Summary("memory", "ignored")
}

func TestDefaultLogPath_NonEmpty(t *testing.T) {
	assert.NotEmpty(t, DefaultLogPath())
	assert.NotEmpty(t, DefaultSummaryPath())
}
