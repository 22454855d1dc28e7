package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initFile points the global logger at a file in a temp dir and restores
// the no-op logger when the test ends.
func initFile(t *testing.T, level string, cfg FileConfig) string {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "scenekit.log")
	}
	if err := InitWithFileConfig(level, cfg, false); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(func() {
		Sync()
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})
	return cfg.Path
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	Sync()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(content)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"off", LevelOff},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSceneDiagnosticsRespectLevel(t *testing.T) {
	// The importer logs diagnostics at warn and a summary at info.
	tests := []struct {
		level       string
		wantWarn    bool
		wantSummary bool
	}{
		{"debug", true, true},
		{"info", true, true},
		{"warn", true, false},
		{"error", false, false},
		{"off", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			path := initFile(t, tt.level, FileConfig{})

			log := Named("scene").With(zap.String("source", "house.glb"))
			log.Warn("skipping primitive", zap.Error(errors.New("index 7 out of range")))
			log.Info("import finished", zap.Int("entries", 3))

			content := readLog(t, path)
			if got := strings.Contains(content, "skipping primitive"); got != tt.wantWarn {
				t.Errorf("warning logged = %v, want %v:\n%s", got, tt.wantWarn, content)
			}
			if got := strings.Contains(content, "import finished"); got != tt.wantSummary {
				t.Errorf("summary logged = %v, want %v:\n%s", got, tt.wantSummary, content)
			}
		})
	}
}

func TestNamedLineCarriesSubsystemAndFields(t *testing.T) {
	path := initFile(t, "info", FileConfig{})

	Named("scene").With(zap.String("source", "house.glb")).
		Warn("skipping primitive", zap.Error(errors.New("index 7 out of range")))
	Error("command failed", zap.String("command", "pick"))

	lines := strings.Split(strings.TrimSpace(readLog(t, path)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	for _, want := range []string{"WARN", "scene", "skipping primitive", `"source": "house.glb"`, "index 7 out of range"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("scene line missing %q: %s", want, lines[0])
		}
	}
	// The root logger has no name segment.
	if strings.Contains(lines[1], "scene") || !strings.Contains(lines[1], `"command": "pick"`) {
		t.Errorf("unexpected root line: %s", lines[1])
	}
}

func TestFileRotation(t *testing.T) {
	dir := t.TempDir()
	path := initFile(t, "debug", FileConfig{
		Path:       filepath.Join(dir, "scenetool.log"),
		MaxSizeMB:  1, // smallest size lumberjack allows
		MaxBackups: 2,
		MaxAgeDays: 1,
	})

	// About 1.5MB of pick traces.
	log := Named("scenetool")
	pad := strings.Repeat("x", 200)
	for i := 0; i < 6000; i++ {
		log.Debug("pick", zap.Int("x", i), zap.Int("y", i/2), zap.String("entry", pad))
	}
	Sync()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("active log file: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read log dir: %v", err)
	}
	var rotated []string
	for _, f := range files {
		name := f.Name()
		if name != "scenetool.log" && strings.HasPrefix(name, "scenetool-") && strings.HasSuffix(name, ".log") {
			rotated = append(rotated, name)
		}
	}
	if len(rotated) == 0 {
		t.Errorf("expected a rotated backup next to the active file, got %d files", len(files))
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("scenekit.log")
	want := FileConfig{Path: "scenekit.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestNopUntilInit(t *testing.T) {
	// Other tests restore the no-op logger on cleanup.
	if Named("scene").Core().Enabled(zapcore.ErrorLevel) {
		t.Error("named logger should discard everything before Init")
	}
	if Sugar.Desugar().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("sugared logger should discard everything before Init")
	}
}
