package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var allCategories = []Category{
	CategoryBoot,
	CategoryOrchestrator,
	CategoryRemote,
	CategoryEffects,
	CategoryUI,
	CategoryDevnet,
	CategoryConfig,
}

// TestAllCategoriesLog tests that all categories create log files when debug mode is on
func TestAllCategoriesLog(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(logsPath, Options{DebugMode: true, Level: "debug"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	for _, cat := range allCategories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	Boot("Convenience boot log")
	RemoteDebug("Convenience remote log")
	UI("Convenience ui log")
	Devnet("Convenience devnet log")

	CloseAll()

	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range allCategories {
		found := false
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), "_"+string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that no logs are created when debug mode is off
func TestDebugModeDisabled(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(logsPath, Options{DebugMode: false}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	for _, cat := range allCategories {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be disabled in production mode", cat)
		}
		l := Get(cat)
		if l.sugar != nil {
			t.Errorf("Expected no-op logger for %s", cat)
		}
		l.Info("should not be written")
	}
	Audit().Log(AuditEvent{Type: AuditSessionStart})

	if _, err := os.Stat(logsPath); !os.IsNotExist(err) {
		t.Errorf("Expected no logs directory in production mode, got err=%v", err)
	}
}

func TestCategoryFilter(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	err := Initialize(logsPath, Options{
		DebugMode:  true,
		Categories: map[string]bool{"ui": false, "remote": true},
	})
	if err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	if IsCategoryEnabled(CategoryUI) {
		t.Error("Expected ui category to be disabled")
	}
	if !IsCategoryEnabled(CategoryRemote) {
		t.Error("Expected remote category to be enabled")
	}
	if !IsCategoryEnabled(CategoryEffects) {
		t.Error("Expected unlisted category to default to enabled")
	}
}

func TestInitialize_RequiresDir(t *testing.T) {
	if err := Initialize("", Options{}); err == nil {
		t.Error("Expected error for empty logs directory")
	}
}

func TestLevelFiltering(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(logsPath, Options{DebugMode: true, Level: "warn"}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	l := Get(CategoryRemote)
	l.Debug("hidden debug")
	l.Info("hidden info")
	l.Warn("visible warn")
	CloseAll()

	data := readCategory(t, logsPath, CategoryRemote)
	if strings.Contains(data, "hidden") {
		t.Errorf("Expected debug/info lines to be filtered, got:\n%s", data)
	}
	if !strings.Contains(data, "visible warn") {
		t.Errorf("Expected warn line, got:\n%s", data)
	}
}

func TestWith_AddsFields(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(logsPath, Options{DebugMode: true, JSONFormat: true}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	Get(CategoryOrchestrator).With("attempt", "abc123").Info("transition %s", "pending")
	CloseAll()

	line := strings.TrimSpace(readCategory(t, logsPath, CategoryOrchestrator))
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lastLine(line)), &entry); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", line, err)
	}
	if entry["attempt"] != "abc123" {
		t.Errorf("Expected attempt field, got %v", entry)
	}
	if entry["msg"] != "transition pending" {
		t.Errorf("Expected formatted message, got %v", entry["msg"])
	}
}

func TestZap_NoopWhenDisabled(t *testing.T) {
	l := &Logger{category: CategoryUI}
	if l.Zap() == nil {
		t.Fatal("Expected a non-nil zap logger")
	}
	if l.With("k", "v") != l {
		t.Error("Expected With on a disabled logger to return itself")
	}
}

func TestConcurrentGet(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(logsPath, Options{DebugMode: true}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}
	defer CloseAll()

	var wg sync.WaitGroup
	got := make([]*Logger, 20)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get(CategoryEffects)
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(got); i++ {
		if got[i] != got[0] {
			t.Fatal("Expected the same logger instance for a category")
		}
	}
}

// =============================================================================
// AUDIT
// =============================================================================

func TestAudit_WritesJSONLines(t *testing.T) {
	logsPath := filepath.Join(t.TempDir(), "logs")
	if err := Initialize(logsPath, Options{DebugMode: true}); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	a := Audit()
	a.Log(AuditEvent{Type: AuditSessionStart, Token: "legacy"})
	a.Attempt("id-1", "standard", 1500*time.Millisecond, nil, "ok")
	a.Attempt("id-2", "standard", time.Millisecond, errors.New("boom"), "")
	CloseAll()

	matches, _ := filepath.Glob(filepath.Join(logsPath, "*_audit.jsonl"))
	if len(matches) != 1 {
		t.Fatalf("Expected one audit file, got %v", matches)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatalf("open audit: %v", err)
	}
	defer f.Close()

	var events []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("bad audit line %q: %v", sc.Text(), err)
		}
		events = append(events, e)
	}

	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	if events[1]["event"] != string(AuditAttemptSucceeded) || events[1]["dur_ms"] != float64(1500) {
		t.Errorf("Unexpected success event: %v", events[1])
	}
	if events[2]["event"] != string(AuditAttemptFailed) || events[2]["error"] != "boom" {
		t.Errorf("Unexpected failure event: %v", events[2])
	}
}

func readCategory(t *testing.T, dir string, cat Category) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "*_"+string(cat)+".log"))
	if err != nil || len(matches) == 0 {
		t.Fatalf("No log file for %s: %v", cat, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read %s: %v", matches[0], err)
	}
	return string(data)
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return lines[len(lines)-1]
}
