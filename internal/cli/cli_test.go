package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zoobzio/detent/internal/config"
	"github.com/zoobzio/detent/internal/logging"
	"github.com/zoobzio/detent/pkg/session"
)

const testConfig = `
parameters:
  - id: gain
    name: Gain
    start: -60
    end: 12
    default: 0
    unit: dB
    decimals: 1
    rules:
      - "value > 6 ? 6 : value"
  - id: mix
    name: Mix
    start: 0
    end: 100
    default: 50
    interval: 1
    unit: "%"
ui:
  step: 0.1
`

func writeTestConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	body := testConfig + extra +
		"session:\n  path: " + filepath.Join(dir, "sessions.db") + "\n" +
		"log:\n  dir: " + filepath.Join(dir, "logs") + "\n  level: DEBUG\n"
	path := filepath.Join(dir, "detent.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootRejectsUnknownFormat(t *testing.T) {
	_, err := execute(t, "params", "--format", "xml", "--config", writeTestConfig(t, ""))
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("expected invalid format error, got %v", err)
	}
}

func TestParamsText(t *testing.T) {
	out, err := execute(t, "params", "--config", writeTestConfig(t, ""))
	if err != nil {
		t.Fatalf("params failed: %v", err)
	}
	for _, want := range []string{"ID", "gain", "Gain", "[-60, 12]", "0.0 dB", "mix", "value > 6 ? 6 : value"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestParamsJSON(t *testing.T) {
	out, err := execute(t, "params", "--format", "json", "--config", writeTestConfig(t, ""))
	if err != nil {
		t.Fatalf("params failed: %v", err)
	}
	var views []ParamView
	if err := json.Unmarshal([]byte(out), &views); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(views) != 2 || views[0].ID != "gain" || views[1].Centre != "50 %" {
		t.Errorf("unexpected views: %+v", views)
	}
}

func TestParamsRejectsBadRule(t *testing.T) {
	cfg := config.Config{Parameters: []config.Parameter{{ID: "a", End: 1, Rules: []string{"value >"}}}}
	if err := writeParams(&bytes.Buffer{}, "text", cfg); err == nil {
		t.Error("expected compile error for bad rule")
	}
}

// fakeProgram stands in for tea.Program.
type fakeProgram struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (p *fakeProgram) Send(msg tea.Msg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

// pump feeds every message received so far into the model.
func (p *fakeProgram) pump(m tea.Model) int {
	p.mu.Lock()
	msgs := p.msgs
	p.msgs = nil
	p.mu.Unlock()
	for _, msg := range msgs {
		m.Update(msg)
	}
	return len(msgs)
}

func newTestApp(t *testing.T, extra string) (*App, config.Config) {
	t.Helper()
	cfg, err := config.Load(writeTestConfig(t, extra))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	app, err := NewApp(cfg, logging.NopLogger())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app, cfg
}

func TestAppKeysAreConfirmedAndSaved(t *testing.T) {
	app, cfg := newTestApp(t, "")
	program := &fakeProgram{}
	if err := app.Start(context.Background(), program); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	model := app.Model()
	for i := 0; i < 3; i++ {
		model.Update(tea.KeyMsg{Type: tea.KeyRight})
	}

	v, _ := app.Store().DomainValue("gain")
	if math.Abs(v-6) > 1e-9 {
		t.Errorf("expected the rule to cap gain at 6, got %v", v)
	}
	if !strings.Contains(model.View(), "6.0 dB") {
		t.Errorf("expected both sliders to show 6.0 dB:\n%s", model.View())
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	db, err := session.Open(cfg.Session.Path)
	if err != nil {
		t.Fatalf("session.Open failed: %v", err)
	}
	defer db.Close()
	names, _ := db.Sessions(context.Background())
	if len(names) != 1 || names[0] != "default" {
		t.Errorf("expected the default session saved, got %v", names)
	}
}

func TestAppRestoresSession(t *testing.T) {
	app, cfg := newTestApp(t, "")
	_ = app.Start(context.Background(), &fakeProgram{})
	app.Model().Update(tea.KeyMsg{Type: tea.KeyLeft})
	want, _ := app.Store().DomainValue("gain")
	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	second, err := NewApp(cfg, logging.NopLogger())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer second.Shutdown(context.Background())

	got, _ := second.Store().DomainValue("gain")
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected restored gain %v, got %v", want, got)
	}
	if math.Abs(second.Group("gain").LastValue()-want) > 1e-9 {
		t.Errorf("expected group seeded with %v, got %v", want, second.Group("gain").LastValue())
	}
}

func TestAppFollowsPresetFile(t *testing.T) {
	presetPath := filepath.Join(t.TempDir(), "preset.json")
	if err := os.WriteFile(presetPath, []byte(`{"name":"warm","values":{"mix":25}}`), 0o600); err != nil {
		t.Fatalf("failed to write preset: %v", err)
	}

	app, _ := newTestApp(t, "preset:\n  path: "+presetPath+"\n  debounce: 10ms\n")
	defer app.Shutdown(context.Background())

	program := &fakeProgram{}
	if err := app.Start(context.Background(), program); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		program.pump(app.Model())
		if v, _ := app.Store().DomainValue("mix"); v == 25 && strings.Contains(app.Model().View(), "25 %") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	v, _ := app.Store().DomainValue("mix")
	t.Fatalf("preset not applied: mix=%v\n%s", v, app.Model().View())
}

func TestSessionsCommand(t *testing.T) {
	path := writeTestConfig(t, "")

	out, err := execute(t, "sessions", "list", "--format", "json", "--config", path)
	if err != nil {
		t.Fatalf("sessions list failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("expected no sessions, got %s", out)
	}

	cfg, _ := config.Load(path)
	db, err := session.Open(cfg.Session.Path)
	if err != nil {
		t.Fatalf("session.Open failed: %v", err)
	}
	app, err := NewApp(cfg, logging.NopLogger())
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	_, _ = db.Save(context.Background(), "take-1", app.Store())
	_ = db.Close()
	_ = app.Shutdown(context.Background())

	out, err = execute(t, "sessions", "list", "--config", path)
	if err != nil {
		t.Fatalf("sessions list failed: %v", err)
	}
	if !strings.Contains(out, "take-1") || !strings.Contains(out, "default") {
		t.Errorf("expected take-1 and default, got %s", out)
	}

	if _, err := execute(t, "sessions", "delete", "take-1", "--config", path); err != nil {
		t.Fatalf("sessions delete failed: %v", err)
	}
	out, _ = execute(t, "sessions", "list", "--config", path)
	if strings.Contains(out, "take-1") {
		t.Errorf("expected take-1 deleted, got %s", out)
	}
}
