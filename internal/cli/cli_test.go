package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdxmph/softphone-sync/internal/config"
	"github.com/pdxmph/softphone-sync/internal/db"
	"github.com/pdxmph/softphone-sync/internal/host"
	"github.com/pdxmph/softphone-sync/internal/logging"
)

func writeConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	dbPath = filepath.Join(dir, "crm.db")
	content := fmt.Sprintf("[database]\npath = %q\n", dbPath)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath, dbPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitCmd_WithFixtures(t *testing.T) {
	configPath, dbPath := writeConfig(t)

	out, err := execute(t, "--config", configPath, "init", "--fixtures")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, dbPath) {
		t.Errorf("Expected output to mention database path, got %q", out)
	}

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()
	logs, err := database.ListLogs(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 3 {
		t.Errorf("Expected 3 fixture logs, got %d", len(logs))
	}
}

func TestInitCmd_WritesMissingConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	configPath := filepath.Join(home, "fresh", "config.toml")

	out, err := execute(t, "--config", configPath, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote config") {
		t.Errorf("Expected output to report the config file, got %q", out)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if !strings.HasPrefix(cfg.Database.Path, home) {
		t.Errorf("Expected default database under HOME, got %q", cfg.Database.Path)
	}
	if _, err := os.Stat(cfg.Database.Path); err != nil {
		t.Errorf("Expected database to be created: %v", err)
	}
}

func TestInitCmd_RefusesExistingDatabase(t *testing.T) {
	configPath, _ := writeConfig(t)

	if _, err := execute(t, "--config", configPath, "init"); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := execute(t, "--config", configPath, "init"); err == nil {
		t.Error("Expected second init to fail")
	}
}

func TestLogsCmd(t *testing.T) {
	configPath, _ := writeConfig(t)
	if _, err := execute(t, "--config", configPath, "init", "--fixtures"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", configPath, "logs", "--limit", "2")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "RECORD") {
		t.Errorf("Expected header row, got %q", lines[0])
	}

	out, err = execute(t, "--config", configPath, "logs")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(out, "Customer: Hi, my order") {
		t.Errorf("Expected first message preview, got %q", out)
	}
}

func TestLogsCmd_Empty(t *testing.T) {
	configPath, _ := writeConfig(t)
	if _, err := execute(t, "--config", configPath, "init"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", configPath, "logs")
	if err != nil {
		t.Fatalf("logs failed: %v", err)
	}
	if !strings.Contains(out, "No call logs") {
		t.Errorf("Expected empty message, got %q", out)
	}
}

func TestTranscriptCmd(t *testing.T) {
	configPath, _ := writeConfig(t)
	if _, err := execute(t, "--config", configPath, "init", "--fixtures"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", configPath, "transcript", db.DefaultRecordID)
	if err != nil {
		t.Fatalf("transcript failed: %v", err)
	}
	if !strings.Contains(out, "Customer\r\nHi, my order hasn't arrived yet.\r\n") {
		t.Errorf("Expected stored transcript, got %q", out)
	}

	if _, err := execute(t, "--config", configPath, "transcript", "00TMISSING"); err == nil {
		t.Error("Expected error for unknown record")
	}
}

func TestTranscriptCmd_RequiresRecordID(t *testing.T) {
	configPath, _ := writeConfig(t)
	if _, err := execute(t, "--config", configPath, "transcript"); err == nil {
		t.Error("Expected error without a record ID")
	}
}

func waitForLog(t *testing.T, database *db.DB, id string) *db.CallLog {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		l, err := database.GetLog(id)
		if err == nil {
			return l
		}
		if time.Now().After(deadline) {
			t.Fatalf("call log %s never saved: %v", id, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSession_ChatTranscriptReachesCRM(t *testing.T) {
	_, dbPath := writeConfig(t)
	if err := db.Initialize(dbPath); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Database.Path = dbPath
	cfg.CRM.RecordID = "00TSESSION"

	sess, err := newSession(context.Background(), cfg, logging.NopLogger())
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	defer sess.Close()

	if !sess.orchestrator.Active() {
		t.Fatal("Expected orchestrator to be active for a hosted origin")
	}

	rt := sess.runtime
	task := rt.AddTask(host.ChannelChat)
	if err := rt.AppendMessage(task.Attributes.ChannelSID, "Customer", "Where is my parcel?"); err != nil {
		t.Fatal(err)
	}
	if err := rt.AppendMessage(task.Attributes.ChannelSID, "Agent", "On its way."); err != nil {
		t.Fatal(err)
	}

	if err := rt.AcceptTask(task.SID); err != nil {
		t.Fatalf("AcceptTask failed: %v", err)
	}
	if !rt.Config().Bool(host.ShowPanel2Path) {
		t.Error("Expected secondary panel to be visible after accept")
	}
	if err := rt.WrapupTask(task.SID); err != nil {
		t.Fatalf("WrapupTask failed: %v", err)
	}

	l := waitForLog(t, sess.database, "00TSESSION")
	if l.MessageCount() != 2 {
		t.Errorf("Expected 2 messages in saved transcript, got %d", l.MessageCount())
	}
	if !strings.Contains(l.Description, "Customer\r\nWhere is my parcel?\r\n") {
		t.Errorf("Unexpected transcript %q", l.Description)
	}

	if err := rt.CompleteTask(task.SID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if rt.Config().Bool(host.ShowPanel2Path) {
		t.Error("Expected secondary panel to be hidden once every task is complete")
	}
}

func TestSession_OutsideCRMStaysInactive(t *testing.T) {
	_, dbPath := writeConfig(t)
	if err := db.Initialize(dbPath); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Database.Path = dbPath
	cfg.CRM.Origin = "https://desktop.example.com"

	sess, err := newSession(context.Background(), cfg, logging.NopLogger())
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}
	defer sess.Close()

	if sess.orchestrator.Active() {
		t.Error("Expected orchestrator to stay inactive outside the CRM")
	}
	task := sess.runtime.AddTask(host.ChannelChat)
	if err := sess.runtime.AcceptTask(task.SID); err != nil {
		t.Fatal(err)
	}
	if sess.runtime.Config().Bool(host.ShowPanel2Path) {
		t.Error("Expected no panel changes outside the CRM")
	}
}

func TestSession_CloseWaitsForCRMWrites(t *testing.T) {
	_, dbPath := writeConfig(t)
	if err := db.Initialize(dbPath); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Database.Path = dbPath
	cfg.CRM.RecordID = "00TQUIT"

	var logBuf bytes.Buffer
	sess, err := newSession(context.Background(), cfg, logging.New(&logBuf, logging.LevelDebug))
	if err != nil {
		t.Fatalf("newSession failed: %v", err)
	}

	rt := sess.runtime
	task := rt.AddTask(host.ChannelChat)
	if err := rt.AppendMessage(task.Attributes.ChannelSID, "Customer", "Bye"); err != nil {
		t.Fatal(err)
	}
	for _, step := range []func(string) error{rt.AcceptTask, rt.WrapupTask, rt.CompleteTask} {
		if err := step(task.SID); err != nil {
			t.Fatal(err)
		}
	}

	// Quit straight away, as an agent pressing w then q would.
	if err := sess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if strings.Contains(logBuf.String(), "database is closed") {
		t.Errorf("CRM calls ran after the database closed:\n%s", logBuf.String())
	}

	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()
	l, err := database.GetLog("00TQUIT")
	if err != nil {
		t.Fatalf("Expected transcript to be saved before Close returned: %v", err)
	}
	if l.MessageCount() != 1 {
		t.Errorf("Expected 1 message, got %d", l.MessageCount())
	}
	if n, _ := database.RefreshCount(); n != 1 {
		t.Errorf("Expected one view refresh, got %d", n)
	}
	if _, ok, err := database.SoftphoneWidth(); err != nil || !ok {
		t.Errorf("Expected softphone width to be stored, ok=%v err=%v", ok, err)
	}
}
