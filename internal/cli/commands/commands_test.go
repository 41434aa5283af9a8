package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bogdangi/haproxy-log-analysis/pkg/output"
)

// logLine builds a valid HTTP-format line with the parts tests care about.
func logLine(accept, capturedIP, status, request string) string {
	return fmt.Sprintf(
		`127.0.0.1:39759 [%s] loadbalancer default/instance8 0/0/1/10/11 %s 1024 - - ---- 1/1/1/1/0 0/0 {%s} "%s"`,
		accept, status, capturedIP, request)
}

func writeLogFile(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write log file: %v", err)
	}
	return path
}

// captureStdout runs fn with os.Stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	runErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), runErr
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	if args == nil {
		args = []string{} // nil would make cobra fall back to os.Args
	}
	cmd.SetArgs(args)
	return captureStdout(t, func() error {
		return cmd.ExecuteContext(context.Background())
	})
}

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	if cmd.Use != "run [log-file|glob ...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	// Check flags exist
	flags := []string{
		"config", "start", "delta", "command", "output",
		"verbose", "quiet", "slow-ms", "peak-min", "top-count", "fail-on-invalid",
	}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
}

func TestRunRun_TextOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
		logLine("09/Dec/2013:13:00:10.123", "10.0.0.2", "404", "GET /b HTTP/1.1"),
		"this line is garbage",
	})

	out, err := execute(t, NewRunCommand(), logPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, want := range []string{
		"haplog analysis report",
		"counter: 2",
		"counter_invalid: 1",
		"3 lines read, 2 valid, 1 invalid",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestRunRun_JSONOutput(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
		logLine("09/Dec/2013:13:00:10.123", "10.0.0.1", "500", "POST /b HTTP/1.1"),
	})

	out, err := execute(t, NewRunCommand(), "-o", "json", "-v", logPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, out)
	}

	if report.Summary.TotalLines != 2 || report.Summary.ValidLines != 2 {
		t.Errorf("Unexpected summary: %+v", report.Summary)
	}
	// The default run executes the full catalogue.
	if len(report.Results) != 10 {
		t.Errorf("Expected 10 results, got %d", len(report.Results))
	}
	if report.Metadata.RunID == "" {
		t.Error("Expected a run ID in verbose metadata")
	}
}

func TestRunRun_CommandSelection(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
	})

	out, err := execute(t, NewRunCommand(), "-o", "json", "-c", "counter", "-c", "http_methods", logPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(report.Results))
	}
	if report.Results[0].Command != "counter" || report.Results[1].Command != "http_methods" {
		t.Errorf("Unexpected command order: %s, %s",
			report.Results[0].Command, report.Results[1].Command)
	}
}

func TestRunRun_UnknownCommand(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
	})

	_, err := execute(t, NewRunCommand(), "-c", "no_such_command", logPath)
	if err == nil {
		t.Fatal("Expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Expected 'unknown command' error, got: %v", err)
	}
}

func TestRunRun_NoSources(t *testing.T) {
	_, err := execute(t, NewRunCommand())
	if err == nil {
		t.Fatal("Expected error when no log source is configured")
	}
	if !strings.Contains(err.Error(), "no log source configured") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunRun_Window(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
		logLine("09/Dec/2013:13:10:00.000", "10.0.0.2", "200", "GET /b HTTP/1.1"),
		logLine("09/Dec/2013:15:00:00.000", "10.0.0.3", "200", "GET /c HTTP/1.1"),
	})

	out, err := execute(t, NewRunCommand(),
		"-o", "json", "-v", "-s", "09/Dec/2013:13:00:00", "-d", "1h", logPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if report.Summary.ValidLines != 1 {
		t.Errorf("Expected 1 line inside the window, got %d", report.Summary.ValidLines)
	}
	if report.Metadata.TimeWindow == nil {
		t.Error("Expected the window in metadata")
	}
}

func TestRunRun_DeltaWithoutStart(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
	})

	_, err := execute(t, NewRunCommand(), "-d", "1h", logPath)
	if err == nil {
		t.Fatal("Expected error for --delta without --start")
	}
	if !strings.Contains(err.Error(), "--delta requires --start") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunRun_InvalidStart(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
	})

	_, err := execute(t, NewRunCommand(), "-s", "not-a-date", logPath)
	if err == nil {
		t.Fatal("Expected error for invalid start time")
	}
}

func TestRunRun_FailOnInvalid(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
		"garbage",
	})

	_, err := execute(t, NewRunCommand(), "--fail-on-invalid", logPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", ExitCode)
	}
}

func TestRunRun_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
	})

	configPath := filepath.Join(tmpDir, "config.yaml")
	config := `log_sources:
  - ` + logPath + `

commands:
  - counter
  - status_codes_counter
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	out, err := execute(t, NewRunCommand(), "-o", "json", "--config", configPath)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var report output.Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(report.Results) != 2 {
		t.Errorf("Expected the 2 configured commands, got %d results", len(report.Results))
	}
}

func TestRunRun_MissingFile(t *testing.T) {
	// Unmatched literal paths are kept by glob expansion and fail at
	// ingestion time.
	_, err := execute(t, NewRunCommand(), filepath.Join(t.TempDir(), "absent.log"))
	if err == nil {
		t.Fatal("Expected error for missing log file")
	}
}

func TestCreateFormatter(t *testing.T) {
	tests := []struct {
		output  string
		wantErr bool
	}{
		{"text", false},
		{"json", false},
		{"xml", true},
	}

	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			opts := &RunOptions{Output: tt.output}
			_, err := createFormatter(opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("createFormatter(%q) error = %v, wantErr %v", tt.output, err, tt.wantErr)
			}
		})
	}
}

func TestCommandsList(t *testing.T) {
	out, err := execute(t, NewCommandsCommand())
	if err != nil {
		t.Fatalf("commands failed: %v", err)
	}

	for _, name := range []string{
		"counter", "counter_invalid", "http_methods", "status_codes_counter",
		"request_path_counter", "server_load", "ip_counter",
		"slow_requests", "top_ips", "queue_peaks",
	} {
		if !strings.Contains(out, name) {
			t.Errorf("Listing missing command %q", name)
		}
	}
}

func TestRunValidate_Success(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
	})

	configPath := filepath.Join(tmpDir, "config.yaml")
	config := `log_sources:
  - ` + logPath + `

time_window:
  start: "09/Dec/2013:12:00:00"
  delta: 2h

commands:
  - counter
  - top_ips
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	out, err := execute(t, NewValidateCommand(), configPath)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration valid!") {
		t.Errorf("Expected success message, got:\n%s", out)
	}
	if !strings.Contains(out, "Log files matched: 1") {
		t.Errorf("Expected matched file count, got:\n%s", out)
	}
}

func TestRunValidate_UnknownCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	config := `log_sources:
  - /tmp/*.log

commands:
  - not_a_command
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	_, err := execute(t, NewValidateCommand(), configPath)
	if err == nil {
		t.Fatal("Expected error for unknown command name")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := execute(t, NewValidateCommand(), "/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunDetect_SupportedFormat(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
		logLine("09/Dec/2013:13:00:10.123", "10.0.0.2", "404", "GET /b HTTP/1.1"),
	})

	out, err := execute(t, NewDetectCommand(), logPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "HAProxy HTTP log") {
		t.Errorf("Expected format name in output:\n%s", out)
	}
	if !strings.Contains(out, "can be analyzed") {
		t.Errorf("Expected analyzable verdict:\n%s", out)
	}
	if ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", ExitCode)
	}
}

func TestRunDetect_UnsupportedFormat(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "access.log", []string{
		`192.168.1.20 - - [09/Dec/2013:12:59:46 +0000] "GET /index.html HTTP/1.1" 200 1043`,
	})

	out, err := execute(t, NewDetectCommand(), logPath)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if !strings.Contains(out, "not analyzable") {
		t.Errorf("Expected unsupported verdict:\n%s", out)
	}
	if ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", ExitCode)
	}
}

func TestRunDetect_MissingFile(t *testing.T) {
	_, err := execute(t, NewDetectCommand(), "/nonexistent/access.log")
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRunCheck_Pass(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "test.log", []string{
		logLine("09/Dec/2013:12:59:46.633", "10.0.0.1", "200", "GET /a HTTP/1.1"),
		logLine("09/Dec/2013:13:00:10.123", "10.0.0.2", "404", "GET /b HTTP/1.1"),
	})

	out, err := execute(t, NewCheckCommand(), "-s", "09/Dec/2013:12:00:00", "-d", "2h", logPath)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "Ready to run!") {
		t.Errorf("Expected all checks to pass:\n%s", out)
	}
	if ExitCode != 0 {
		t.Errorf("Expected exit code 0, got %d", ExitCode)
	}
}

func TestRunCheck_MissingFile(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	out, err := execute(t, NewCheckCommand(), filepath.Join(t.TempDir(), "absent.log"))
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "File not found") {
		t.Errorf("Expected missing-file diagnostic:\n%s", out)
	}
	if ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", ExitCode)
	}
}

func TestRunCheck_WrongFormat(t *testing.T) {
	ExitCode = 0
	defer func() { ExitCode = 0 }()

	tmpDir := t.TempDir()
	logPath := writeLogFile(t, tmpDir, "app.log", []string{
		"2024-01-01 12:00:00 INFO application started",
		"2024-01-01 12:00:01 INFO listening on :8080",
	})

	out, err := execute(t, NewCheckCommand(), logPath)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Errorf("Expected a failed parse-rate check:\n%s", out)
	}
	if ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", ExitCode)
	}
}

func TestVersionOutput(t *testing.T) {
	out, err := execute(t, NewVersionCommand())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "haplog "+Version) {
		t.Errorf("Expected program name and version in output: %s", out)
	}
	if strings.Contains(out, "(") {
		t.Errorf("Expected no commit without ldflags: %s", out)
	}
}

func TestVersionOutput_WithCommit(t *testing.T) {
	oldCommit := Commit
	Commit = "abc1234"
	defer func() { Commit = oldCommit }()

	out, err := execute(t, NewVersionCommand())
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "(abc1234)") {
		t.Errorf("Expected build commit in output: %s", out)
	}
}

func TestParseDelta(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"45m", false},
		{"3h30m", false},
		{"0s", true},
		{"-1h", true},
		{"bogus", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseDelta(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDelta(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
