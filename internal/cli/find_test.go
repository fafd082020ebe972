package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(NormalizeArgs(args))

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

// createTree writes A/x.txt, B/x.txt and C/y.txt, all containing "hi"
func createTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := []string{"A/x.txt", "B/x.txt", "C/y.txt"}
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("hi"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// canonical resolves a directory the way the report does
func canonical(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func exitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if err != nil {
		return 1
	}
	return 0
}

func TestFindCommand_NameOnlyDefault(t *testing.T) {
	root := createTree(t)

	stdout, _, err := execute(t, "find", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}

	want := canonical(t, filepath.Join(root, "A")) + "\n" +
		canonical(t, filepath.Join(root, "B")) + "\n" +
		"\tx.txt\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestFindCommand_ContentOnlyTokens(t *testing.T) {
	root := createTree(t)

	stdout, _, err := execute(t, "find", "+data", "-name", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}

	want := canonical(t, filepath.Join(root, "A")) + "\n" +
		canonical(t, filepath.Join(root, "B")) + "\n" +
		canonical(t, filepath.Join(root, "C")) + "\n" +
		"\tx.txt == y.txt\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestFindCommand_TokensOverrideFlags(t *testing.T) {
	root := createTree(t)

	// --data sets the initial mode, the last token wins
	stdout, _, err := execute(t, "find", "--data", "--name=false", root, "+name")
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if strings.Contains(stdout, "y.txt") {
		t.Errorf("name+data mode should not match y.txt:\n%s", stdout)
	}
	if !strings.Contains(stdout, "\tx.txt\n") {
		t.Errorf("stdout = %q, want x.txt entry", stdout)
	}
}

func TestFindCommand_DegenerateModeWarns(t *testing.T) {
	root := createTree(t)

	stdout, stderr, err := execute(t, "find", "-name", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if !strings.Contains(stderr, "both disabled") {
		t.Errorf("stderr = %q, want degenerate warning", stderr)
	}
	if !strings.Contains(stdout, "\tx.txt == y.txt\n") {
		t.Errorf("stdout = %q, want every bucket member grouped", stdout)
	}

	_, stderr, _ = execute(t, "-q", "find", "-name", root)
	if stderr != "" {
		t.Errorf("quiet stderr = %q, want empty", stderr)
	}
}

func TestFindCommand_JSONOutput(t *testing.T) {
	root := createTree(t)

	stdout, _, err := execute(t, "find", "-o", "json", "+data", "-name", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}

	var doc struct {
		Status  string `json:"status"`
		Mode    struct{ Name, Data bool }
		Entries []struct {
			Directories []string   `json:"directories"`
			Names       [][]string `json:"names"`
		} `json:"entries"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, stdout)
	}

	if doc.Status != "success" {
		t.Errorf("status = %q, want success", doc.Status)
	}
	if doc.Mode.Name || !doc.Mode.Data {
		t.Errorf("mode = %+v, want data only", doc.Mode)
	}
	if len(doc.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(doc.Entries))
	}
	if want := [][]string{{"x.txt", "y.txt"}}; !reflect.DeepEqual(doc.Entries[0].Names, want) {
		t.Errorf("names = %v, want %v", doc.Entries[0].Names, want)
	}
}

func TestFindCommand_NoPaths(t *testing.T) {
	_, _, err := execute(t, "find", "+data")
	if err == nil || !strings.Contains(err.Error(), "at least one path") {
		t.Errorf("error = %v, want missing path error", err)
	}
}

func TestFindCommand_MissingRoot(t *testing.T) {
	root := createTree(t)
	missing := filepath.Join(root, "nope")

	// One readable root: partial run, still exit 0
	stdout, stderr, err := execute(t, "find", missing, root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if !strings.Contains(stdout, "\tx.txt\n") {
		t.Errorf("stdout = %q, want duplicates from readable root", stdout)
	}
	if !strings.Contains(stderr, "warning: skipped "+missing) {
		t.Errorf("stderr = %q, want skip warning", stderr)
	}

	// No readable root: failed
	_, _, err = execute(t, "find", missing)
	if code := exitCode(err); code != 2 {
		t.Errorf("exit code = %d, want 2 (err = %v)", code, err)
	}
}

func TestFindCommand_Exclude(t *testing.T) {
	root := createTree(t)

	stdout, _, err := execute(t, "find", "--exclude", "B/", "+data", "-name", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if strings.Contains(stdout, canonical(t, filepath.Join(root, "B"))) {
		t.Errorf("excluded directory reported:\n%s", stdout)
	}
	if !strings.Contains(stdout, "\tx.txt == y.txt\n") {
		t.Errorf("stdout = %q, want A/x and C/y grouped", stdout)
	}
}

func TestFindCommand_Report(t *testing.T) {
	root := createTree(t)
	reportPath := filepath.Join(t.TempDir(), "reports", "dupes.json")

	_, _, err := execute(t, "find", "--report", reportPath, "--report-format", "json", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.Contains(string(data), `"entries"`) {
		t.Errorf("report = %s, want entries", data)
	}
}

func TestFindCommand_InvalidOptions(t *testing.T) {
	root := createTree(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Matcher", []string{"--matcher", "foo"}, "invalid options"},
		{"Fingerprint", []string{"--fingerprint", "md5"}, "invalid options"},
		{"Output", []string{"-o", "xml"}, "invalid options"},
		{"Bandwidth", []string{"--bandwidth", "fast"}, "invalid bandwidth limit"},
		{"LogLevel", []string{"--log-level", "loud"}, "invalid options"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"find"}, tt.args...)
			args = append(args, root)
			_, _, err := execute(t, args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFindCommand_BandwidthLimited(t *testing.T) {
	root := createTree(t)

	stdout, _, err := execute(t, "find", "--bandwidth", "10M", "+data", "-name", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if !strings.Contains(stdout, "\tx.txt == y.txt\n") {
		t.Errorf("stdout = %q, want content duplicates", stdout)
	}
}

func TestFindCommand_MatchersAgree(t *testing.T) {
	root := createTree(t)

	mmapOut, _, err := execute(t, "find", "--matcher", "mmap", "--fingerprint", "xxhash", "+data", root)
	if err != nil {
		t.Fatalf("mmap find error = %v", err)
	}
	chunkedOut, _, err := execute(t, "find", "--matcher", "chunked", "+data", root)
	if err != nil {
		t.Fatalf("chunked find error = %v", err)
	}
	if mmapOut != chunkedOut {
		t.Errorf("matcher outputs differ:\nmmap:\n%s\nchunked:\n%s", mmapOut, chunkedOut)
	}
}

func TestFindCommand_LogFile(t *testing.T) {
	root := createTree(t)
	logPath := filepath.Join(t.TempDir(), "logs", "dupnorris.log")

	_, _, err := execute(t, "find", "--log-file", logPath, "--log-format", "json", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "Duplicate search completed") {
		t.Errorf("log = %s, want completion message", data)
	}
}

func TestFindCommand_VerboseSummary(t *testing.T) {
	root := createTree(t)

	_, stderr, err := execute(t, "-v", "find", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if !strings.Contains(stderr, "Status: success") {
		t.Errorf("stderr = %q, want summary", stderr)
	}
	if !strings.Contains(stderr, "Starting duplicate search") {
		t.Errorf("stderr = %q, want log lines", stderr)
	}
}

func TestFindCommand_Cancelled(t *testing.T) {
	root := createTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := executeContext(t, ctx, "find", root)
	if code := exitCode(err); code != 3 {
		t.Errorf("exit code = %d, want 3 (err = %v)", code, err)
	}
}

func TestFindCommand_ConfigFile(t *testing.T) {
	root := createTree(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "compare:\n  name: false\n  data: true\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "--config", configPath, "find", root)
	if err != nil {
		t.Fatalf("find error = %v", err)
	}
	if !strings.Contains(stdout, "\tx.txt == y.txt\n") {
		t.Errorf("stdout = %q, want content mode from config", stdout)
	}

	_, _, err = execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "find", root)
	if err == nil || !strings.Contains(err.Error(), "failed to load config") {
		t.Errorf("error = %v, want config load failure", err)
	}
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "NoTokens",
			args: []string{"find", "-v", "/a"},
			want: []string{"find", "-v", "/a"},
		},
		{
			name: "TokensMoved",
			args: []string{"find", "-name", "/a", "+data", "/b"},
			want: []string{"find", "/a", "/b", "--", "-name", "+data"},
		},
		{
			name: "FlagsKept",
			args: []string{"find", "-data", "-o", "json", "/a"},
			want: []string{"find", "-o", "json", "/a", "--", "-data"},
		},
		{
			name: "ExistingTerminator",
			args: []string{"find", "+name", "/a", "--", "-data", "/b"},
			want: []string{"find", "/a", "--", "+name", "-data", "/b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeArgs(tt.args)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dupnorris", "config.yaml")

	stdout, _, err := execute(t, "--config", configPath, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(stdout, configPath) {
		t.Errorf("stdout = %q, want created path", stdout)
	}

	_, _, err = execute(t, "--config", configPath, "config", "init")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init error = %v, want already exists", err)
	}

	if _, _, err := execute(t, "--config", configPath, "config", "init", "--force"); err != nil {
		t.Errorf("forced init error = %v", err)
	}

	stdout, _, err = execute(t, "--config", configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	for _, want := range []string{"Mode: name", "Matcher: mmap", "Fingerprint: crc32 (2048 bytes)", "Bandwidth Limit: unlimited"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show missing %q:\n%s", want, stdout)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(stdout) != Version {
		t.Errorf("stdout = %q, want %q", stdout, Version)
	}

	stdout, _, _ = execute(t, "version")
	if !strings.HasPrefix(stdout, "dupnorris ") {
		t.Errorf("stdout = %q, want dupnorris prefix", stdout)
	}
}
