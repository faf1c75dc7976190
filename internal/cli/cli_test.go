package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sdejongh/treediff/pkg/storage"
)

// execute runs the root command with args against an isolated config dir
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
	return root
}

// scenario builds the a.txt/b.txt/c.txt trees
func scenario(t *testing.T) (string, string) {
	root1 := writeTree(t, map[string]string{"a.txt": "hello", "b.txt": "x"})
	root2 := writeTree(t, map[string]string{"a.txt": "hello!", "c.txt": "x"})
	return root1, root2
}

func TestCompare_HumanOutput(t *testing.T) {
	root1, root2 := scenario(t)

	stdout, _, err := execute(t, "compare", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}

	want := fmt.Sprintf("Removed Files:\n%s\n\nModified Files:\n%s\n\nAdded Files:\n%s\n\n",
		filepath.Join(root1, "b.txt"),
		filepath.Join(root1, "a.txt"),
		filepath.Join(root2, "c.txt"),
	)
	if stdout != want {
		t.Errorf("stdout =\n%q\nwant\n%q", stdout, want)
	}
}

func TestCompare_RelativeOutput(t *testing.T) {
	root1, root2 := scenario(t)
	sep := string(filepath.Separator)

	stdout, _, err := execute(t, "compare", "--relative", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}

	want := "Removed Files:\n" + sep + "b.txt\n\nModified Files:\n" + sep + "a.txt\n\nAdded Files:\n" + sep + "c.txt\n\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestCompare_ReadLimit(t *testing.T) {
	root1, root2 := scenario(t)
	sep := string(filepath.Separator)

	stdout, _, err := execute(t, "compare", "-r", "--read-limit", "10M", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}

	want := "Removed Files:\n" + sep + "b.txt\n\nModified Files:\n" + sep + "a.txt\n\nAdded Files:\n" + sep + "c.txt\n\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestCompare_JSONOutput(t *testing.T) {
	root1, root2 := scenario(t)

	stdout, _, err := execute(t, "compare", "-o", "json", "-r", "--comparison", "hash", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}

	var got struct {
		OperationID string   `json:"operation_id"`
		Method      string   `json:"method"`
		Removed     []string `json:"removed"`
		Modified    []string `json:"modified"`
		Added       []string `json:"added"`
		Status      string   `json:"status"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if got.OperationID == "" || got.Method != "hash" || got.Status != "success" {
		t.Errorf("header = %+v", got)
	}
	if len(got.Removed) != 1 || len(got.Modified) != 1 || len(got.Added) != 1 {
		t.Errorf("lists = %+v", got)
	}
}

func TestCompare_IdenticalTrees(t *testing.T) {
	files := map[string]string{"a.txt": "same", "sub/b.txt": "also same"}
	root1 := writeTree(t, files)
	root2 := writeTree(t, files)

	stdout, _, err := execute(t, "compare", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if want := "Removed Files:\n\nModified Files:\n\nAdded Files:\n\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
	if ExitCode(err) != 0 {
		t.Errorf("ExitCode() = %d, want 0", ExitCode(err))
	}
}

func TestCompare_MissingRoot(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a"})
	missing := filepath.Join(t.TempDir(), "missing")

	for _, args := range [][]string{{missing, root}, {root, missing}} {
		_, _, err := execute(t, append([]string{"compare"}, args...)...)
		if err == nil {
			t.Fatalf("compare %v should fail", args)
		}
		if code := ExitCode(err); code != 2 {
			t.Errorf("ExitCode() = %d, want 2", code)
		}
		var ioErr *storage.IOError
		if !errors.As(err, &ioErr) || ioErr.Path != missing {
			t.Errorf("error = %v, want IOError for %s", err, missing)
		}
	}
}

func TestCompare_MissingRootJSON(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "a"})
	missing := filepath.Join(t.TempDir(), "missing")

	stdout, _, err := execute(t, "compare", "-o", "json", root, missing)
	if ExitCode(err) != 2 {
		t.Fatalf("ExitCode() = %d, want 2", ExitCode(err))
	}
	if !strings.Contains(stdout, `"status": "failed"`) {
		t.Errorf("stdout should carry a JSON error:\n%s", stdout)
	}
}

func TestCompare_CancelledJSON(t *testing.T) {
	root1, root2 := scenario(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stdout, _, err := executeContext(t, ctx, "compare", "-o", "json", root1, root2)
	if code := ExitCode(err); code != 3 {
		t.Fatalf("ExitCode() = %d, want 3", code)
	}

	var got struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if got.Status != "cancelled" {
		t.Errorf("status = %q, want cancelled", got.Status)
	}
	if !strings.Contains(got.Error, context.Canceled.Error()) {
		t.Errorf("error = %q, want it to mention %q", got.Error, context.Canceled)
	}
}

func TestCompare_InvalidArguments(t *testing.T) {
	root1, root2 := scenario(t)

	tests := []struct {
		name string
		args []string
	}{
		{"NoRoots", []string{"compare"}},
		{"OneRoot", []string{"compare", root1}},
		{"ThreeRoots", []string{"compare", root1, root2, root2}},
		{"BadComparison", []string{"compare", "--comparison", "md5", root1, root2}},
		{"BadOutput", []string{"compare", "-o", "xml", root1, root2}},
		{"BadDiffFormat", []string{"compare", "--diff-format", "xml", root1, root2}},
		{"NegativeParallel", []string{"compare", "--parallel=-1", root1, root2}},
		{"BadReadLimit", []string{"compare", "--read-limit", "fast", root1, root2}},
		{"InfiniteReadLimit", []string{"compare", "--read-limit", "Inf", root1, root2}},
		{"OverflowReadLimit", []string{"compare", "--read-limit", "1e30", root1, root2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := ExitCode(err); code != 1 {
				t.Errorf("ExitCode() = %d, want 1", code)
			}
		})
	}
}

func TestCompare_Exclude(t *testing.T) {
	root1 := writeTree(t, map[string]string{"keep.txt": "k", "build/out.o": "o", "x.tmp": "t"})
	root2 := writeTree(t, map[string]string{"keep.txt": "k"})

	stdout, _, err := execute(t, "compare", "--exclude", "build/", "--exclude", "*.tmp", "-r", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if want := "Removed Files:\n\nModified Files:\n\nAdded Files:\n\n"; stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestCompare_DiffReportAndLogFile(t *testing.T) {
	root1, root2 := scenario(t)
	outDir := t.TempDir()
	reportPath := filepath.Join(outDir, "diff.json")
	logPath := filepath.Join(outDir, "logs", "treediff.log")

	_, _, err := execute(t, "compare",
		"--diff-report", reportPath, "--diff-format", "json",
		"--log-file", logPath, "--log-format", "json", "--log-level", "debug",
		root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("differences report not written: %v", err)
	}
	if !strings.Contains(string(data), `"total_count": 3`) {
		t.Errorf("report = %s", data)
	}

	logData, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	for _, want := range []string{"Starting comparison", "Comparison completed", "File modified", "operation_id"} {
		if !strings.Contains(string(logData), want) {
			t.Errorf("log missing %q:\n%s", want, logData)
		}
	}
}

func TestCompare_VerboseSummary(t *testing.T) {
	root1, root2 := scenario(t)

	stdout, _, err := execute(t, "compare", "-v", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if !strings.Contains(stdout, "Summary:") || !strings.Contains(stdout, "Status: success") {
		t.Errorf("verbose output missing summary:\n%s", stdout)
	}

	stdout, _, err = execute(t, "compare", "-q", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if strings.Contains(stdout, "Summary:") {
		t.Errorf("quiet output should not carry a summary:\n%s", stdout)
	}
}

func TestCompare_ConfigFile(t *testing.T) {
	root1, root2 := scenario(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("compare:\n  relative: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := execute(t, "--config", cfgPath, "compare", root1, root2)
	if err != nil {
		t.Fatalf("compare error = %v", err)
	}
	if strings.Contains(stdout, root1) {
		t.Errorf("relative: true in config should strip roots:\n%s", stdout)
	}

	t.Run("Invalid", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(bad, []byte("performance:\n  max_workers: 0\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, _, err := execute(t, "--config", bad, "compare", root1, root2)
		if ExitCode(err) != 1 {
			t.Errorf("ExitCode() = %d, want 1 (err = %v)", ExitCode(err), err)
		}
	})
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	stdout, _, err := execute(t, "--config", path, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(stdout, path) {
		t.Errorf("config init output = %q", stdout)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	if _, _, err := execute(t, "--config", path, "config", "init"); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
	if _, _, err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force error = %v", err)
	}

	stdout, _, err = execute(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(stdout, "method: binary") {
		t.Errorf("config show output = %q", stdout)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if strings.TrimSpace(stdout) != Version {
		t.Errorf("version --short = %q, want %q", stdout, Version)
	}

	stdout, _, err = execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(stdout, "treediff ") {
		t.Errorf("version output = %q", stdout)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, 0},
		{"Usage", errors.New("bad flag"), 1},
		{"Failed", &ExitError{Code: 2, Err: errors.New("io")}, 2},
		{"WrappedExit", fmt.Errorf("outer: %w", &ExitError{Code: 3, Err: context.Canceled}), 3},
		{"Cancelled", fmt.Errorf("walk: %w", context.Canceled), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
