// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasks-go/internal/task"
	"github.com/nibzard/tasks-go/internal/taskdir"
)

// isolate points HOME and the working directory at temp dirs so no real
// config file is discovered, and returns a data file path inside the project.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	project := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range []string{
		"TASKS_CONFIG",
		"TASKS_DATA",
		"TASKS_NEWEST_FIRST",
		"TASKS_LOG_LEVEL",
		"TASKS_LOG_FORMAT",
		"TASKS_LOG_TIMESTAMPS",
		"TASKS_LOG_CALLER",
	} {
		t.Setenv(name, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(project); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
	return filepath.Join(project, "data", "storage.json")
}

// runCLI runs the CLI with --data prepended and captures both streams.
func runCLI(t *testing.T, data string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--data", data}, args...)
	err := run(context.Background(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func mustRun(t *testing.T, data string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runCLI(t, data, args...)
	if err != nil {
		t.Fatalf("run %v: %v\nstderr: %s", args, err, stderr)
	}
	return stdout
}

func TestRun(t *testing.T) {
	t.Run("shows help with help command", func(t *testing.T) {
		data := isolate(t)
		out := mustRun(t, data, "help")
		if !strings.Contains(out, "Usage:") || !strings.Contains(out, "add [title]") {
			t.Errorf("unexpected help output:\n%s", out)
		}
	})

	t.Run("shows help with -h flag", func(t *testing.T) {
		data := isolate(t)
		out := mustRun(t, data, "-h")
		if !strings.Contains(out, "Global Options:") {
			t.Errorf("expected global options in help, got:\n%s", out)
		}
	})

	t.Run("shows version", func(t *testing.T) {
		data := isolate(t)
		for _, arg := range []string{"version", "--version", "-v"} {
			out := mustRun(t, data, arg)
			if out != "tasks version dev\n" {
				t.Errorf("%s: got %q", arg, out)
			}
		}
	})

	t.Run("unknown command returns error", func(t *testing.T) {
		data := isolate(t)
		_, stderr, err := runCLI(t, data, "frobnicate")
		if err == nil || !strings.Contains(err.Error(), "unknown command: frobnicate") {
			t.Fatalf("expected unknown command error, got %v", err)
		}
		if !strings.Contains(stderr, "Unknown command: frobnicate") {
			t.Errorf("expected message on stderr, got %q", stderr)
		}
	})

	t.Run("invalid log format fails config load", func(t *testing.T) {
		data := isolate(t)
		_, _, err := runCLI(t, data, "--log-format", "xml", "ls")
		if err == nil || !strings.Contains(err.Error(), "loading config") {
			t.Fatalf("expected config error, got %v", err)
		}
	})
}

func TestAddThenList(t *testing.T) {
	data := isolate(t)

	out := mustRun(t, data, "add", "--title", "A", "--description", "d")
	if !strings.HasPrefix(out, "Added task ") || !strings.HasSuffix(out, ": A\n") {
		t.Errorf("unexpected add output %q", out)
	}
	mustRun(t, data, "add", "--done", "B")

	var got listing
	if err := json.Unmarshal([]byte(mustRun(t, data, "ls", "--format", "json")), &got); err != nil {
		t.Fatalf("decode ls json: %v", err)
	}
	if len(got.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(got.Tasks))
	}
	if got.Tasks[0].Title != "B" || got.Tasks[1].Title != "A" {
		t.Errorf("expected newest first, got %q then %q", got.Tasks[0].Title, got.Tasks[1].Title)
	}
	if got.Tasks[1].Description != "d" || got.Tasks[1].Status {
		t.Errorf("unexpected first task %+v", got.Tasks[1])
	}
	if !got.Tasks[0].Status {
		t.Errorf("expected B to be completed")
	}
	if got.Tasks[0].ID == "" || got.Tasks[0].ID == got.Tasks[1].ID {
		t.Errorf("expected distinct ids, got %q and %q", got.Tasks[0].ID, got.Tasks[1].ID)
	}
	if got.Counts != (task.Counts{Completed: 1, Incomplete: 1}) {
		t.Errorf("unexpected counts %+v", got.Counts)
	}

	if err := json.Unmarshal([]byte(mustRun(t, data, "ls", "--format", "json", "--oldest-first")), &got); err != nil {
		t.Fatalf("decode ls json: %v", err)
	}
	if got.Tasks[0].Title != "A" {
		t.Errorf("expected creation order with --oldest-first, got %q first", got.Tasks[0].Title)
	}
}

func TestListYAML(t *testing.T) {
	data := isolate(t)
	mustRun(t, data, "add", "--title", "only")

	var got listing
	if err := yaml.Unmarshal([]byte(mustRun(t, data, "ls", "--format", "yaml")), &got); err != nil {
		t.Fatalf("decode ls yaml: %v", err)
	}
	if len(got.Tasks) != 1 || got.Tasks[0].Title != "only" {
		t.Errorf("unexpected tasks %+v", got.Tasks)
	}
	if got.Counts.Incomplete != 1 {
		t.Errorf("unexpected counts %+v", got.Counts)
	}
}

func TestListText(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		data := isolate(t)
		out := mustRun(t, data)
		want := "No tasks available\n\nCompleted tasks: 0\nIncomplete tasks: 0\n"
		if out != want {
			t.Errorf("got %q, want %q", out, want)
		}
	})

	t.Run("with tasks", func(t *testing.T) {
		data := isolate(t)
		mustRun(t, data, "add", "--title", "first", "--description", "details")
		mustRun(t, data, "add", "--title", "second", "--done")

		out := mustRun(t, data, "ls", "-v")
		want := "  [x] second\n  [ ] first\n      details\n\nCompleted tasks: 1\nIncomplete tasks: 1\n"
		if out != want {
			t.Errorf("got %q, want %q", out, want)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		data := isolate(t)
		_, _, err := runCLI(t, data, "ls", "--format", "csv")
		if err == nil || !strings.Contains(err.Error(), "unknown format") {
			t.Errorf("expected unknown format error, got %v", err)
		}
	})
}

func TestAddValidation(t *testing.T) {
	data := isolate(t)

	_, stderr, err := runCLI(t, data, "add", "--description", "no title")
	if !errors.Is(err, errInvalidTask) {
		t.Fatalf("expected errInvalidTask, got %v", err)
	}
	if !strings.Contains(stderr, "title: Title is required.\n") {
		t.Errorf("expected field error on stderr, got %q", stderr)
	}
	if _, statErr := os.Stat(data); !os.IsNotExist(statErr) {
		t.Errorf("expected no storage file after a rejected add, stat err = %v", statErr)
	}

	_, _, err = runCLI(t, data, "add", "--title", "x", "y")
	if err == nil || !strings.Contains(err.Error(), "title given twice") {
		t.Errorf("expected duplicate title error, got %v", err)
	}
}

func TestStats(t *testing.T) {
	data := isolate(t)
	mustRun(t, data, "add", "--title", "a")
	mustRun(t, data, "add", "--title", "b", "--done")
	mustRun(t, data, "add", "--title", "c", "--done")

	if out := mustRun(t, data, "stats"); out != "Completed tasks: 2\nIncomplete tasks: 1\n" {
		t.Errorf("unexpected stats output %q", out)
	}

	var counts task.Counts
	if err := json.Unmarshal([]byte(mustRun(t, data, "stats", "--format", "json")), &counts); err != nil {
		t.Fatalf("decode stats json: %v", err)
	}
	if counts != (task.Counts{Completed: 2, Incomplete: 1}) {
		t.Errorf("unexpected counts %+v", counts)
	}
}

func TestMalformedStore(t *testing.T) {
	data := isolate(t)
	if err := os.MkdirAll(filepath.Dir(data), 0o755); err != nil {
		t.Fatal(err)
	}
	corrupt := []byte("{\n  \"tasks\": \"not a list\"\n}\n")
	if err := os.WriteFile(data, corrupt, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("add refuses to overwrite", func(t *testing.T) {
		_, _, err := runCLI(t, data, "add", "--title", "new")
		if !errors.Is(err, task.ErrMalformedStore) {
			t.Fatalf("expected ErrMalformedStore, got %v", err)
		}
		after, readErr := os.ReadFile(data)
		if readErr != nil {
			t.Fatal(readErr)
		}
		if !bytes.Equal(after, corrupt) {
			t.Errorf("storage file was modified:\n%s", after)
		}
	})

	t.Run("ls warns and shows nothing", func(t *testing.T) {
		stdout, stderr, err := runCLI(t, data, "ls")
		if err != nil {
			t.Fatalf("ls: %v", err)
		}
		if !strings.HasPrefix(stdout, "No tasks available") {
			t.Errorf("unexpected stdout %q", stdout)
		}
		if !strings.Contains(stderr, "ignoring unreadable saved tasks") {
			t.Errorf("expected warning on stderr, got %q", stderr)
		}
	})

	t.Run("doctor fails", func(t *testing.T) {
		stdout, _, err := runCLI(t, data, "doctor")
		if err == nil {
			t.Fatal("expected doctor to fail")
		}
		if !strings.Contains(stdout, "malformed task store") {
			t.Errorf("expected malformed report, got:\n%s", stdout)
		}
	})
}

func TestDoctor(t *testing.T) {
	t.Run("missing storage file", func(t *testing.T) {
		data := isolate(t)
		out := mustRun(t, data, "doctor")
		if !strings.Contains(out, "Not found (will be created on first add)") {
			t.Errorf("expected not-found warning, got:\n%s", out)
		}
		if !strings.Contains(out, "data_file = "+data+" (flag)") {
			t.Errorf("expected data_file source, got:\n%s", out)
		}
		if !strings.Contains(out, "log_level = info (default)") {
			t.Errorf("expected default log level, got:\n%s", out)
		}
	})

	t.Run("healthy store", func(t *testing.T) {
		data := isolate(t)
		mustRun(t, data, "add", "--title", "a", "--done")
		out := mustRun(t, data, "doctor", "-v")
		for _, want := range []string{
			"✅ OK",
			"Keys: tasks",
			"1 task(s): 1 completed, 0 incomplete",
			"[x] a",
			"All checks passed!",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in doctor output:\n%s", want, out)
			}
		}
	})
}

func TestDataFromEnv(t *testing.T) {
	data := isolate(t)
	t.Setenv("TASKS_DATA", data)

	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"add", "--title", "env"}, &stdout, &stderr); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := os.Stat(data); err != nil {
		t.Errorf("expected storage file at %s: %v", data, err)
	}
}

func TestInit(t *testing.T) {
	data := isolate(t)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	path := taskdir.ConfigPath(wd)

	out := mustRun(t, data, "init")
	if out != "Wrote "+path+"\n" {
		t.Errorf("unexpected init output %q", out)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}

	if _, _, err := runCLI(t, data, "init"); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
	mustRun(t, data, "init", "--force")

	// The written file is discovered as the project config.
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"doctor"}, &stdout, &stderr); err != nil {
		t.Fatalf("doctor: %v\n%s", err, stdout.String())
	}
	if !strings.Contains(stdout.String(), "newest_first = true (project file)") {
		t.Errorf("expected project file source, got:\n%s", stdout.String())
	}

	printed := mustRun(t, data, "init", "--print")
	if !strings.Contains(printed, "data_file = ") {
		t.Errorf("unexpected printed config:\n%s", printed)
	}
}
