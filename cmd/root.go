// Package cmd implements the CLI command structure for tasks.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/tasks-go/internal/config"
	"github.com/nibzard/tasks-go/internal/kv"
	"github.com/nibzard/tasks-go/internal/logging"
	"github.com/nibzard/tasks-go/internal/task"
	"github.com/nibzard/tasks-go/internal/taskdir"
	"github.com/nibzard/tasks-go/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// errInvalidTask is returned by add after the field errors were printed.
var errInvalidTask = errors.New("task not added")

// cli carries what every subcommand needs.
type cli struct {
	cws    *config.ConfigWithSources
	cfg    *config.Config
	logger *log.Logger
	stdout io.Writer
	stderr io.Writer
}

// Run executes the tasks CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	c := &cli{
		cws:    cws,
		cfg:    cws.Config,
		logger: logging.FromConfig(stderr, cws.Config.LogLevel, cws.Config.LogFormat, cws.Config.LogTimestamps, cws.Config.LogCaller),
		stdout: stdout,
		stderr: stderr,
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return c.versionCommand()
	}

	// With no subcommand, list the saved tasks.
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}
	c.logger.Debug("running command", "command", subcommand, "data", c.cfg.DataFile)

	switch subcommand {
	case "add":
		return c.addCommand(remainingArgs)
	case "ls", "list":
		return c.lsCommand(remainingArgs)
	case "stats":
		return c.statsCommand(remainingArgs)
	case "tui":
		return c.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return c.doctorCommand(remainingArgs)
	case "init":
		return c.initCommand(remainingArgs)
	case "version":
		return c.versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openService wires the storage file into a task service.
func (c *cli) openService() (*task.Service, *kv.File) {
	file := kv.NewFile(c.cfg.DataFile)
	store := task.NewStore(file, task.WithStoreLogger(c.logger))
	return task.NewService(store, task.WithLogger(c.logger)), file
}

// addCommand validates and saves one new task.
func (c *cli) addCommand(args []string) error {
	fs := flag.NewFlagSet("tasks add", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	title := fs.String("title", "", "Task title (required)")
	description := fs.String("description", "", "Task description")
	done := fs.Bool("done", false, "Mark the task as completed")

	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return fmt.Errorf("unexpected arguments: %v", remaining[1:])
	}
	if len(remaining) == 1 {
		if *title != "" {
			return fmt.Errorf("title given twice: --title %q and %q", *title, remaining[0])
		}
		*title = remaining[0]
	}

	svc, file := c.openService()
	current, err := svc.LoadInitial()
	if err != nil {
		if errors.Is(err, task.ErrMalformedStore) {
			return fmt.Errorf("%w (not overwriting %s; run 'tasks doctor')", err, file.Path())
		}
		return err
	}

	next, err := svc.Create(task.RawInput{
		Title:       *title,
		Description: *description,
		Status:      task.Bool(*done),
	}, current)
	if err != nil {
		var fe task.FieldErrors
		if errors.As(err, &fe) {
			for _, field := range fe.Fields() {
				for _, msg := range fe[field] {
					fmt.Fprintf(c.stderr, "%s: %s\n", field, msg)
				}
			}
			return errInvalidTask
		}
		return err
	}

	created := next[len(next)-1]
	fmt.Fprintf(c.stdout, "Added task %s: %s\n", created.ID, created.Title)
	return nil
}

// listing is the structured output of ls.
type listing struct {
	Tasks  []task.Task `json:"tasks" yaml:"tasks"`
	Counts task.Counts `json:"counts" yaml:"counts"`
}

// lsCommand lists saved tasks in display order.
func (c *cli) lsCommand(args []string) error {
	fs := flag.NewFlagSet("tasks ls", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", "text", "Output format (text, json, yaml)")
	oldestFirst := fs.Bool("oldest-first", false, "List in creation order")
	verbose := fs.Bool("v", false, "Show descriptions")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	svc, tasks, err := c.loadForDisplay()
	if err != nil {
		return err
	}

	out := listing{
		Tasks:  ui.DisplayOrder(tasks, c.cfg.NewestFirst && !*oldestFirst),
		Counts: svc.CountByStatus(tasks),
	}

	switch strings.ToLower(*format) {
	case "text":
		if len(out.Tasks) == 0 {
			fmt.Fprintln(c.stdout, ui.NoTasks)
		}
		for _, t := range out.Tasks {
			fmt.Fprintln(c.stdout, ui.FormatTask(t, *verbose))
		}
		fmt.Fprintln(c.stdout)
		fmt.Fprint(c.stdout, ui.FormatCounts(out.Counts))
		return nil
	default:
		return writeStructured(c.stdout, *format, out)
	}
}

// statsCommand prints completed and incomplete totals.
func (c *cli) statsCommand(args []string) error {
	fs := flag.NewFlagSet("tasks stats", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	format := fs.String("format", "text", "Output format (text, json, yaml)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	svc, tasks, err := c.loadForDisplay()
	if err != nil {
		return err
	}
	counts := svc.CountByStatus(tasks)

	if strings.ToLower(*format) == "text" {
		fmt.Fprint(c.stdout, ui.FormatCounts(counts))
		return nil
	}
	return writeStructured(c.stdout, *format, counts)
}

// loadForDisplay loads saved tasks, falling back to an empty list when the
// saved value is unreadable. The service logs that case as a warning.
func (c *cli) loadForDisplay() (*task.Service, []task.Task, error) {
	svc, _ := c.openService()
	tasks, err := svc.LoadInitialOrEmpty()
	if err != nil && !errors.Is(err, task.ErrMalformedStore) {
		return nil, nil, err
	}
	return svc, tasks, nil
}

func writeStructured(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (expected text, json or yaml)", format)
	}
}

// tuiCommand launches the interactive form.
func (c *cli) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tasks tui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	svc, _ := c.openService()
	return ui.RunTUI(ctx, c.cfg, svc)
}

// doctorCommand reports configuration and whether the saved tasks load.
func (c *cli) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("tasks doctor", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := c.stdout
	fmt.Fprintln(w, "Tasks Doctor")
	fmt.Fprintln(w, "============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintln(w, "Config:")
	for _, field := range c.cws.SortedFields() {
		fmt.Fprintf(w, "  %s = %s (%s)\n", field, configValue(c.cfg, field), c.cws.Sources[field])
	}
	if path := c.cws.GetConfigFile(); path != "" {
		fmt.Fprintf(w, "  Config file: %s\n", path)
	} else {
		fmt.Fprintln(w, "  Config file: (none)")
	}
	fmt.Fprintln(w)

	svc, file := c.openService()
	fmt.Fprintf(w, "Storage file: %s\n", file.Path())
	info, err := os.Stat(file.Path())
	switch {
	case err != nil && os.IsNotExist(err):
		fmt.Fprintln(w, "  ⚠️  Not found (will be created on first add)")
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		allOK = false
	default:
		keys, keysErr := file.Keys()
		if keysErr != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", keysErr)
			allOK = false
			break
		}
		fmt.Fprintln(w, "  ✅ OK")
		if *verbose {
			fmt.Fprintf(w, "  Keys: %s\n", strings.Join(keys, ", "))
		}
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintf(w, "Saved tasks (key %q):\n", task.StorageKey)
		tasks, loadErr := svc.LoadInitial()
		if loadErr != nil {
			fmt.Fprintf(w, "  ❌ %v\n", loadErr)
			allOK = false
		} else {
			counts := svc.CountByStatus(tasks)
			fmt.Fprintf(w, "  ✅ %d task(s): %d completed, %d incomplete\n", counts.Total(), counts.Completed, counts.Incomplete)
			if *verbose {
				for _, t := range tasks {
					fmt.Fprintf(w, "    - %s %s\n", t.ID, strings.TrimPrefix(ui.FormatTask(t, false), "  "))
				}
			}
		}
		fmt.Fprintln(w)
	}

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// initCommand writes an example project config file.
func (c *cli) initCommand(args []string) error {
	fs := flag.NewFlagSet("tasks init", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	force := fs.Bool("force", false, "Overwrite an existing config file")
	printOnly := fs.Bool("print", false, "Print the example config instead of writing it")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if *printOnly {
		fmt.Fprint(c.stdout, config.ExampleConfig())
		return nil
	}

	path := taskdir.ConfigPath(c.cfg.ProjectRoot)
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(taskdir.DirPath(c.cfg.ProjectRoot), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", taskdir.Dir, err)
	}
	if err := os.WriteFile(path, []byte(config.ExampleConfig()), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	fmt.Fprintf(c.stdout, "Wrote %s\n", path)
	return nil
}

// configValue renders the value of a tracked config field.
func configValue(cfg *config.Config, field string) string {
	switch field {
	case "data_file":
		return cfg.DataFile
	case "newest_first":
		return strconv.FormatBool(cfg.NewestFirst)
	case "log_level":
		return cfg.LogLevel
	case "log_format":
		return cfg.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(cfg.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(cfg.LogCaller)
	default:
		return ""
	}
}

func (c *cli) versionCommand() error {
	fmt.Fprintf(c.stdout, "tasks version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tasks - A small task list with validation and local storage")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasks [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add [title]   Create a task")
	fmt.Fprintln(w, "  ls            List tasks (default command)")
	fmt.Fprintln(w, "  stats         Show completed and incomplete totals")
	fmt.Fprintln(w, "  tui           Launch the interactive form")
	fmt.Fprintln(w, "  doctor        Check config and saved data")
	fmt.Fprintln(w, "  init          Write an example .tasks/tasks.toml")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -title string")
	fmt.Fprintln(w, "        Task title (required)")
	fmt.Fprintln(w, "  -description string")
	fmt.Fprintln(w, "        Task description")
	fmt.Fprintln(w, "  -done")
	fmt.Fprintln(w, "        Mark the task as completed")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format: text, json or yaml (default \"text\")")
	fmt.Fprintln(w, "  -oldest-first")
	fmt.Fprintln(w, "        List in creation order")
	fmt.Fprintln(w, "  -v    Show descriptions")
}
