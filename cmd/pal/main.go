// Command pal is the Pal interpreter CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pal-lang/pal/pkg/config"
	"github.com/pal-lang/pal/pkg/diagnostics"
	"github.com/pal-lang/pal/pkg/evaluator"
	"github.com/pal-lang/pal/pkg/formatter"
	"github.com/pal-lang/pal/pkg/help"
	"github.com/pal-lang/pal/pkg/runtime"
)

const usage = `usage: pal <command> [options]

commands:
  run <file> [-v|--verbose] [--trace <file.jsonl>]   run a program ("-" reads stdin)
  check <files...> [--json]                          report errors and lint warnings
  fmt <file> [--write]                               print the program in canonical form
  repl                                               start an interactive session
  trace <file.jsonl> [--text]                        summarize a trace file
  help [topic] [--keywords]                          show usage or a language topic

common options:
  --config <path>         configuration file (default: .pal.yaml, ~/.pal/config.yaml)
  --log-level <level>     debug, info, warn or error
  --max-iterations <n>    loop iteration budget, 0 = unlimited
  --time-ms <n>           wall-clock budget in milliseconds, 0 = unlimited
`

// app carries the process streams so commands can be driven from tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.dispatch(os.Args[1:]))
}

func (a *app) dispatch(args []string) int {
	if len(args) < 1 {
		fmt.Fprint(a.stderr, usage)
		return runtime.ExitUsage
	}

	cmd := args[0]
	switch cmd {
	case "run":
		return a.cmdRun(args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "repl":
		return a.cmdRepl(args[1:])
	case "trace":
		return a.cmdTrace(args[1:])
	case "help", "--help", "-h":
		return a.cmdHelp(args[1:])
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", cmd)
		return runtime.ExitUsage
	}
}

// options holds the flags shared by every command.
type options struct {
	files         []string
	verbose       bool
	write         bool
	json          bool
	text          bool
	tracePath     string
	configPath    string
	logLevel      string
	maxIterations string
	timeMs        string
}

func parseOptions(args []string) (*options, error) {
	o := &options{}
	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		*i++
		return args[*i], nil
	}

	stdin := false
	for i := 0; i < len(args); i++ {
		var err error
		switch arg := args[i]; arg {
		case "-v", "--verbose":
			o.verbose = true
		case "--write":
			o.write = true
		case "--json":
			o.json = true
		case "--text":
			o.text = true
		case "--trace":
			o.tracePath, err = value(&i, arg)
		case "--config":
			o.configPath, err = value(&i, arg)
		case "--log-level":
			o.logLevel, err = value(&i, arg)
		case "--max-iterations":
			o.maxIterations, err = value(&i, arg)
		case "--time-ms":
			o.timeMs, err = value(&i, arg)
		default:
			if arg != "-" && strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			if arg == "-" {
				if stdin {
					return nil, fmt.Errorf("stdin (-) given more than once")
				}
				stdin = true
			}
			o.files = append(o.files, arg)
		}
		if err != nil {
			return nil, err
		}
	}
	return o, nil
}

// loadConfig resolves the configuration file and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(cwd, o.configPath)
	if err != nil {
		return nil, err
	}
	if o.verbose {
		cfg.Verbose = true
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.maxIterations != "" {
		n, err := strconv.ParseInt(o.maxIterations, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--max-iterations: %w", err)
		}
		cfg.MaxIterations = n
	}
	if o.timeMs != "" {
		n, err := strconv.ParseInt(o.timeMs, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("--time-ms: %w", err)
		}
		cfg.TimeMs = n
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup parses flags and loads configuration, reporting failures on stderr.
func (a *app) setup(args []string) (*options, *config.Config, *slog.Logger, bool) {
	o, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %s\n", err)
		return nil, nil, nil, false
	}
	cfg, err := o.loadConfig()
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %s\n", err)
		return nil, nil, nil, false
	}
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	return o, cfg, logger, true
}

func (a *app) cmdRun(args []string) int {
	o, cfg, logger, ok := a.setup(args)
	if !ok {
		return runtime.ExitUsage
	}
	if len(o.files) != 1 {
		fmt.Fprintln(a.stderr, "usage: pal run <file> [-v|--verbose] [--trace <file.jsonl>]")
		return runtime.ExitUsage
	}

	source, filename, err := a.readSource(o.files[0])
	if err != nil {
		a.reportIO(err, o.files[0])
		return runtime.ExitUsage
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	opts := []runtime.Option{
		runtime.WithOutput(a.stdout),
		runtime.WithConfig(cfg),
		runtime.WithLogger(logger),
		runtime.WithRunID(runID),
	}

	if o.tracePath != "" {
		f, err := os.Create(o.tracePath)
		if err != nil {
			fmt.Fprintf(a.stderr, "error: cannot create trace file: %s\n", err)
			return runtime.ExitUsage
		}
		defer f.Close()
		opts = append(opts, runtime.WithTrace(traceWriter(f, logger)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt := runtime.New(opts...)
	err = rt.Run(ctx, source, filename)
	code := runtime.ExitCode(err)
	if code == runtime.ExitUsage {
		fmt.Fprintf(a.stderr, "error: %s\n", err)
	}
	return code
}

// traceWriter encodes each event as one JSON line.
func traceWriter(w io.Writer, logger *slog.Logger) func(evaluator.TraceEvent) {
	enc := json.NewEncoder(w)
	var once sync.Once
	return func(ev evaluator.TraceEvent) {
		if err := enc.Encode(ev); err != nil {
			once.Do(func() { logger.Error("trace write failed", "err", err) })
		}
	}
}

// checkResult is the outcome for one file of a check run.
type checkResult struct {
	file  string
	diags []diagnostics.Diagnostic
	err   error
}

func (a *app) cmdCheck(args []string) int {
	o, _, logger, ok := a.setup(args)
	if !ok {
		return runtime.ExitUsage
	}
	if len(o.files) == 0 {
		fmt.Fprintln(a.stderr, "usage: pal check <files...> [--json]")
		return runtime.ExitUsage
	}

	results := make([]checkResult, len(o.files))
	rt := runtime.New(runtime.WithLogger(logger))

	var g errgroup.Group
	g.SetLimit(8)
	for i, file := range o.files {
		g.Go(func() error {
			results[i].file = file
			source, filename, err := a.readSource(file)
			if err != nil {
				results[i].err = err
				return err
			}
			results[i].diags = rt.Check(source, filename)
			return nil
		})
	}
	ioErr := g.Wait()

	failed := false
	for _, r := range results {
		if r.err != nil {
			a.reportIO(r.err, r.file)
			continue
		}
		for _, d := range r.diags {
			if !d.IsWarning() {
				failed = true
			}
		}
		if o.json {
			fmt.Fprintf(a.stdout, "%s\t%s\n", r.file, diagnostics.FormatDiagnostics(orEmpty(r.diags), true))
			continue
		}
		for _, d := range r.diags {
			fmt.Fprintf(a.stdout, "%s: %s\n", r.file, d.String())
		}
	}

	switch {
	case ioErr != nil:
		return runtime.ExitUsage
	case failed:
		return runtime.ExitStatic
	default:
		return runtime.ExitOK
	}
}

func orEmpty(diags []diagnostics.Diagnostic) []diagnostics.Diagnostic {
	if diags == nil {
		return []diagnostics.Diagnostic{}
	}
	return diags
}

func (a *app) cmdFmt(args []string) int {
	o, _, logger, ok := a.setup(args)
	if !ok {
		return runtime.ExitUsage
	}
	if len(o.files) != 1 {
		fmt.Fprintln(a.stderr, "usage: pal fmt <file> [--write]")
		return runtime.ExitUsage
	}
	file := o.files[0]

	source, filename, err := a.readSource(file)
	if err != nil {
		a.reportIO(err, file)
		return runtime.ExitUsage
	}

	rt := runtime.New(runtime.WithLogger(logger))
	formatted, err := rt.Format(source, filename)
	if err != nil {
		if derr, ok := err.(*runtime.DiagnosticError); ok {
			fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(derr.Diagnostics, false))
			return runtime.ExitStatic
		}
		fmt.Fprintf(a.stderr, "error: %s\n", err)
		return runtime.ExitUsage
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if o.write && file != "-" {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			fmt.Fprintf(a.stderr, "error writing file: %s\n", err)
			return runtime.ExitUsage
		}
		return runtime.ExitOK
	}
	fmt.Fprint(a.stdout, formatted)
	return runtime.ExitOK
}

func (a *app) cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		switch {
		case arg == "--keywords":
			fmt.Fprint(a.stdout, help.KeywordIndex())
			return runtime.ExitOK
		case !strings.HasPrefix(arg, "-"):
			topic = arg
		}
	}

	if topic == "" {
		fmt.Fprint(a.stdout, usage)
		fmt.Fprintln(a.stdout)
		fmt.Fprint(a.stdout, help.QUICKREF)
		return runtime.ExitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return runtime.ExitUsage
	}
	fmt.Fprint(a.stdout, content)
	return runtime.ExitOK
}

// readSource reads a program file, or stdin when file is "-".
func (a *app) readSource(file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", err
	}
	return string(data), file, nil
}

func (a *app) reportIO(err error, file string) {
	diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 0, "")
	fmt.Fprintf(a.stderr, "%s: %s (%v)\n", diag.Code, diag.Message, err)
}
