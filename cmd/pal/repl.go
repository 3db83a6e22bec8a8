package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/pal-lang/pal/pkg/config"
	"github.com/pal-lang/pal/pkg/runtime"
)

const (
	promptMain = "> "
	promptCont = "... "
)

func (a *app) cmdRepl(args []string) int {
	_, cfg, logger, ok := a.setup(args)
	if !ok {
		return runtime.ExitUsage
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetMultiLineMode(true)

	histPath := config.ExpandHome(cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(histPath)
			if err != nil {
				logger.Warn("cannot save history", "path", histPath, "err", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	rt := runtime.New(
		runtime.WithOutput(a.stdout),
		runtime.WithConfig(cfg),
		runtime.WithLogger(logger),
		runtime.WithRunID("repl"),
	)
	session := rt.NewSession()

	for {
		code, ok := readUntilComplete(ln.Prompt, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(a.stdout)
			return runtime.ExitOK
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ".") {
			if a.replCommand(session, trimmed) {
				return runtime.ExitOK
			}
			continue
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		err := session.Exec(ctx, code)
		stop()
		if err != nil {
			logger.Debug("repl input failed", "err", err)
		}
	}
}

// replCommand handles a dot command and reports whether the session should end.
func (a *app) replCommand(session *runtime.Session, cmd string) (exit bool) {
	switch cmd {
	case ".exit", ".quit":
		return true
	case ".globals":
		for _, name := range session.Globals() {
			fmt.Fprintln(a.stdout, name)
		}
	case ".help":
		fmt.Fprintln(a.stdout, ".globals  list defined variables")
		fmt.Fprintln(a.stdout, ".exit     leave the session")
	default:
		fmt.Fprintf(a.stdout, "unknown command %s. Type .help for a list.\n", cmd)
	}
	return false
}

// readUntilComplete keeps prompting until the accumulated input parses
// without running off its end. It returns false at end of input.
func readUntilComplete(prompt func(string) (string, error), first, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := first
		if b.Len() > 0 {
			p = cont
		}
		line, err := prompt(p)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ".") || runtime.Complete(src) {
			return src, true
		}
	}
}
