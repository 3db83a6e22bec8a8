package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pal-lang/pal/pkg/evaluator"
	"github.com/pal-lang/pal/pkg/runtime"
)

// TraceSummary aggregates the events of one trace file.
type TraceSummary struct {
	RunID       string         `json:"runId"`
	TotalEvents int            `json:"totalEvents"`
	ByEvent     map[string]int `json:"byEvent"`
	Statements  int            `json:"statements"`
	Blocks      int            `json:"blocks"`
	MaxFrame    int            `json:"maxFrame"`
	Status      string         `json:"status,omitempty"`
	Errors      []string       `json:"errors,omitempty"`
	StartTime   string         `json:"startTime,omitempty"`
	EndTime     string         `json:"endTime,omitempty"`
	DurationMs  float64        `json:"durationMs"`
	Skipped     int            `json:"skipped,omitempty"`
}

func (a *app) cmdTrace(args []string) int {
	o, err := parseOptions(args)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %s\n", err)
		return runtime.ExitUsage
	}
	if len(o.files) != 1 {
		fmt.Fprintln(a.stderr, "usage: pal trace <file.jsonl> [--text]")
		return runtime.ExitUsage
	}

	f, err := os.Open(o.files[0])
	if err != nil {
		a.reportIO(err, o.files[0])
		return runtime.ExitUsage
	}
	defer f.Close()

	summary, err := computeTraceSummary(f)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %s\n", err)
		return runtime.ExitUsage
	}

	if o.text {
		printTraceSummaryText(a.stdout, summary)
		return runtime.ExitOK
	}
	b, _ := json.Marshal(summary)
	fmt.Fprintln(a.stdout, string(b))
	return runtime.ExitOK
}

func computeTraceSummary(r io.Reader) (*TraceSummary, error) {
	summary := &TraceSummary{ByEvent: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ev evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			summary.Skipped++
			continue
		}

		summary.TotalEvents++
		summary.ByEvent[string(ev.Event)]++
		if summary.RunID == "" {
			summary.RunID = ev.RunID
		}

		switch ev.Event {
		case evaluator.TraceRunStart:
			if summary.StartTime == "" {
				summary.StartTime = ev.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = ev.Timestamp
			summary.Status = ev.Data["status"]
		case evaluator.TraceStmtStart:
			summary.Statements++
		case evaluator.TraceBlockEnter:
			summary.Blocks++
			if frame, err := strconv.Atoi(ev.Data["frame"]); err == nil && frame > summary.MaxFrame {
				summary.MaxFrame = frame
			}
		case evaluator.TraceRuntimeError:
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("%s: %s [line %d]", ev.Data["code"], ev.Data["message"], ev.Line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}
	return summary, nil
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)

	names := make([]string, 0, len(s.ByEvent))
	for name := range s.ByEvent {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.ByEvent[name])
	}

	fmt.Fprintf(w, "Statements: %d\n", s.Statements)
	fmt.Fprintf(w, "Blocks: %d (deepest frame %d)\n", s.Blocks, s.MaxFrame)
	if s.Status != "" {
		fmt.Fprintf(w, "Status: %s\n", s.Status)
	}
	for _, e := range s.Errors {
		fmt.Fprintf(w, "Error: %s\n", e)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}
