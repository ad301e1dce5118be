package repl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"testafy/internal/formatting"
	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

type command struct {
	usage       string
	description string
	run         func(ctx context.Context, args []string) error
}

func (s *Session) register(name, usage, description string, run func(ctx context.Context, args []string) error) {
	s.commands[name] = &command{usage: usage, description: description, run: run}
	s.order = append(s.order, name)
}

func (s *Session) registerCommands() {
	s.register(":help", ":help", "List commands", s.help)
	s.register(":show", ":show", "Print the buffered script", s.show)
	s.register(":undo", ":undo", "Drop the last buffered line", s.undo)
	s.register(":clear", ":clear", "Empty the buffer", s.clear)
	s.register(":load", ":load FILE", "Append the lines of a script file", s.load)
	s.register(":check", ":check", "Check the buffered phrases without running them", s.check)
	s.register(":run", ":run", "Submit the buffer and wait for its results", s.runScript)
	s.register(":status", ":status [TEST_ID]", "Show the status of the last or given run", s.status)
	s.register(":results", ":results [TEST_ID]", "Print the TAP results of the last or given run", s.results)
	s.register(":ping", ":ping", "Check connectivity and credentials", s.ping)
	s.register(":exit", ":exit", "Leave the shell", func(context.Context, []string) error { return errExit })
	s.commands[":quit"] = s.commands[":exit"]
}

func (s *Session) client(script string) *testafy.Client {
	config := s.base
	config.Script = script
	return testafy.NewClient(config, s.clientOpts...)
}

func (s *Session) printer() *formatting.Printer {
	return formatting.NewPrinter(s.out, formatting.FormatTable)
}

func (s *Session) help(context.Context, []string) error {
	rows := make([][]interface{}, 0, len(s.order))
	for _, name := range s.order {
		c := s.commands[name]
		rows = append(rows, []interface{}{c.usage, c.description})
	}
	formatting.RenderTable(s.out, []string{"COMMAND", "DESCRIPTION"}, rows)
	return nil
}

func (s *Session) show(context.Context, []string) error {
	s.mu.Lock()
	lines := append([]string(nil), s.lines...)
	s.mu.Unlock()

	if len(lines) == 0 {
		fmt.Fprintln(s.out, formatting.EmptyMessage("Script is empty"))
		return nil
	}
	for i, line := range lines {
		fmt.Fprintf(s.out, "%3d  %s\n", i+1, line)
	}
	return nil
}

func (s *Session) undo(context.Context, []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 {
		return fmt.Errorf("script is empty")
	}
	s.lines = s.lines[:len(s.lines)-1]
	return nil
}

func (s *Session) clear(context.Context, []string) error {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) load(_ context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: :load FILE")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}

	var added int
	s.mu.Lock()
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			s.lines = append(s.lines, line)
			added++
		}
	}
	s.mu.Unlock()

	fmt.Fprintf(s.out, "Loaded %d lines from %s\n", added, args[0])
	return nil
}

// bufferedScript returns the buffer or an error when it is empty, so an
// empty buffer never silently runs the default script.
func (s *Session) bufferedScript() (string, error) {
	script := s.Script()
	if script == "" {
		return "", fmt.Errorf("script is empty; type some lines first")
	}
	return script, nil
}

func (s *Session) check(ctx context.Context, _ []string) error {
	script, err := s.bufferedScript()
	if err != nil {
		return err
	}
	message, err := s.client(script).PhraseCheck(ctx, script)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, message)
	return nil
}

func (s *Session) runScript(ctx context.Context, _ []string) error {
	script, err := s.bufferedScript()
	if err != nil {
		return err
	}

	client := s.client(script)
	run, err := client.Submit(ctx)
	if err != nil {
		return err
	}
	s.setLast(run)
	fmt.Fprintf(s.out, "Submitted test run %s\n", run.TestID)
	logging.Info("REPL", "Submitted test run %s", run.TestID)

	_, run, err = client.Wait(ctx, run, s.wait)
	s.setLast(run)
	if err != nil {
		return err
	}

	stats, run, err := client.Stats(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}
	tap, run, err := client.ResultsString(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to fetch results: %w", err)
	}
	s.setLast(run)

	view := formatting.NewRunView(run)
	view.Stats = &stats
	view.Results = tap
	return s.printer().PrintRun(view)
}

func (s *Session) status(ctx context.Context, args []string) error {
	run, err := s.target(args)
	if err != nil {
		return err
	}
	_, run, err = s.client("").PollStatus(ctx, run)
	if err != nil {
		return err
	}
	return s.printer().PrintRun(formatting.NewRunView(run))
}

func (s *Session) results(ctx context.Context, args []string) error {
	run, err := s.target(args)
	if err != nil {
		return err
	}
	tap, _, err := s.client("").ResultsString(ctx, run)
	if err != nil {
		return err
	}
	if tap == "" {
		fmt.Fprintln(s.out, formatting.EmptyMessage("No results for test run "+run.TestID))
		return nil
	}
	fmt.Fprintln(s.out, tap)
	return nil
}

func (s *Session) ping(ctx context.Context, _ []string) error {
	message, err := s.client("").Ping(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, message)
	return nil
}

// target picks the run named by args, or the last submitted one.
func (s *Session) target(args []string) (testafy.TestRun, error) {
	if len(args) > 0 {
		return testafy.RunFor(args[0]), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.last.Submitted() {
		return testafy.TestRun{}, fmt.Errorf("no test run yet; use ':run' or give a test id")
	}
	return s.last, nil
}

func (s *Session) setLast(run testafy.TestRun) {
	if !run.Submitted() {
		return
	}
	s.mu.Lock()
	s.last = run
	s.mu.Unlock()
}

// scriptFiles completes :load with script files in the working directory.
func scriptFiles(string) []string {
	matches, _ := filepath.Glob("*.pbehave")
	txt, _ := filepath.Glob("*.txt")
	return append(matches, txt...)
}
