// Package repl implements an interactive shell for writing behavioral test
// scripts.
//
// Plain input lines are collected into a script buffer. Lines starting with
// a colon are commands: ":check" asks the service whether every phrase is
// recognized, ":run" submits the buffer and waits for the results, ":help"
// lists the rest.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"

	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

// errExit is returned by the exit command to end Run.
var errExit = errors.New("exit")

// Session holds the script buffer and the last submitted run.
type Session struct {
	base       testafy.TestConfig
	wait       testafy.WaitOptions
	clientOpts []testafy.Option
	out        io.Writer

	mu    sync.Mutex
	lines []string
	last  testafy.TestRun

	commands map[string]*command
	order    []string
}

// New creates a session. base supplies the endpoint and credentials; its
// script is ignored in favour of the buffer.
func New(base testafy.TestConfig, wait testafy.WaitOptions, out io.Writer, opts ...testafy.Option) *Session {
	s := &Session{
		base:       base,
		wait:       wait,
		clientOpts: opts,
		out:        out,
		commands:   make(map[string]*command),
	}
	s.registerCommands()
	return s
}

// Script returns the buffered lines joined by newlines.
func (s *Session) Script() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.lines, "\n")
}

// Prompt shows how many lines are buffered.
func (s *Session) Prompt() string {
	s.mu.Lock()
	n := len(s.lines)
	s.mu.Unlock()

	if n == 0 {
		return "testafy » "
	}
	return fmt.Sprintf("testafy [%d] » ", n)
}

// Execute handles one line of input. It returns errExit when the user asks
// to leave.
func (s *Session) Execute(ctx context.Context, input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, ":") {
		s.mu.Lock()
		s.lines = append(s.lines, trimmed)
		s.mu.Unlock()
		return nil
	}

	parts := strings.Fields(trimmed)
	name := strings.ToLower(parts[0])
	if name == ":?" {
		name = ":help"
	}
	cmd, ok := s.commands[name]
	if !ok {
		return fmt.Errorf("unknown command: %s. Type ':help' for available commands", parts[0])
	}
	return cmd.run(ctx, parts[1:])
}

// Run reads lines until EOF, the exit command, or ctx is done. Command
// history is kept in historyFile when it is set.
func (s *Session) Run(ctx context.Context, historyFile string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              s.Prompt(),
		HistoryFile:         historyFile,
		AutoComplete:        s.completer(),
		InterruptPrompt:     "^C",
		EOFPrompt:           ":exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	stop := context.AfterFunc(ctx, func() { _ = rl.Close() })
	defer stop()

	fmt.Fprintln(s.out, "Type script lines, then ':check' or ':run'. ':help' lists commands.")

	for {
		rl.SetPrompt(s.Prompt())
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("readline error: %w", err)
		}

		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			logging.Debug("REPL", "Command %q failed: %v", strings.TrimSpace(line), err)
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *Session) completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(s.order))
	for _, name := range s.order {
		if name == ":load" {
			items = append(items, readline.PcItem(name, readline.PcItemDynamic(scriptFiles)))
			continue
		}
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}
