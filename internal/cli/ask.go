// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Assistant questions from a plain terminal.
//
// USABILITY: Markdown rendering and history for better CLI experience
//
// Handles the "tradedeck ask" command. With a question argument it runs
// one-shot: submit, drain the task stream, print the answer. Without one
// it starts an interactive REPL with input history.
//
// Command: ask
// Aliases: chat
//
// Examples:
//   tradedeck ask "What is BTC funding doing?"   One-shot question
//   tradedeck ask                                Interactive REPL
//   tradedeck ask --mode analysis "..."          Analysis mode
//   tradedeck ask --lang zh "..."                Answer in Chinese
//
// Interactive Commands (during REPL):
//   /help, /h    Show available commands
//   /new, /n     Start a fresh conversation
//   /quit, /q    Exit
//   Ctrl+C       Cancel current answer
//   Ctrl+D       Exit

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/jeranaias/tradedeck/internal/api"
	"github.com/jeranaias/tradedeck/internal/config"
	"github.com/jeranaias/tradedeck/internal/stream"
	"github.com/jeranaias/tradedeck/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	activityTagStyle = lipgloss.NewStyle().
				Foreground(styles.Amber)

	pausedStyle = lipgloss.NewStyle().
			Foreground(styles.Amber).
			Bold(true)
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// AskCLI provides input history and line editing for the interactive REPL.
// USABILITY: Supports arrow keys for history navigation and line editing.
type AskCLI struct {
	line        *liner.State
	historyFile string
}

// NewAskCLI creates an AskCLI with history persisted under the state dir.
func NewAskCLI(stateDir string) *AskCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	cli := &AskCLI{
		line:        line,
		historyFile: filepath.Join(stateDir, "ask_history"),
	}
	cli.loadHistory()
	return cli
}

func (c *AskCLI) loadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *AskCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

func (c *AskCLI) saveHistory() {
	// 0600: the history may contain account details.
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *AskCLI) Close() {
	c.saveHistory()
	c.line.Close()
}

// =============================================================================
// SESSION STATE
// =============================================================================

// askSession holds what one ask invocation needs across questions.
type askSession struct {
	cfg    *config.Config
	client *api.Client

	conversationID string
	mode           string
	lang           string

	quiet   bool
	verbose bool

	// cancel stops the in-flight answer. Set only while one runs.
	cancel context.CancelFunc
}

func newAskSession(args Args) (*askSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := newBackendClient(cfg)
	if err != nil {
		return nil, err
	}
	return &askSession{
		cfg:     cfg,
		client:  client,
		mode:    args.Mode,
		lang:    args.Lang,
		quiet:   args.Quiet,
		verbose: args.Verbose,
	}, nil
}

// =============================================================================
// ASK HANDLER
// =============================================================================

// HandleAskCommand handles the "ask" command.
func HandleAskCommand(args Args) error {
	session, err := newAskSession(args)
	if err != nil {
		return err
	}

	if strings.TrimSpace(args.Query) != "" {
		return session.runQuestion(context.Background(), args.Query)
	}
	return session.runREPL()
}

// runREPL is the interactive loop: read a question, stream the answer,
// repeat. The conversation identity carries across questions so the
// backend keeps context.
func (s *askSession) runREPL() error {
	if err := RequiresTTY("run the ask REPL"); err != nil {
		return err
	}

	stateDir, err := s.cfg.ResolveStateDir()
	if err != nil {
		return err
	}
	input := NewAskCLI(stateDir)
	defer input.Close()

	if !s.quiet {
		printAskWelcome(s)
	}

	// First Ctrl+C cancels the in-flight answer instead of killing the
	// process; liner handles Ctrl+C at the prompt itself.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			if s.cancel != nil {
				s.cancel()
			}
		}
	}()

	for {
		line, err := input.ReadInput(promptStyle.Render("tradedeck> "))
		if err != nil {
			// liner.ErrPromptAborted (Ctrl+C) and EOF (Ctrl+D) both exit.
			fmt.Println()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if !s.handleSlashCommand(line) {
				return nil
			}
			continue
		}
		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			return nil
		}

		if err := s.runQuestion(context.Background(), line); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		}
	}
}

// handleSlashCommand processes REPL commands. Returns false to exit.
func (s *askSession) handleSlashCommand(cmd string) bool {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/help", "/h", "/?":
		printAskHelp()
		return true
	case "/new", "/n":
		s.conversationID = ""
		fmt.Println(infoStyle.Render("[New conversation]"))
		return true
	case "/quit", "/q", "/exit":
		return false
	default:
		fmt.Fprintf(os.Stderr, "%s unknown command: %s (type /help)\n",
			WarningStyle.Render("[?]"), cmd)
		return true
	}
}

// =============================================================================
// QUESTION PROCESSING
// =============================================================================

// runQuestion submits one question and drains its task stream to stdout.
func (s *askSession) runQuestion(parent context.Context, question string) error {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	defer func() {
		s.cancel = nil
		cancel()
	}()

	result, err := s.client.SubmitChat(ctx, api.ChatRequest{
		Message:        question,
		ConversationID: s.conversationID,
		Mode:           s.mode,
		Lang:           s.lang,
	})
	if err != nil {
		return WrapError(err, "submit question")
	}

	var consumer stream.Consumer
	if result.Stream != nil {
		consumer = stream.NewPusher(result.Stream, nil)
	} else {
		s.conversationID = result.Handle.ConversationID
		consumer = stream.NewPoller(s.client, result.Handle.TaskID, stream.PollerConfig{
			Interval: s.cfg.Stream.PollInterval(),
			MaxPolls: s.cfg.Stream.PollBudget,
		}, nil)
	}

	// USABILITY: Render markdown on TTY for better formatting. On a
	// TTY the answer is collected and rendered once at the end; piped
	// output streams plain text as it arrives.
	useMarkdown := IsStdoutTTY()

	fmt.Println()

	var printed int
	outcome := consumer.Run(ctx, stream.SinkFuncs{
		Snapshot: func(text string) {
			if useMarkdown {
				return
			}
			// Snapshots are monotonic, so the delta is safe to print.
			if len(text) > printed {
				fmt.Print(text[printed:])
				printed = len(text)
			}
		},
		Activity: func(entry stream.Activity) {
			if s.quiet || !s.verbose {
				return
			}
			fmt.Fprintf(os.Stderr, "%s %s\n",
				activityTagStyle.Render("["+string(entry.Kind)+"]"),
				oneLine(entry.Text))
		},
	})

	return s.finishQuestion(outcome, useMarkdown, printed)
}

// finishQuestion prints the terminal state of one answer.
func (s *askSession) finishQuestion(outcome stream.Outcome, useMarkdown bool, printed int) error {
	switch outcome.Kind {
	case stream.OutcomeDone:
		if outcome.ConversationID != "" {
			s.conversationID = outcome.ConversationID
		}
		printAnswer(outcome.Text, useMarkdown, printed)
		return nil

	case stream.OutcomeInterrupted:
		printAnswer(outcome.Text, useMarkdown, printed)
		fmt.Fprintf(os.Stderr, "%s round %d; ask again to continue\n",
			pausedStyle.Render("[Paused]"), outcome.Round)
		return nil

	case stream.OutcomeError:
		return fmt.Errorf("assistant error: %s", outcome.Text)

	default: // flushed
		printAnswer(outcome.Text, useMarkdown, printed)
		if outcome.Truncated {
			fmt.Fprintf(os.Stderr, "%s answer truncated by poll budget\n",
				WarningStyle.Render("[Warning]"))
		}
		return outcome.Err
	}
}

// printAnswer emits whatever part of the final text has not already been
// streamed, through glamour when on a TTY.
func printAnswer(text string, useMarkdown bool, printed int) {
	if useMarkdown {
		fmt.Println(renderMarkdownAnswer(text))
		return
	}
	if len(text) > printed {
		fmt.Print(text[printed:])
	}
	fmt.Println()
}

// renderMarkdownAnswer renders an answer for TTY display, falling back
// to the raw text when glamour cannot.
func renderMarkdownAnswer(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// oneLine flattens activity text for single-line display.
func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// =============================================================================
// DISPLAY
// =============================================================================

// printAskWelcome prints the REPL banner.
func printAskWelcome(s *askSession) {
	fmt.Println()
	fmt.Println(welcomeStyle.Render("tradedeck assistant"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	fmt.Printf("%s %s\n",
		infoStyle.Render("Backend:"),
		ValueStyle.Render(s.client.BaseURL()))
	if s.mode != "" {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Mode:"),
			ValueStyle.Render(s.mode))
	}
	fmt.Println()
	fmt.Println(infoStyle.Render("Type your question and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

// printAskHelp prints REPL commands.
func printAskHelp() {
	fmt.Println()
	fmt.Println(SectionStyle.Render("Available Commands"))

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/help, /h", "Show this help"},
		{"/new, /n", "Start a fresh conversation"},
		{"/quit, /q", "Exit"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			ValueStyle.Render(fmt.Sprintf("%-12s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current answer, Ctrl+D exits"))
	fmt.Println()
}
