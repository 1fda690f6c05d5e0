// Command antkeeper is the line-oriented front end for the workflow engine:
// it runs a single handler against the command line, starts the combined
// HTTP server, or scaffolds a starter handlers file for a new project.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"goa.design/clue/log"

	"github.com/antkeeper/antkeeper/internal/apperr"
	"github.com/antkeeper/antkeeper/internal/channel"
	"github.com/antkeeper/antkeeper/internal/handlers"
	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/runner"
	"github.com/antkeeper/antkeeper/internal/server"
	"github.com/antkeeper/antkeeper/internal/state"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		runCmd(os.Args[2:])
	case "server":
		serverCmd(os.Args[2:])
	case "init":
		initCmd(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: antkeeper <run|server|init> [flags]")
}

func newRegistry() *registry.Registry {
	reg := registry.New()
	handlers.Register(reg)
	return reg
}

// stateFlags collects repeated --initial-state key=value flags into a
// state.State of string values.
type stateFlags struct {
	s state.State
}

func (f *stateFlags) String() string { return "" }

func (f *stateFlags) Set(pair string) error {
	key, val, ok := strings.Cut(pair, "=")
	if !ok {
		return fmt.Errorf("invalid --initial-state value (expected key=val): %s", pair)
	}
	if f.s == nil {
		f.s = state.State{}
	}
	f.s[key] = val
	return nil
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	modelF := fs.String("model", "", "model identifier to set on initial_state[\"model\"]")
	var initF stateFlags
	fs.Var(&initF, "initial-state", "key=value, repeatable")
	_ = fs.Parse(args)

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "Error: workflow name is required")
		os.Exit(1)
	}
	workflowName := rest[0]
	promptFiles := rest[1:]

	initial := initF.s
	if initial == nil {
		initial = state.State{}
	}

	prompt, err := readPrompt(promptFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if prompt != "" {
		initial["prompt"] = prompt
	}
	if *modelF != "" {
		initial["model"] = *modelF
	}

	reg := newRegistry()
	ch := channel.NewLine(workflowName, initial)

	r, err := runner.New(context.Background(), reg, ch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	defer r.Close()

	final, err := r.Run(reg)
	if err != nil {
		var wf *apperr.WorkflowFailed
		if errors.As(err, &wf) {
			fmt.Fprintln(os.Stderr, wf.Error())
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(2)
	}
	fmt.Println(final)
}

// readPrompt concatenates the contents of files (no separator) if any are
// given, or reads standard input if none are given and it is not a
// terminal.
func readPrompt(files []string) (string, error) {
	if len(files) > 0 {
		var b strings.Builder
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return "", fmt.Errorf("read prompt file %s: %w", f, err)
			}
			b.Write(data)
		}
		return b.String(), nil
	}
	if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return "", nil
}

func serverCmd(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	hostF := fs.String("host", "127.0.0.1", "host address to bind")
	portF := fs.Int("port", 8000, "port to bind")
	chatURLF := fs.String("chat-api-url", "https://slack.com/api", "outbound chat API base URL")
	dbgF := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
	}

	reg := newRegistry()
	addr := fmt.Sprintf("%s:%d", *hostF, *portF)
	srv := server.New(addr, reg, *chatURLF)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "server exited with error"})
		os.Exit(1)
	}
}

func initCmd(args []string) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	target := filepath.Join(abs, "handlers.go.example")
	if _, err := os.Stat(target); err == nil {
		fmt.Fprintf(os.Stderr, "Error: handlers.go.example already exists in %s\n", abs)
		os.Exit(1)
	}
	if err := os.WriteFile(target, []byte(handlers.StarterTemplate), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created handlers.go.example in %s\n", abs)
	fmt.Println()
	fmt.Println("Rename it to handlers.go, add it to your own module, and:")
	fmt.Println()
	fmt.Println("Run your first workflow:")
	fmt.Println("  antkeeper run healthcheck")
	fmt.Println()
	fmt.Println("Start the API server:")
	fmt.Println("  antkeeper server")
}
