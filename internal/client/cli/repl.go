package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Whoami(ctx context.Context) error
	Status(ctx context.Context) error
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Logout(ctx context.Context) error
	New(ctx context.Context) error
	Save(ctx context.Context) error
	Open(ctx context.Context, id string) error
	Duplicate(ctx context.Context, id string) error
	Rename(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) error
	Share(ctx context.Context) error
	Fork(ctx context.Context, key string) error
	Edit(ctx context.Context) error
	Show(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: whoami, status, login, signup, new, edit, show, share, fork <key>, exit"
	helpLoggedIn  = "Available commands: whoami, status, new, save, open <id>, duplicate <id>, rename <id>, delete <id>, (l)ist, edit, show, share, fork <key>, logout, exit"
)

// argCommands take exactly one argument.
var argCommands = map[string]string{
	"open":      "open <id>",
	"duplicate": "duplicate <id>",
	"rename":    "rename <id>",
	"delete":    "delete <id>",
	"fork":      "fork <key>",
}

// runREPL starts a simple read–eval–print loop for the sketchkeeper CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Commands that need an id or a key print
// their usage when it is missing. The loop exits on EOF or when the user
// types "exit" or "quit".
//
// The prompter reads its answers from the same reader, so the REPL never
// buffers input ahead of the current line.
//
// Any errors returned by command handlers are ignored here; handlers
// report their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sk> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if usage, ok := argCommands[cmd]; ok && len(args) != 1 {
			printlnFn("Usage:", usage)
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "whoami":
			_ = a.Whoami(ctx)

		case "status":
			_ = a.Status(ctx)

		case "login":
			_ = a.Login(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "new":
			_ = a.New(ctx)

		case "save":
			_ = a.Save(ctx)

		case "open":
			_ = a.Open(ctx, args[0])

		case "duplicate":
			_ = a.Duplicate(ctx, args[0])

		case "rename":
			_ = a.Rename(ctx, args[0])

		case "delete":
			_ = a.Delete(ctx, args[0])

		case "l", "list":
			_ = a.List(ctx)

		case "share":
			_ = a.Share(ctx)

		case "fork":
			_ = a.Fork(ctx, args[0])

		case "edit":
			_ = a.Edit(ctx)

		case "show":
			_ = a.Show(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
