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
	Login(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Map(ctx context.Context) error
	Show(ctx context.Context) error
	Sync(ctx context.Context) error
	Retry(ctx context.Context) error
	Status(ctx context.Context) error
	ClearCache(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the storymap CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — authenticate against the story API
//	  - list | map | show | status | clear-cache — read-only, work offline
//	  - exit | quit    — leave the program
//
//	Logged in, additionally:
//	  - add            — queue a new story (drains when online)
//	  - sync           — drain the pending queue now
//	  - retry          — reset failed submissions and drain again
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("storymap %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, map, show, sync, retry, status, clear-cache, exit")
			} else {
				printlnFn("Available commands: login, (l)ist, map, show, status, clear-cache, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "add":
			_ = a.Add(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "map":
			_ = a.Map(ctx)

		case "show":
			_ = a.Show(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "retry":
			_ = a.Retry(ctx)

		case "status":
			_ = a.Status(ctx)

		case "clear-cache":
			_ = a.ClearCache(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
