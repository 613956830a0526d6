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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Onboard(ctx context.Context) error
	LogWork(ctx context.Context) error
	Mine(ctx context.Context) error
	Recent(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, args []string) error
	Uploads(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the worklogger CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
//	Not logged in:
//	  help, register, login, status, exit | quit
//
//	Logged in:
//	  help, onboard, log, mine, recent, delete <id>,
//	  export [all|mine|<category>] [csv|xlsx] [--upload], uploads,
//	  status, logout, exit | quit
//
// Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("wl> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if needsLogin(cmd) && !a.isLoggedIn() {
			printlnFn("Please login first")
			continue
		}

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: log, mine, recent, delete <id>, export [all|mine|<category>] [csv|xlsx] [--upload], uploads, onboard, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, status, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "onboard":
			err = a.Onboard(ctx)

		case "log":
			err = a.LogWork(ctx)

		case "mine":
			err = a.Mine(ctx)

		case "recent":
			err = a.Recent(ctx)

		case "delete", "rm":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, args[0])

		case "export":
			err = a.Export(ctx, args)

		case "uploads":
			err = a.Uploads(ctx)

		case "status":
			err = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func needsLogin(cmd string) bool {
	switch cmd {
	case "logout", "onboard", "log", "mine", "recent", "delete", "rm", "export", "uploads":
		return true
	}
	return false
}
