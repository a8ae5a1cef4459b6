package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a
// lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	SelectOrganisation(ctx context.Context, args []string) error
	Whoami(ctx context.Context) error
	Today(ctx context.Context) error
	CheckIn(ctx context.Context) error
	CheckOut(ctx context.Context) error
	QRSession(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command and
// dispatches to methods on a. The loop exits on scanner EOF or when the
// user types "exit" or "quit".
//
// Errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	for {
		fmt.Fprintf(w, "sat %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: whoami, today, checkin, checkout, qr [resume], selectorg <id>, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "selectorg":
			_ = a.SelectOrganisation(ctx, args)

		case "whoami":
			_ = a.Whoami(ctx)

		case "today":
			_ = a.Today(ctx)

		case "checkin":
			_ = a.CheckIn(ctx)

		case "checkout":
			_ = a.CheckOut(ctx)

		case "qr":
			_ = a.QRSession(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
