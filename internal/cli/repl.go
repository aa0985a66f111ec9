package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The real App
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Lock(ctx context.Context) error
	Logout(ctx context.Context) error
	Switch(ctx context.Context) error
	Users(ctx context.Context) error

	Reports(ctx context.Context) error
	NewReport(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	TripTypes(ctx context.Context, args []string) error

	Add(ctx context.Context, args []string) error
	Entries(ctx context.Context) error
	Collapse(ctx context.Context, args []string, collapsed bool) error
	Move(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Details(ctx context.Context) error
	Summary(ctx context.Context) error
	Export(ctx context.Context, args []string) error
}

const (
	helpSignedOut = "Available commands: register, login, users, help, exit"
	helpSignedIn  = "Available commands: reports, newreport, open <id>, delete <id>, trips [set a,b,...],\n" +
		"  add <issue|correction|orderParts|docRequest|followUp|commentary|internal>, entries,\n" +
		"  collapse [id], expand [id], move <id> up|down, remove <id>, details, summary, export [file],\n" +
		"  users, lock, logout, switch, help, exit"
)

// lineScanner is the part of *bufio.Scanner the REPL needs.
type lineScanner interface {
	Scan() bool
	Text() string
}

// readerLines scans lines from the same *bufio.Reader that command prompts
// read from, so no input is buffered away from them.
type readerLines struct {
	r    *bufio.Reader
	line string
}

func (l *readerLines) Scan() bool {
	s, err := l.r.ReadString('\n')
	if err != nil && s == "" {
		return false
	}
	l.line = strings.TrimRight(s, "\r\n")
	return true
}

func (l *readerLines) Text() string { return l.line }

// runREPL reads commands from scanner and dispatches them to a until input
// ends or the user types "exit" or "quit".
//
// Handlers print their own errors, so the errors they return are ignored
// here and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner lineScanner) {
	for {
		printlnFn(fmt.Sprintf("fsr %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "lock":
			_ = a.Lock(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "switch":
			_ = a.Switch(ctx)
		case "users":
			_ = a.Users(ctx)

		case "reports", "l":
			_ = a.Reports(ctx)
		case "newreport":
			_ = a.NewReport(ctx)
		case "open":
			_ = a.Open(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)
		case "trips":
			_ = a.TripTypes(ctx, args)

		case "add":
			_ = a.Add(ctx, args)
		case "entries":
			_ = a.Entries(ctx)
		case "collapse":
			_ = a.Collapse(ctx, args, true)
		case "expand":
			_ = a.Collapse(ctx, args, false)
		case "move":
			_ = a.Move(ctx, args)
		case "remove":
			_ = a.Remove(ctx, args)
		case "details":
			_ = a.Details(ctx)
		case "summary":
			_ = a.Summary(ctx)
		case "export":
			_ = a.Export(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
