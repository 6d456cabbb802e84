package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Rename(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Clear(ctx context.Context, args []string) error
	Send(ctx context.Context, args []string) error
	Reports(ctx context.Context, args []string) error
}

// runREPL reads commands line by line from reader until EOF or exit/quit.
// Handlers report their own errors; a failing command never ends the loop.
// The same reader is handed to interactive prompts, so no input is buffered
// twice.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sc %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, rename, delete, clear, send, reports, logout, exit")
			} else {
				printlnFn("Available commands: login, add, (l)ist, rename, delete, clear, exit")
			}
		case "login":
			cmdErr = a.Login(ctx, args)
		case "logout":
			cmdErr = a.Logout(ctx, args)
		case "add":
			cmdErr = a.Add(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "rename":
			cmdErr = a.Rename(ctx, args)
		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)
		case "clear":
			cmdErr = a.Clear(ctx, args)
		case "send":
			cmdErr = a.Send(ctx, args)
		case "reports":
			cmdErr = a.Reports(ctx, args)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
