package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface is the command surface runREPL drives; App satisfies it.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	List(ctx context.Context, author string) error
	Add(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Backfill(ctx context.Context, country string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit". The same
// reader serves the commands' own prompts, so no input is lost between them.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, me, list [author], add, delete <id>,
//	               backfill [country], logout, exit
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sk%s> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, (l)ist [author], add, delete <id>, backfill [country], logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "me":
			err = a.Me(ctx)

		case "l", "list":
			err = a.List(ctx, strings.Join(args, " "))

		case "add":
			err = a.Add(ctx)

		case "delete":
			if len(args) != 1 {
				printlnFn("Usage: delete <id>")
				continue
			}
			err = a.Delete(ctx, args[0])

		case "backfill":
			err = a.Backfill(ctx, strings.Join(args, " "))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("error:", err)
		}
	}
}

// Run starts the REPL on stdin and blocks until the user leaves.
func (a *App) Run(ctx context.Context) {
	printlnFn("storykeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}
