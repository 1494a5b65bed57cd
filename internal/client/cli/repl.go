package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a stub.
type execIface interface {
	isUnlocked() bool
	Status(ctx context.Context) error
	Login(ctx context.Context) error
	Setup(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context, category string) error
	Show(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Backup(ctx context.Context) error
}

const (
	helpLocked   = "Available commands: status, login, setup, unlock, help, exit"
	helpUnlocked = "Available commands: status, add, (l)ist [category], show <id>, edit <id>, delete <id>, backup, lock, login, help, exit"
)

// runREPL reads one command per line from r and dispatches it to a. It
// returns on EOF, on "exit" / "quit", or when ctx is done. Command errors
// are reported by the commands themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "passvault %s> ", statusFn())

		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = parts[1]
		}

		switch cmd {
		case "help":
			if a.isUnlocked() {
				fmt.Fprintln(w, helpUnlocked)
			} else {
				fmt.Fprintln(w, helpLocked)
			}
		case "status":
			_ = a.Status(ctx)
		case "login":
			_ = a.Login(ctx)
		case "setup":
			_ = a.Setup(ctx)
		case "unlock":
			_ = a.Unlock(ctx)
		case "lock":
			_ = a.Lock(ctx)
		case "add":
			_ = a.Add(ctx)
		case "l", "list":
			_ = a.List(ctx, arg)
		case "show":
			_ = a.Show(ctx, arg)
		case "edit":
			_ = a.Edit(ctx, arg)
		case "delete", "rm":
			_ = a.Delete(ctx, arg)
		case "backup":
			_ = a.Backup(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w)
			return
		}
	}
}
