package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it.
type execIface interface {
	Add(ctx context.Context, ref, file string) error
	List(ctx context.Context) error
	Remove(ctx context.Context, id string) error
	Progress(ctx context.Context) error
	Wait(ctx context.Context, id string) error
	Save(ctx context.Context, id, path string) error
}

// replApp adapts App to execIface.
type replApp struct{ *App }

func (r replApp) Add(ctx context.Context, ref, file string) error {
	f, err := r.App.Add(ctx, ref, file)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "added %s (container %s)\n", f.ID, f.ContainerID)
	return nil
}

// runREPL reads commands from scanner until EOF, "exit" or "quit".
//
//	help                    show available commands
//	add <ref> <file>        start a download; ref is a container id or owner/container
//	(l)ist                  list tracked files
//	remove <id>             cancel and forget a file
//	progress                overall progress and speed
//	wait <id>               block until a file finishes
//	save <id> <path|->      write a completed file
//	exit | quit             leave the program
//
// Command errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sf (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn("Available commands: add, (l)ist, remove, progress, wait, save, exit")

		case "add":
			if len(args) != 2 {
				printlnFn("Usage: add <container-id|owner/container> <file>")
				continue
			}
			err = a.Add(ctx, args[0], args[1])

		case "l", "list":
			err = a.List(ctx)

		case "remove", "rm":
			if len(args) != 1 {
				printlnFn("Usage: remove <id>")
				continue
			}
			err = a.Remove(ctx, args[0])

		case "progress":
			err = a.Progress(ctx)

		case "wait":
			if len(args) != 1 {
				printlnFn("Usage: wait <id>")
				continue
			}
			err = a.Wait(ctx, args[0])

		case "save":
			if len(args) != 2 {
				printlnFn("Usage: save <id> <path|->")
				continue
			}
			err = a.Save(ctx, args[0], args[1])

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
