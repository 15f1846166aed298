package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/shardfetch/internal/client/config"
	"github.com/dmitrijs2005/shardfetch/internal/client/downloads"
	"github.com/dmitrijs2005/shardfetch/internal/filex"
	"github.com/dmitrijs2005/shardfetch/internal/flagx"
	"github.com/dmitrijs2005/shardfetch/internal/logging"
	"github.com/dmitrijs2005/shardfetch/internal/sink"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitUsage   = 2
)

// defaultDataDir is created in the working directory for the disk sink
// when no directory is configured.
const defaultDataDir = "shardfetch-data"

const usage = "usage: shardfetch [flags] [get <container-id|owner/container> <file> [-o out]]"

// valueFlags are the flags that consume the next argument.
func valueFlags() []string {
	return append([]string{"-c", "-config", "--config", "-o"}, config.FlagNames...)
}

// Main runs the program with args (without the program name) and returns
// the process exit code.
func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer, opts ...downloads.Option) int {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitUsage
	}
	log := logging.New(errOut, cfg.LogLevel)

	if cfg.SinkKind == sink.KindDisk && cfg.SinkDir == "" {
		dir, err := filex.EnsureSubDir(defaultDataDir)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return exitRuntime
		}
		cfg.SinkDir = dir
	}

	pos := flagx.Positionals(args, valueFlags())
	if len(pos) > 0 && (pos[0] != "get" || len(pos) != 3) {
		fmt.Fprintln(errOut, usage)
		return exitUsage
	}

	app, err := NewApp(cfg, out, log, opts...)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return exitRuntime
	}
	defer app.Close()

	if len(pos) == 3 {
		target, err := outputFlag(args)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return exitUsage
		}
		if err := app.Get(ctx, pos[1], pos[2], target); err != nil {
			fmt.Fprintln(errOut, err)
			return exitRuntime
		}
		return exitOK
	}

	printlnFn("shardfetch (type 'help' for commands)")
	runREPL(ctx, replApp{app}, app.status, bufio.NewScanner(in))
	return exitOK
}

func outputFlag(args []string) (string, error) {
	var target string
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&target, "o", "", "output path")
	if err := fs.Parse(flagx.FilterArgs(args, []string{"-o"})); err != nil {
		return "", err
	}
	return target, nil
}
