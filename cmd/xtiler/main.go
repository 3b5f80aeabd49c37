package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/1broseidon/xtiler/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "windows":
		os.Exit(runWindows(os.Args[2:]))
	case "arrange":
		os.Exit(runArrange(os.Args[2:]))
	case "tile":
		os.Exit(runTile(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xtiler <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tiling daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  windows             List managed windows")
	fmt.Fprintln(w, "  arrange             Re-apply the layout")
	fmt.Fprintln(w, "  tile <window-id>    Return a floating window to the layout")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xtiler <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set for a command that takes no positional
// arguments. It returns -1 when the command should proceed.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func newFlagSet(name, usage, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s\n", usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
		fs.PrintDefaults()
	}
	return fs
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "xtiler status", "Show daemon status via IPC.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	newPrinter(os.Stdout).status(status)
	return 0
}

func runWindows(args []string) int {
	fs := newFlagSet("windows", "xtiler windows", "List windows managed by the daemon.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	windows, err := ipc.NewClient().ListWindows()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	newPrinter(os.Stdout).windows(windows)
	return 0
}

func runArrange(args []string) int {
	fs := newFlagSet("arrange", "xtiler arrange", "Recompute and apply the layout on the current desktop.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	if err := ipc.NewClient().Arrange(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runTile(args []string) int {
	fs := newFlagSet("tile", "xtiler tile <window-id>", "Return a floating window to the layout. IDs may be decimal or 0x-prefixed hex.")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	id, err := parseWindowID(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := ipc.NewClient().TileWindow(id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "xtiler reload", "Ask the daemon to reload its configuration file.")
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

// parseWindowID accepts the decimal and hex forms xprop and xwininfo print.
func parseWindowID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 0, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid window id %q", s)
	}
	return uint32(id), nil
}
