// Command langtrayctl talks to a running LangTray over its control pipe.
//
//	langtrayctl status    print the current language, icon and strategies
//	langtrayctl refresh   re-publish the icon and re-check the language
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"langtray/internal/config"
	"langtray/internal/ipc"
	"langtray/internal/logging"
)

const requestTimeout = 5 * time.Second

// test seam
var sendFn = ipc.Send

func main() {
	color := term.IsTerminal(int(os.Stderr.Fd()))
	slog.SetDefault(slog.New(logging.NewConsoleHandler(os.Stderr, slog.LevelInfo, color)))
	os.Exit(run(os.Args[1:], os.Stdout, config.DefaultPipeName()))
}

func run(args []string, stdout io.Writer, pipeName string) int {
	command, asJSON, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stdout, usage)
		slog.Error("[ctl] invalid arguments", "error", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp, err := sendFn(ctx, pipeName, ipc.Request{Command: command})
	if err != nil {
		if ipc.IsConnectionError(err) {
			slog.Error("[ctl] LangTray is not running", "pipe", pipeName)
			return 1
		}
		slog.Error("[ctl] request failed", "command", command, "error", err)
		return 1
	}
	if !resp.OK {
		slog.Error("[ctl] request rejected", "command", command, "error", resp.Error)
		return 1
	}

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp.Status); err != nil {
			slog.Error("[ctl] encode status", "error", err)
			return 1
		}
		return 0
	}
	writeStatus(stdout, resp.Status)
	return 0
}

const usage = "usage: langtrayctl [-json] status|refresh"

func parseArgs(args []string) (command string, asJSON bool, err error) {
	for _, arg := range args {
		switch a := strings.ToLower(strings.TrimSpace(arg)); a {
		case "-json", "--json":
			asJSON = true
		case ipc.CommandStatus, ipc.CommandRefresh:
			if command != "" {
				return "", false, fmt.Errorf("more than one command: %s and %s", command, a)
			}
			command = a
		default:
			return "", false, fmt.Errorf("unknown argument %q", arg)
		}
	}
	if command == "" {
		command = ipc.CommandStatus
	}
	return command, asJSON, nil
}

func writeStatus(w io.Writer, st *ipc.Status) {
	if st == nil {
		fmt.Fprintln(w, "ok")
		return
	}
	lang := st.LanguageHex
	if lang == "" {
		lang = "unknown"
	}
	fmt.Fprintf(w, "language:   %s (%d)\n", lang, st.Language)
	fmt.Fprintf(w, "tooltip:    %s\n", st.Tooltip)
	fmt.Fprintf(w, "icon:       %s\n", st.IconSource)
	fmt.Fprintf(w, "published:  %t\n", st.Published)
	fmt.Fprintf(w, "strategies: %s\n", strings.Join(st.Strategies, ", "))
	fmt.Fprintf(w, "icon dirs:  %s\n", strings.Join(st.IconDirs, ", "))
	if len(st.Candidates) > 0 {
		fmt.Fprintf(w, "candidates: %s\n", strings.Join(st.Candidates, ", "))
	}
	for _, line := range st.Recent {
		fmt.Fprintf(w, "recent:     %s\n", line)
	}
}
