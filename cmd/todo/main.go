// Terminal client for the todo API: a list pane and a detail panel driven
// by the shared view model, kept fresh through the server's change feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"todoapp/internal/client"
	"todoapp/internal/logger"
	"todoapp/internal/viewmodel"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	serverURL := flag.String("server", envOr("TODO_SERVER", "http://localhost:8080"), "todo server base URL")
	debounceMS := flag.Int("debounce", envInt("DEBOUNCE_MS", 400), "edit quiet window in milliseconds")
	flag.Parse()

	// logs must not interleave with the TUI
	logger.Init("error", false)

	api := client.New(*serverURL)
	vm := viewmodel.New(api, time.Duration(*debounceMS)*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), client.DefaultTimeout)
	err := vm.Refresh(ctx)
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot reach %s: %v\n", *serverURL, err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(vm, *serverURL), tea.WithAltScreen())

	vm.SetOnChange(func() {
		p.Send(stateChangedMsg{})
	})
	go watchFeed(p, *serverURL)

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil && n > 0 {
			return n
		}
	}
	return def
}
