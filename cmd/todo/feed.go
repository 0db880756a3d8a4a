package main

import (
	"net/url"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

// feedEventMsg is delivered whenever the server broadcasts a mutation.
type feedEventMsg struct{}

// watchFeed subscribes to the server's change feed and nudges the program
// to refresh on every event. Reconnects with a flat backoff; the client
// still works without the feed, it just stops seeing other clients' edits.
func watchFeed(p *tea.Program, serverURL string) {
	wsURL, err := feedURL(serverURL)
	if err != nil {
		return
	}

	for {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			time.Sleep(3 * time.Second)
			continue
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			p.Send(feedEventMsg{})
		}
		conn.Close()
		time.Sleep(time.Second)
	}
}

func feedURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}
