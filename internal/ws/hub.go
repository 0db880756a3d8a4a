// Package ws broadcasts todo mutations to connected clients so open list
// views can refresh without polling. The API behaves identically with zero
// subscribers.
package ws

import (
	"encoding/json"

	"todoapp/internal/domain"
	"todoapp/internal/logger"
)

// Event types sent on the feed.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event is one mutation notification. Deleted events carry only the id.
type Event struct {
	Type string       `json:"type"`
	Todo *domain.Todo `json:"todo,omitempty"`
	ID   int64        `json:"id,omitempty"`
}

type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
	}
}

// Run owns the client set; call it once in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = struct{}{}
			logger.Debug("ws client registered", "clients", len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer, drop it
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish queues an event for every connected client. Never blocks the
// mutation path: if the broadcast buffer is full the event is dropped.
func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Error("ws marshal event", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		logger.Warn("ws broadcast buffer full, event dropped", "type", ev.Type)
	}
}

// Created, Updated and Deleted are the publishing shorthands the handlers use.

func (h *Hub) Created(t domain.Todo) { h.Publish(Event{Type: EventCreated, Todo: &t}) }
func (h *Hub) Updated(t domain.Todo) { h.Publish(Event{Type: EventUpdated, Todo: &t}) }
func (h *Hub) Deleted(id int64)      { h.Publish(Event{Type: EventDeleted, ID: id}) }
