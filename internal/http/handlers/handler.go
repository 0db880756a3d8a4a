package handlers

import (
	"todoapp/internal/store"
	"todoapp/internal/ws"
)

// Handler carries the dependencies the todo endpoints need. The store is
// constructed at startup and injected here; handlers never reach for
// globals.
type Handler struct {
	Store store.Store
	Hub   *ws.Hub
}

func NewHandler(s store.Store, hub *ws.Hub) *Handler {
	return &Handler{Store: s, Hub: hub}
}
