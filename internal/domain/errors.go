package domain

import "errors"

// ErrNotFound is returned when a todo id does not exist in the store.
var ErrNotFound = errors.New("todo not found")

// ErrEmptyText is returned when create is given a blank title.
var ErrEmptyText = errors.New("text must not be empty")
