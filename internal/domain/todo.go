package domain

import "time"

// Todo is the single persisted entity. Detail is always a concrete string,
// never null/absent in a response; CreatedAt is internal and not serialized.
type Todo struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Detail    string    `json:"detail" db:"detail"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Changes is a partial update decoded from a PUT body. A nil pointer means
// the key was absent (or JSON null) and the stored field is left alone.
// Completed uses the same pointer presence so that an explicit false is
// applied rather than dropped.
type Changes struct {
	Text      *string `json:"text"`
	Detail    *string `json:"detail"`
	Completed *bool   `json:"completed"`
}

// Empty reports whether no recognized key was supplied. An empty Changes
// is still a valid update: it succeeds and returns the stored record.
func (c Changes) Empty() bool {
	return c.Text == nil && c.Detail == nil && c.Completed == nil
}

// Apply merges the supplied changes into a copy of t and returns it.
// All store implementations share this one merge policy.
func (t Todo) Apply(c Changes) Todo {
	if c.Text != nil {
		t.Text = *c.Text
	}
	if c.Detail != nil {
		t.Detail = *c.Detail
	}
	if c.Completed != nil {
		t.Completed = *c.Completed
	}
	return t
}
