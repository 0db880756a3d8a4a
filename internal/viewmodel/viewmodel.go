// Package viewmodel is the single source of truth behind the todo UI: the
// rendered list, the detail panel binding, and the debounced edit pipeline
// that keeps both consistent with the server.
package viewmodel

import (
	"context"
	"sync"
	"time"

	"todoapp/internal/domain"
	"todoapp/internal/logger"
)

// API is the slice of the HTTP client the view model consumes. Satisfied by
// *client.Client and by test fakes.
type API interface {
	List(ctx context.Context) ([]domain.Todo, error)
	Create(ctx context.Context, text, detail string) (domain.Todo, error)
	Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error)
	Delete(ctx context.Context, id int64) error
}

// DefaultDebounce is the quiet window that coalesces panel keystrokes into
// one update request.
const DefaultDebounce = 400 * time.Millisecond

type ViewModel struct {
	api      API
	debounce time.Duration

	mu      sync.Mutex
	todos   []domain.Todo
	boundID int64 // 0 = panel closed or bound to an unsaved record

	// pending panel edits, coalesced until the quiet window elapses.
	// pendingID is the binding captured when the edit was buffered, so a
	// rebind while a flush is on the wire cannot retarget the buffer.
	pendingText   *string
	pendingDetail *string
	pendingID     int64
	timer         *time.Timer
	inflight      bool // a flush is on the wire; the next waits for it

	onChange func() // invoked after every state change, may be nil
}

func New(api API, debounce time.Duration) *ViewModel {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ViewModel{api: api, debounce: debounce}
}

// SetOnChange registers a callback fired (on the mutating goroutine) after
// the model state changes. The TUI uses it to trigger a redraw.
func (vm *ViewModel) SetOnChange(fn func()) {
	vm.mu.Lock()
	vm.onChange = fn
	vm.mu.Unlock()
}

// Todos returns a copy of the rendered list.
func (vm *ViewModel) Todos() []domain.Todo {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	res := make([]domain.Todo, len(vm.todos))
	copy(res, vm.todos)
	return res
}

// BoundID returns the id the detail panel is bound to, 0 when unbound.
func (vm *ViewModel) BoundID() int64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.boundID
}

// Bound returns the record the panel is bound to, if any.
func (vm *ViewModel) Bound() (domain.Todo, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.boundID == 0 {
		return domain.Todo{}, false
	}
	for _, t := range vm.todos {
		if t.ID == vm.boundID {
			return t, true
		}
	}
	return domain.Todo{}, false
}

// Refresh reloads the list from the server.
func (vm *ViewModel) Refresh(ctx context.Context) error {
	todos, err := vm.api.List(ctx)
	if err != nil {
		logger.Error("refresh failed", "error", err)
		return err
	}

	vm.mu.Lock()
	vm.todos = todos
	fn := vm.onChange
	vm.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// Toggle flips a record's completed flag. The change is not optimistic:
// the list is updated only from the server's response, so a failed request
// leaves the displayed state untouched.
func (vm *ViewModel) Toggle(ctx context.Context, id int64) error {
	vm.mu.Lock()
	var current, found = false, false
	for _, t := range vm.todos {
		if t.ID == id {
			current, found = t.Completed, true
			break
		}
	}
	vm.mu.Unlock()
	if !found {
		return domain.ErrNotFound
	}

	next := !current
	updated, err := vm.api.Update(ctx, id, domain.Changes{Completed: &next})
	if err != nil {
		logger.Error("toggle failed", "id", id, "error", err)
		return err
	}
	vm.apply(updated)
	return nil
}

// Open binds the detail panel to a record. Pending edits are flushed
// eagerly, and whatever stays buffered behind an in-flight request keeps
// the id it was typed against.
func (vm *ViewModel) Open(id int64) {
	vm.FlushNow(context.Background())
	vm.mu.Lock()
	vm.boundID = id
	fn := vm.onChange
	vm.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// OpenBlank opens the panel unbound: the next flush with a non-empty title
// or detail creates a record and rebinds to it.
func (vm *ViewModel) OpenBlank() {
	vm.FlushNow(context.Background())
	vm.mu.Lock()
	vm.boundID = 0
	fn := vm.onChange
	vm.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Close flushes pending edits and clears the binding.
func (vm *ViewModel) Close() {
	vm.FlushNow(context.Background())
	vm.mu.Lock()
	vm.boundID = 0
	fn := vm.onChange
	vm.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// EditText buffers a title edit and restarts the quiet window.
func (vm *ViewModel) EditText(s string) {
	vm.mu.Lock()
	vm.pendingText = &s
	vm.pendingID = vm.boundID
	vm.scheduleLocked()
	vm.mu.Unlock()
}

// EditDetail buffers a body edit and restarts the quiet window.
func (vm *ViewModel) EditDetail(s string) {
	vm.mu.Lock()
	vm.pendingDetail = &s
	vm.pendingID = vm.boundID
	vm.scheduleLocked()
	vm.mu.Unlock()
}

// Delete removes a record and closes the panel if it was bound to it.
func (vm *ViewModel) Delete(ctx context.Context, id int64) error {
	if err := vm.api.Delete(ctx, id); err != nil {
		logger.Error("delete failed", "id", id, "error", err)
		return err
	}

	vm.mu.Lock()
	for i, t := range vm.todos {
		if t.ID == id {
			vm.todos = append(vm.todos[:i], vm.todos[i+1:]...)
			break
		}
	}
	if vm.boundID == id {
		vm.boundID = 0
		vm.pendingText, vm.pendingDetail = nil, nil
		vm.stopTimerLocked()
	}
	fn := vm.onChange
	vm.mu.Unlock()
	if fn != nil {
		fn()
	}
	return nil
}

// FlushNow pushes any buffered edits immediately, waiting its turn behind
// an in-flight flush. Safe to call with nothing pending.
func (vm *ViewModel) FlushNow(ctx context.Context) {
	vm.mu.Lock()
	vm.stopTimerLocked()
	vm.mu.Unlock()
	vm.flush(ctx)
}

// scheduleLocked (re)arms the debounce timer. Called with vm.mu held.
func (vm *ViewModel) scheduleLocked() {
	vm.stopTimerLocked()
	vm.timer = time.AfterFunc(vm.debounce, func() {
		vm.flush(context.Background())
	})
}

func (vm *ViewModel) stopTimerLocked() {
	if vm.timer != nil {
		vm.timer.Stop()
		vm.timer = nil
	}
}

// flush sends the coalesced edits. Edits for a given record are applied in
// user order: while one request is on the wire no second one starts, and
// anything buffered meanwhile goes out after it resolves.
func (vm *ViewModel) flush(ctx context.Context) {
	vm.mu.Lock()
	if vm.inflight || (vm.pendingText == nil && vm.pendingDetail == nil) {
		vm.mu.Unlock()
		return
	}
	id := vm.pendingID
	text, detail := vm.pendingText, vm.pendingDetail
	vm.pendingText, vm.pendingDetail = nil, nil
	vm.inflight = true
	vm.mu.Unlock()

	var (
		updated domain.Todo
		err     error
	)
	if id == 0 {
		// unbound panel: a non-empty title or detail creates the record
		var t, d string
		if text != nil {
			t = *text
		}
		if detail != nil {
			d = *detail
		}
		if t == "" && d == "" {
			vm.mu.Lock()
			vm.inflight = false
			vm.mu.Unlock()
			return
		}
		updated, err = vm.api.Create(ctx, t, d)
	} else {
		updated, err = vm.api.Update(ctx, id, domain.Changes{Text: text, Detail: detail})
	}

	vm.mu.Lock()
	vm.inflight = false
	// only edits that arrived during the flight trigger another flush;
	// values restored below wait for the next user action
	again := vm.pendingText != nil || vm.pendingDetail != nil
	if id == 0 {
		if err == nil {
			vm.todos = append(vm.todos, updated)
			if vm.boundID == 0 {
				vm.boundID = updated.ID // subsequent edits become updates
			}
			if vm.pendingID == 0 {
				vm.pendingID = updated.ID // edits typed during the create follow it
			}
		} else if vm.pendingID == 0 {
			// a rejected create keeps its values so the next flush
			// carries them; newer edits win per field
			if vm.pendingText == nil {
				vm.pendingText = text
			}
			if vm.pendingDetail == nil {
				vm.pendingDetail = detail
			}
		}
	}
	vm.mu.Unlock()

	if err != nil {
		// last-known-good state stays on screen; the user may retry
		logger.Error("edit flush failed", "id", id, "error", err)
	} else {
		vm.apply(updated)
	}

	if again {
		vm.flush(ctx)
	}
}

// apply reconciles an authoritative server record into the list (and, via
// Bound, the panel) so both views agree whenever they show the same id.
func (vm *ViewModel) apply(updated domain.Todo) {
	vm.mu.Lock()
	for i, t := range vm.todos {
		if t.ID == updated.ID {
			vm.todos[i] = updated
			break
		}
	}
	fn := vm.onChange
	vm.mu.Unlock()
	if fn != nil {
		fn()
	}
}
