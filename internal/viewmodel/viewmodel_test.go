package viewmodel

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"todoapp/internal/domain"
)

// fakeAPI records calls and serves from an in-memory map. A per-call delay
// and a failure switch let tests exercise ordering and failure handling.
type fakeAPI struct {
	mu        sync.Mutex
	nextID    int64
	todos     map[int64]domain.Todo
	updates   []domain.Changes
	updateIDs []int64
	creates   int
	delay     time.Duration
	fail      bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 1, todos: make(map[int64]domain.Todo)}
}

func (f *fakeAPI) seed(text, detail string, completed bool) domain.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := domain.Todo{ID: f.nextID, Text: text, Detail: detail, Completed: completed}
	f.nextID++
	f.todos[t.ID] = t
	return t
}

func (f *fakeAPI) List(ctx context.Context) ([]domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("network down")
	}
	var res []domain.Todo
	for id := int64(1); id < f.nextID; id++ {
		if t, ok := f.todos[id]; ok {
			res = append(res, t)
		}
	}
	return res, nil
}

func (f *fakeAPI) Create(ctx context.Context, text, detail string) (domain.Todo, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Todo{}, errors.New("network down")
	}
	if strings.TrimSpace(text) == "" {
		return domain.Todo{}, domain.ErrEmptyText
	}
	f.creates++
	t := domain.Todo{ID: f.nextID, Text: text, Detail: detail}
	f.nextID++
	f.todos[t.ID] = t
	return t, nil
}

func (f *fakeAPI) Update(ctx context.Context, id int64, changes domain.Changes) (domain.Todo, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Todo{}, errors.New("network down")
	}
	t, ok := f.todos[id]
	if !ok {
		return domain.Todo{}, domain.ErrNotFound
	}
	t = t.Apply(changes)
	f.todos[id] = t
	f.updates = append(f.updates, changes)
	f.updateIDs = append(f.updateIDs, id)
	return t, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("network down")
	}
	if _, ok := f.todos[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeAPI) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func TestToggleIsNotOptimistic(t *testing.T) {
	api := newFakeAPI()
	seeded := api.seed("Buy milk", "", false)

	vm := New(api, time.Millisecond)
	if err := vm.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	// failure leaves the displayed state untouched
	api.fail = true
	if err := vm.Toggle(context.Background(), seeded.ID); err == nil {
		t.Fatal("Toggle should fail when the API fails")
	}
	if vm.Todos()[0].Completed {
		t.Error("failed toggle changed the displayed state")
	}

	// success applies the server's response
	api.fail = false
	if err := vm.Toggle(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !vm.Todos()[0].Completed {
		t.Error("successful toggle did not update the list")
	}
}

func TestDebounceCoalescesEdits(t *testing.T) {
	api := newFakeAPI()
	seeded := api.seed("draft", "", false)

	vm := New(api, 30*time.Millisecond)
	vm.Refresh(context.Background())
	vm.Open(seeded.ID)

	// a burst of keystrokes within the quiet window
	for _, s := range []string{"B", "Bu", "Buy", "Buy milk"} {
		vm.EditText(s)
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if n := api.updateCount(); n != 1 {
		t.Errorf("burst of edits produced %d requests, want 1", n)
	}
	if got, _ := vm.Bound(); got.Text != "Buy milk" {
		t.Errorf("panel shows %q, want final edit", got.Text)
	}
}

func TestFlushNow(t *testing.T) {
	api := newFakeAPI()
	seeded := api.seed("draft", "", false)

	vm := New(api, time.Hour) // never fires on its own
	vm.Refresh(context.Background())
	vm.Open(seeded.ID)

	vm.EditDetail("remember the oat one")
	vm.FlushNow(context.Background())

	if n := api.updateCount(); n != 1 {
		t.Fatalf("FlushNow produced %d requests, want 1", n)
	}
	// detail-only change must not carry a text key
	if api.updates[0].Text != nil {
		t.Error("detail edit sent a text change")
	}
	if got := vm.Todos()[0]; got.Detail != "remember the oat one" || got.Text != "draft" {
		t.Errorf("list entry = %+v, want detail updated and text untouched", got)
	}
}

func TestUnboundPanelCreatesThenRebinds(t *testing.T) {
	api := newFakeAPI()
	vm := New(api, time.Hour)
	vm.Refresh(context.Background())
	vm.OpenBlank()

	vm.EditText("New todo")
	vm.FlushNow(context.Background())

	if api.creates != 1 {
		t.Fatalf("creates = %d, want 1", api.creates)
	}
	id := vm.BoundID()
	if id == 0 {
		t.Fatal("panel did not rebind to the created record")
	}

	// subsequent edits are updates against the new id
	vm.EditDetail("with detail")
	vm.FlushNow(context.Background())
	if api.creates != 1 {
		t.Errorf("second flush created again (creates = %d)", api.creates)
	}
	if n := api.updateCount(); n != 1 {
		t.Errorf("second flush produced %d updates, want 1", n)
	}
	if got, ok := vm.Bound(); !ok || got.Detail != "with detail" {
		t.Errorf("bound record = %+v, want updated detail", got)
	}
}

func TestUnboundPanelEmptyEditsDoNotCreate(t *testing.T) {
	api := newFakeAPI()
	vm := New(api, time.Hour)
	vm.OpenBlank()

	vm.EditText("")
	vm.FlushNow(context.Background())
	if api.creates != 0 {
		t.Errorf("empty panel created a record")
	}
}

func TestEditsAreSerializedInOrder(t *testing.T) {
	api := newFakeAPI()
	seeded := api.seed("draft", "", false)
	api.delay = 20 * time.Millisecond

	vm := New(api, 5*time.Millisecond)
	vm.Refresh(context.Background())
	vm.Open(seeded.ID)

	vm.EditText("first")
	time.Sleep(10 * time.Millisecond) // first flush is now on the wire
	vm.EditText("second")
	time.Sleep(100 * time.Millisecond)

	if n := api.updateCount(); n != 2 {
		t.Fatalf("got %d updates, want 2 (second waits for the first)", n)
	}
	if *api.updates[0].Text != "first" || *api.updates[1].Text != "second" {
		t.Errorf("updates out of order: %q then %q", *api.updates[0].Text, *api.updates[1].Text)
	}
	if got, _ := vm.Bound(); got.Text != "second" {
		t.Errorf("final text = %q, want %q", got.Text, "second")
	}
}

func TestRebindDuringInflightEditKeepsTarget(t *testing.T) {
	api := newFakeAPI()
	first := api.seed("alpha", "", false)
	second := api.seed("beta", "", false)
	api.delay = 20 * time.Millisecond

	vm := New(api, 5*time.Millisecond)
	vm.Refresh(context.Background())
	vm.Open(first.ID)

	vm.EditText("alpha edit one")
	time.Sleep(10 * time.Millisecond) // first flush is now on the wire
	vm.EditText("alpha edit two")     // buffered behind it
	vm.Open(second.ID)                // rebind while the flush is in flight
	time.Sleep(100 * time.Millisecond)

	api.mu.Lock()
	ids := append([]int64(nil), api.updateIDs...)
	api.mu.Unlock()
	if len(ids) != 2 || ids[0] != first.ID || ids[1] != first.ID {
		t.Fatalf("update targets = %v, want both against id %d", ids, first.ID)
	}
	api.mu.Lock()
	got := api.todos[second.ID].Text
	api.mu.Unlock()
	if got != "beta" {
		t.Errorf("record %d text = %q, the buffered edit leaked onto it", second.ID, got)
	}
	for _, td := range vm.Todos() {
		if td.ID == first.ID && td.Text != "alpha edit two" {
			t.Errorf("record %d text = %q, want %q", first.ID, td.Text, "alpha edit two")
		}
	}
}

func TestRejectedCreateKeepsBufferedDetail(t *testing.T) {
	api := newFakeAPI()
	vm := New(api, time.Hour)
	vm.Refresh(context.Background())
	vm.OpenBlank()

	// detail alone cannot create a record; the server wants a title
	vm.EditDetail("oat, not regular")
	vm.FlushNow(context.Background())
	if api.creates != 0 {
		t.Fatalf("creates = %d after a rejected create, want 0", api.creates)
	}

	// the rejected detail rides along once a title shows up
	vm.EditText("Buy milk")
	vm.FlushNow(context.Background())
	if api.creates != 1 {
		t.Fatalf("creates = %d, want 1", api.creates)
	}
	got, ok := vm.Bound()
	if !ok || got.Text != "Buy milk" || got.Detail != "oat, not regular" {
		t.Errorf("bound record = %+v, want the earlier detail preserved", got)
	}
}

func TestDeleteClosesBoundPanel(t *testing.T) {
	api := newFakeAPI()
	seeded := api.seed("doomed", "", false)

	vm := New(api, time.Millisecond)
	vm.Refresh(context.Background())
	vm.Open(seeded.ID)

	if err := vm.Delete(context.Background(), seeded.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if vm.BoundID() != 0 {
		t.Error("panel still bound after deleting its record")
	}
	if len(vm.Todos()) != 0 {
		t.Error("deleted record still in the list")
	}
}

func TestRefreshFailureKeepsLastKnownGood(t *testing.T) {
	api := newFakeAPI()
	api.seed("keep me", "", false)

	vm := New(api, time.Millisecond)
	vm.Refresh(context.Background())

	api.fail = true
	if err := vm.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh should surface the failure")
	}
	if len(vm.Todos()) != 1 {
		t.Error("failed refresh cleared the list")
	}
}
