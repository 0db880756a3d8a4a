package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"todoapp/internal/domain"
	"todoapp/internal/store/memory"
	"todoapp/internal/ws"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub()
	go hub.Run()

	h := NewHandler(memory.New(), hub)
	r := gin.New()
	r.GET("/api/todos", h.ListTodos)
	r.POST("/api/todos", h.CreateTodo)
	r.GET("/api/todos/:id", h.GetTodo)
	r.PUT("/api/todos/:id", h.UpdateTodo)
	r.DELETE("/api/todos/:id", h.DeleteTodo)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeTodo(t *testing.T, w *httptest.ResponseRecorder) domain.Todo {
	t.Helper()
	var todo domain.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todo); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return todo
}

// The full sequence from the API contract: create, toggle, delete, list.
func TestEndToEndSequence(t *testing.T) {
	r := newTestRouter()

	w := do(t, r, http.MethodPost, "/api/todos", `{"text":"Buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", w.Code, w.Body.String())
	}
	created := decodeTodo(t, w)
	want := domain.Todo{ID: 1, Text: "Buy milk", Detail: "", Completed: false}
	created.CreatedAt = want.CreatedAt
	if created != want {
		t.Errorf("POST body = %+v, want %+v", created, want)
	}

	w = do(t, r, http.MethodPut, "/api/todos/1", `{"completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %s", w.Code, w.Body.String())
	}
	updated := decodeTodo(t, w)
	if !updated.Completed || updated.Text != "Buy milk" || updated.Detail != "" {
		t.Errorf("PUT body = %+v, want completed=true with text/detail untouched", updated)
	}

	w = do(t, r, http.MethodDelete, "/api/todos/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE status = %d, body %s", w.Code, w.Body.String())
	}
	if strings.TrimSpace(w.Body.String()) != `{"id":1}` {
		t.Errorf("DELETE body = %s, want {\"id\":1}", w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/todos", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET status = %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `[]` {
		t.Errorf("GET body = %s, want []", w.Body.String())
	}
}

func TestListIsArrayWhenEmpty(t *testing.T) {
	r := newTestRouter()
	w := do(t, r, http.MethodGet, "/api/todos", "")
	if strings.TrimSpace(w.Body.String()) != `[]` {
		t.Errorf("empty list body = %s, want []", w.Body.String())
	}
}

func TestCreateValidation(t *testing.T) {
	r := newTestRouter()

	w := do(t, r, http.MethodPost, "/api/todos", `{"text":"   "}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("blank text status = %d, want 400", w.Code)
	}

	w = do(t, r, http.MethodPost, "/api/todos", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", w.Code)
	}
}

func TestUpdateMergeOverHTTP(t *testing.T) {
	r := newTestRouter()
	do(t, r, http.MethodPost, "/api/todos", `{"text":"Buy milk","detail":"2 liters"}`)
	do(t, r, http.MethodPut, "/api/todos/1", `{"completed":true}`)

	// detail-only update leaves text and completed alone
	w := do(t, r, http.MethodPut, "/api/todos/1", `{"detail":"x"}`)
	got := decodeTodo(t, w)
	if got.Text != "Buy milk" || !got.Completed || got.Detail != "x" {
		t.Errorf("detail-only PUT = %+v", got)
	}

	// completed=false must be applied, not treated as absent
	w = do(t, r, http.MethodPut, "/api/todos/1", `{"completed":false}`)
	if got := decodeTodo(t, w); got.Completed {
		t.Error("PUT completed=false did not flip the record")
	}

	// empty object is a successful no-op returning the stored record
	w = do(t, r, http.MethodPut, "/api/todos/1", `{}`)
	if w.Code != http.StatusOK {
		t.Fatalf("no-op PUT status = %d", w.Code)
	}
	if got := decodeTodo(t, w); got.Text != "Buy milk" || got.Detail != "x" || got.Completed {
		t.Errorf("no-op PUT = %+v", got)
	}
}

func TestErrorStatuses(t *testing.T) {
	r := newTestRouter()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"update unknown id", http.MethodPut, "/api/todos/99", `{"text":"x"}`, http.StatusNotFound},
		{"delete unknown id", http.MethodDelete, "/api/todos/99", "", http.StatusNotFound},
		{"get unknown id", http.MethodGet, "/api/todos/99", "", http.StatusNotFound},
		{"non-numeric id", http.MethodPut, "/api/todos/abc", `{}`, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
			var e struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil || e.Error == "" {
				t.Errorf("error body = %s, want {\"error\": ...}", w.Body.String())
			}
		})
	}
}

func TestCreateAppearsOnceInList(t *testing.T) {
	r := newTestRouter()
	do(t, r, http.MethodPost, "/api/todos", `{"text":"a"}`)
	do(t, r, http.MethodPost, "/api/todos", `{"text":"b","detail":"extra"}`)

	w := do(t, r, http.MethodGet, "/api/todos", "")
	var todos []domain.Todo
	if err := json.Unmarshal(w.Body.Bytes(), &todos); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("list has %d records, want 2", len(todos))
	}
	if todos[0].Text != "a" || todos[1].Text != "b" {
		t.Errorf("list order = %+v, want insertion order", todos)
	}
	if todos[0].Detail != "" || todos[0].Completed {
		t.Errorf("defaults not applied: %+v", todos[0])
	}
}
