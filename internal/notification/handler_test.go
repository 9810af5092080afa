package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/pkg/middleware"
)

func newTestRouter(s *Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.TestUserMiddleware)
	r.Mount("/notifications", NewHandler(s).Routes())
	return r
}

func do(h http.Handler, method, path, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if user != "" {
		req.Header.Set(middleware.TestUserHeader, user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_ReadFlow(t *testing.T) {
	s, store := newTestService()
	store.items = []*Notification{
		{ID: "n1", RecipientID: "bob", GroupID: "trip", Type: NotificationTypeExpenseAdded, Message: "first"},
		{ID: "n2", RecipientID: "bob", GroupID: "trip", Type: NotificationTypeSettlement, Message: "second"},
		{ID: "n3", RecipientID: "alice", GroupID: "trip", Type: NotificationTypeExpenseAdded, Message: "other"},
	}
	h := newTestRouter(s)

	w := do(h, "GET", "/notifications", "bob")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Data) != 2 || list.Meta.Total != 2 {
		t.Errorf("list = %+v", list)
	}

	if w := do(h, "POST", "/notifications/n3/read", "bob"); w.Code != http.StatusForbidden {
		t.Errorf("read other's status = %d, want 403", w.Code)
	}
	if w := do(h, "POST", "/notifications/nope/read", "bob"); w.Code != http.StatusNotFound {
		t.Errorf("read missing status = %d, want 404", w.Code)
	}
	if w := do(h, "POST", "/notifications/n1/read", "bob"); w.Code != http.StatusOK {
		t.Errorf("read status = %d", w.Code)
	}

	w = do(h, "GET", "/notifications/unread-count", "bob")
	var count struct {
		Data struct {
			UnreadCount int `json:"unread_count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count.Data.UnreadCount != 1 {
		t.Errorf("unread = %d, want 1", count.Data.UnreadCount)
	}

	if w := do(h, "POST", "/notifications/read-all", "bob"); w.Code != http.StatusOK {
		t.Errorf("read-all status = %d", w.Code)
	}
	if n, _ := s.GetUnreadCount(context.Background(), "bob"); n != 0 {
		t.Errorf("unread after read-all = %d", n)
	}

	if w := do(h, "GET", "/notifications", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}
