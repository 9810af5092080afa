package settlement

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/groupsplit/pkg/middleware"
)

func newTestRouter(s *Service) http.Handler {
	h := NewHandler(s)
	r := chi.NewRouter()
	r.Use(middleware.TestUserMiddleware)
	r.Mount("/groups/{groupId}/balances", h.BalanceRoutes())
	r.Mount("/groups/{groupId}/settlements", h.SettlementRoutes())
	return r
}

func do(t *testing.T, h http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if user != "" {
		req.Header.Set(middleware.TestUserHeader, user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_SuggestionsThenRecord(t *testing.T) {
	s, _ := newTestService()
	h := newTestRouter(s)

	w := do(t, h, "GET", "/groups/trip/settlements/suggestions", "carol", "")
	if w.Code != http.StatusOK {
		t.Fatalf("suggestions status = %d, body %s", w.Code, w.Body.String())
	}
	var suggested struct {
		Data struct {
			Currency    string `json:"currency"`
			Suggestions []struct {
				From   string `json:"from"`
				To     string `json:"to"`
				Amount string `json:"amount"`
			} `json:"suggestions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&suggested); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(suggested.Data.Suggestions) != 1 || suggested.Data.Suggestions[0].Amount != "45" {
		t.Fatalf("suggestions = %+v", suggested.Data)
	}

	w = do(t, h, "POST", "/groups/trip/settlements", "carol", `{"from":"carol","to":"alice","amount":"45"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("record status = %d, body %s", w.Code, w.Body.String())
	}

	w = do(t, h, "GET", "/groups/trip/balances/me", "carol", "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var mine struct {
		Data struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&mine); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if mine.Data.Status != string(BalanceStatusSettled) {
		t.Errorf("status = %s, want settled", mine.Data.Status)
	}
}

func TestHandler_Errors(t *testing.T) {
	s, _ := newTestService()
	h := newTestRouter(s)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		want   int
	}{
		{"no user", "GET", "/groups/trip/balances", "", "", http.StatusUnauthorized},
		{"outsider", "GET", "/groups/trip/balances", "mallory", "", http.StatusForbidden},
		{"missing group", "GET", "/groups/nope/settlements/suggestions", "alice", "", http.StatusNotFound},
		{"bad month", "GET", "/groups/trip/balances/summary?month=March", "alice", "", http.StatusBadRequest},
		{"unknown member", "GET", "/groups/trip/balances/mallory", "alice", "", http.StatusNotFound},
		{"self settlement", "POST", "/groups/trip/settlements", "alice", `{"from":"alice","to":"alice","amount":"5"}`, http.StatusUnprocessableEntity},
		{"bad body", "POST", "/groups/trip/settlements", "alice", `[]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.user, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
