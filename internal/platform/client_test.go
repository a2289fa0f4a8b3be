package platform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/@me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bot good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "1", "username": "relaybot"})
	})
	mux.HandleFunc("GET /users/@me/guilds", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Guild{{
			ID:    "7",
			Name:  "Clubhouse",
			Roles: []Role{{ID: "r1", Name: "Cool guy"}},
			Members: []Member{
				{UserID: "42", DisplayName: "alice", RoleIDs: []string{"r1"}},
			},
		}})
	})
	mux.HandleFunc("GET /guilds/9", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Guild{ID: "9", Name: "Annex"})
	})
	mux.HandleFunc("GET /guilds/7/members/42", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Member{UserID: "42", DisplayName: "alice", RoleIDs: []string{"r1"}})
	})
	mux.HandleFunc("POST /users/13/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("POST /users/42/messages", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectLoadsGuildCache(t *testing.T) {
	srv := testAPI(t)
	c := NewClient(Config{Token: "good-token", BaseURL: srv.URL}, discardLogger())

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	g, ok := c.Guild("7")
	if !ok {
		t.Fatalf("expected guild 7 in cache")
	}
	if g.Name != "Clubhouse" {
		t.Fatalf("guild name = %q, want Clubhouse", g.Name)
	}
	if _, ok := g.Member("42"); !ok {
		t.Fatalf("expected member 42 in cached roster")
	}
}

func TestConnectRejectsBadToken(t *testing.T) {
	srv := testAPI(t)
	c := NewClient(Config{Token: "bad-token", BaseURL: srv.URL}, discardLogger())

	err := c.Connect(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestConnectRequiresToken(t *testing.T) {
	c := NewClient(Config{Token: "  ", BaseURL: "http://unused.test"}, discardLogger())
	if err := c.Connect(context.Background()); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestFetchGuildCachesResult(t *testing.T) {
	srv := testAPI(t)
	c := NewClient(Config{Token: "good-token", BaseURL: srv.URL}, discardLogger())

	if _, ok := c.Guild("9"); ok {
		t.Fatalf("guild 9 should not be cached yet")
	}
	g, err := c.FetchGuild(context.Background(), "9")
	if err != nil {
		t.Fatalf("fetch guild failed: %v", err)
	}
	if g.Name != "Annex" {
		t.Fatalf("guild name = %q, want Annex", g.Name)
	}
	if _, ok := c.Guild("9"); !ok {
		t.Fatalf("expected guild 9 cached after fetch")
	}
}

func TestFetchGuildNotFound(t *testing.T) {
	srv := testAPI(t)
	c := NewClient(Config{Token: "good-token", BaseURL: srv.URL}, discardLogger())

	_, err := c.FetchGuild(context.Background(), "999")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchMember(t *testing.T) {
	srv := testAPI(t)
	c := NewClient(Config{Token: "good-token", BaseURL: srv.URL}, discardLogger())

	m, err := c.FetchMember(context.Background(), "7", "42")
	if err != nil {
		t.Fatalf("fetch member failed: %v", err)
	}
	if m.DisplayName != "alice" {
		t.Fatalf("display name = %q, want alice", m.DisplayName)
	}

	if _, err := c.FetchMember(context.Background(), "7", "404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown member, got %v", err)
	}
}

func TestSendDirectMessageErrorMapping(t *testing.T) {
	srv := testAPI(t)
	c := NewClient(Config{Token: "good-token", BaseURL: srv.URL}, discardLogger())

	if err := c.SendDirectMessage(context.Background(), "42", "hello"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	err := c.SendDirectMessage(context.Background(), "13", "hello")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestMemberHasRole(t *testing.T) {
	t.Parallel()

	m := Member{UserID: "42", RoleIDs: []string{"r1", "r2"}}
	if !m.HasRole("r2") {
		t.Fatalf("expected role r2 to be present")
	}
	if m.HasRole("r3") {
		t.Fatalf("expected role r3 to be absent")
	}
}
