package gameserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baksohyeon/bycle-console-game/services"
)

func TestNewGameServerWithoutBackends(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := NewGameServer(Config{
		Context: ctx,
		Race:    services.DefaultSettings(),
		Router:  RouterConfig{AllowedOrigins: []string{"*"}},
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	recorder := httptest.NewRecorder()
	server.GetRouter().ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/rooms", nil))

	if recorder.Code != http.StatusCreated {
		t.Fatalf("status got=%d want=%d", recorder.Code, http.StatusCreated)
	}
	if recorder.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type got=%q", recorder.Header().Get("Content-Type"))
	}
	if server.GetHub().Rooms.Len() != 1 {
		t.Fatalf("expected one room in the hub")
	}
}
