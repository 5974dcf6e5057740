package bot

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iconidentify/mediagrab/internal/config"
)

func fakeBotAPI(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server.URL + "/bot%s/%s"
}

func TestConnect(t *testing.T) {
	endpoint := fakeBotAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bot123:abc/getMe") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Media","username":"mediagrab_bot"}}`))
	})

	api, err := Connect(config.TelegramConfig{
		Token:          "123:abc",
		APIEndpoint:    endpoint,
		RequestTimeout: 5 * time.Second,
	}, testLogger())
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if api.Self.UserName != "mediagrab_bot" {
		t.Errorf("UserName = %q, want mediagrab_bot", api.Self.UserName)
	}
	if api.Client.(*http.Client).Timeout != 5*time.Second {
		t.Error("request timeout should be applied to the HTTP client")
	}
}

func TestConnect_Unauthorized(t *testing.T) {
	endpoint := fakeBotAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	})

	_, err := Connect(config.TelegramConfig{Token: "bad", APIEndpoint: endpoint}, testLogger())
	if err == nil {
		t.Fatal("expected error for rejected token")
	}
}
