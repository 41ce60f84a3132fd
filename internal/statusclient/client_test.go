package statusclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"digital-menu-service/internal/ws"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestClientFiltersBroadcastByPhone(t *testing.T) {
	updates := []ws.StatusUpdate{
		{CustomerID: 1, PhoneNumber: "1111111111", TableStatus: "preparing"},
		{CustomerID: 2, PhoneNumber: "9876543210", TableStatus: "ready", TableNumber: "T4"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, update := range updates {
			if err := conn.WriteJSON(map[string]any{"type": "tableStatusUpdate", "data": update}); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	received := make(chan ws.StatusUpdate, 4)
	client := New(Config{
		WSURL:          wsURL(server),
		PhoneNumber:    "9876543210",
		ReconnectDelay: 50 * time.Millisecond,
		PollInterval:   time.Hour,
	}, nil, func(u ws.StatusUpdate) { received <- u })

	client.Start(context.Background())
	defer client.Stop()

	select {
	case update := <-received:
		if update.PhoneNumber != "9876543210" || update.TableStatus != "ready" {
			t.Fatalf("unexpected update: %+v", update)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for update")
	}

	select {
	case update := <-received:
		t.Fatalf("update for another customer leaked through: %+v", update)
	case <-time.After(100 * time.Millisecond):
	}

	latest, ok := client.Latest()
	if !ok || latest.TableStatus != "ready" {
		t.Fatalf("latest not recorded: %+v ok=%v", latest, ok)
	}
}

func TestClientAnswersPingWithPong(t *testing.T) {
	pongs := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
			return
		}
		var reply struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&reply); err != nil {
			return
		}
		pongs <- reply.Type
	}))
	defer server.Close()

	client := New(Config{
		WSURL:          wsURL(server),
		PhoneNumber:    "9876543210",
		ReconnectDelay: time.Hour,
		PollInterval:   time.Hour,
	}, nil, nil)

	client.Start(context.Background())
	defer client.Stop()

	select {
	case reply := <-pongs:
		if reply != "pong" {
			t.Fatalf("unexpected heartbeat reply %q", reply)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for pong")
	}
}

func TestClientPollingFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/customers/9876543210/table-status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"customerId":2,"phoneNumber":"9876543210","tableStatus":"served"}}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	received := make(chan ws.StatusUpdate, 4)
	client := New(Config{
		WSURL:          "ws://127.0.0.1:1/ws/table-status",
		BaseURL:        server.URL,
		PhoneNumber:    "9876543210",
		ReconnectDelay: time.Hour,
		PollInterval:   50 * time.Millisecond,
	}, nil, func(u ws.StatusUpdate) { received <- u })

	client.Start(context.Background())
	defer client.Stop()

	select {
	case update := <-received:
		if update.TableStatus != "served" {
			t.Fatalf("unexpected update: %+v", update)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for polled update")
	}
}

func TestClientStopTerminatesLoops(t *testing.T) {
	client := New(Config{
		WSURL:          "ws://127.0.0.1:1/ws/table-status",
		BaseURL:        "http://127.0.0.1:1",
		PhoneNumber:    "9876543210",
		ReconnectDelay: 10 * time.Millisecond,
		PollInterval:   10 * time.Millisecond,
	}, nil, nil)

	client.Start(context.Background())
	time.Sleep(30 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		client.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not terminate the client loops")
	}
}
