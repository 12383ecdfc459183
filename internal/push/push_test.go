package push

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type wsServer struct {
	upgrader websocket.Upgrader

	heartbeats atomic.Int64
	dials      atomic.Int64
	lastAuth   atomic.Value // string

	// payloads sent to each new connection right after upgrade
	greet []string
	// when set, the server closes the first connection immediately
	dropFirst bool
}

func (s *wsServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := s.dials.Add(1)
		s.lastAuth.Store(r.Header.Get("Authorization"))
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		if s.dropFirst && n == 1 {
			conn.Close()
			return
		}
		for _, p := range s.greet {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(p)); err != nil {
				return
			}
		}
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(msg) == HeartbeatPayload {
				s.heartbeats.Add(1)
			}
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}

func TestChannel_HeartbeatAndRefresh(t *testing.T) {
	t.Parallel()
	ws := &wsServer{greet: []string{"something-else", RefreshPayload}}
	srv := httptest.NewServer(ws.handler(t))
	defer srv.Close()

	var refreshes atomic.Int64
	ch := New(Config{
		URL:     wsURL(srv),
		Headers: func() http.Header { return http.Header{"Authorization": []string{"Bearer tok-1"}} },
		OnRefresh: func(context.Context) error {
			refreshes.Add(1)
			return nil
		},
		HeartbeatInterval: 10 * time.Millisecond,
		ReconnectDelay:    10 * time.Millisecond,
	})
	ch.Start(context.Background())
	defer ch.Close()

	waitFor(t, 2*time.Second, func() bool { return refreshes.Load() >= 1 })
	waitFor(t, 2*time.Second, func() bool { return ws.heartbeats.Load() >= 2 })
	require.Equal(t, "Bearer tok-1", ws.lastAuth.Load())
}

func TestChannel_ReconnectsWithRefreshedToken(t *testing.T) {
	t.Parallel()
	ws := &wsServer{dropFirst: true}
	srv := httptest.NewServer(ws.handler(t))
	defer srv.Close()

	var token atomic.Value
	token.Store("tok-old")
	ch := New(Config{
		URL: wsURL(srv),
		Headers: func() http.Header {
			return http.Header{"Authorization": []string{"Bearer " + token.Load().(string)}}
		},
		RefreshToken: func(context.Context) error {
			token.Store("tok-new")
			return nil
		},
		OnRefresh:         func(context.Context) error { return nil },
		HeartbeatInterval: 10 * time.Millisecond,
		ReconnectDelay:    10 * time.Millisecond,
	})
	ch.Start(context.Background())
	defer ch.Close()

	waitFor(t, 2*time.Second, func() bool { return ws.dials.Load() >= 2 })
	waitFor(t, 2*time.Second, func() bool {
		auth, _ := ws.lastAuth.Load().(string)
		return auth == "Bearer tok-new"
	})
}

func TestChannel_CloseStopsEverything(t *testing.T) {
	t.Parallel()
	ws := &wsServer{}
	srv := httptest.NewServer(ws.handler(t))
	defer srv.Close()

	ch := New(Config{
		URL:               wsURL(srv),
		Headers:           func() http.Header { return nil },
		OnRefresh:         func(context.Context) error { return nil },
		HeartbeatInterval: 10 * time.Millisecond,
	})
	ch.Start(context.Background())
	waitFor(t, 2*time.Second, func() bool { return ws.dials.Load() >= 1 })

	done := make(chan struct{})
	go func() {
		ch.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return; leaked pump goroutines")
	}
}
