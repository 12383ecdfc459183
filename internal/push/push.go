// Package push maintains the service's change-notification channel: a
// long-lived websocket that the client keeps alive with a fixed-interval
// heartbeat and that the server uses to announce list changes.
package push

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// HeartbeatPayload is the opaque keep-alive token; the web app sends
	// it every five seconds.
	HeartbeatPayload = "--heartbeat--"
	// RefreshPayload is the reserved server message meaning "your
	// shopping lists changed".
	RefreshPayload = "refresh-shopping-lists"

	DefaultHeartbeatInterval = 5 * time.Second
	DefaultReconnectDelay    = 5 * time.Second
)

// Config collects the channel's dependencies. Auth state is injected
// through the Headers factory so every reconnect picks up the current
// token without shared mutable statics.
type Config struct {
	URL string
	// Headers returns the connect-time auth headers (bearer token,
	// client identifier, API version).
	Headers func() http.Header
	// RefreshToken is invoked once after a transport-level error so the
	// next reconnection attempt dials with a fresh token.
	RefreshToken func(ctx context.Context) error
	// OnRefresh is invoked for each RefreshPayload message; it re-fetches
	// the snapshot and notifies observers.
	OnRefresh func(ctx context.Context) error

	HeartbeatInterval time.Duration
	ReconnectDelay    time.Duration
	Dialer            *websocket.Dialer
	Logger            *zap.Logger
}

// Channel is a reconnecting notification listener.
type Channel struct {
	cfg    Config
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates defaults and returns an idle channel.
func New(cfg Config) *Channel {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Channel{cfg: cfg}
}

// Start launches the connect/pump loop. It returns immediately; Close
// tears the channel down and waits for the loop to exit.
func (c *Channel) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(runCtx)
	}()
}

// Close stops the heartbeat and closes the connection. Safe to call once
// after Start.
func (c *Channel) Close() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *Channel) run(ctx context.Context) {
	log := c.cfg.Logger
	for {
		conn, _, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, c.cfg.Headers())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("websocket connect failed", zap.Error(err))
			c.recoverToken(ctx)
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		log.Info("connected to websocket")
		c.pump(ctx, conn)
		if ctx.Err() != nil {
			return
		}
		c.recoverToken(ctx)
		if !c.sleep(ctx) {
			return
		}
	}
}

// pump writes heartbeats and dispatches messages until the connection
// drops or ctx is cancelled.
func (c *Channel) pump(ctx context.Context, conn *websocket.Conn) {
	log := c.cfg.Logger

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(c.cfg.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pumpCtx.Done():
				// Unblocks the read loop as well.
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.TextMessage, []byte(HeartbeatPayload)); err != nil {
					log.Error("heartbeat write failed", zap.Error(err))
					cancel()
					return
				}
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if pumpCtx.Err() == nil {
				log.Error("disconnected from websocket", zap.Error(err))
			}
			cancel()
			break
		}
		if string(message) != RefreshPayload {
			continue
		}
		log.Info("refreshing shopping lists")
		if err := c.cfg.OnRefresh(pumpCtx); err != nil {
			log.Error("refresh after notification failed", zap.Error(err))
		}
	}
	wg.Wait()
}

// recoverToken performs the single reactive token refresh so the next
// dial carries a valid bearer token.
func (c *Channel) recoverToken(ctx context.Context) {
	if c.cfg.RefreshToken == nil {
		return
	}
	if err := c.cfg.RefreshToken(ctx); err != nil {
		c.cfg.Logger.Error("token refresh after websocket error failed", zap.Error(err))
	}
}

func (c *Channel) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	}
}
