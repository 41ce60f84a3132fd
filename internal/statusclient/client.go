package statusclient

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"digital-menu-service/internal/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config wires a status client to one customer's table status feed.
type Config struct {
	WSURL          string
	BaseURL        string
	PhoneNumber    string
	ReconnectDelay time.Duration
	PollInterval   time.Duration
}

// Client follows a customer's table status over the websocket feed, with a
// REST polling fallback for when the socket is down. Updates for other
// customers are dropped client-side since the feed is broadcast to everyone.
type Client struct {
	cfg    Config
	logger *zap.Logger

	onUpdate func(ws.StatusUpdate)

	mu     sync.RWMutex
	latest ws.StatusUpdate
	seen   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config, logger *zap.Logger, onUpdate func(ws.StatusUpdate)) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Client{cfg: cfg, logger: logger, onUpdate: onUpdate}
}

// Start launches the websocket reader and the polling loop. Both run until
// Stop is called or the parent context is cancelled.
func (c *Client) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		c.runSocket(ctx)
	}()
	go func() {
		defer c.wg.Done()
		c.runPolling(ctx)
	}()
}

func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

// Latest returns the most recent status seen for the configured phone number.
func (c *Client) Latest() (ws.StatusUpdate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest, c.seen
}

func (c *Client) apply(update ws.StatusUpdate) {
	if update.PhoneNumber != c.cfg.PhoneNumber {
		return
	}

	c.mu.Lock()
	c.latest = update
	c.seen = true
	c.mu.Unlock()

	if c.onUpdate != nil {
		c.onUpdate(update)
	}
}

type statusMessage struct {
	Type string          `json:"type"`
	Data ws.StatusUpdate `json:"data"`
}

func (c *Client) runSocket(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.WSURL, nil)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("table-status socket dial failed", zap.Error(err))
			}
			if !sleepCtx(ctx, c.cfg.ReconnectDelay) {
				return
			}
			continue
		}

		closeOnDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-closeOnDone:
			}
		}()

		for {
			var msg statusMessage
			if err := conn.ReadJSON(&msg); err != nil {
				break
			}
			switch msg.Type {
			case "ping":
				// A failed pong surfaces on the next read.
				_ = conn.WriteJSON(map[string]any{"type": "pong"})
			case "tableStatusUpdate":
				c.apply(msg.Data)
			}
		}

		close(closeOnDone)
		_ = conn.Close()

		if !sleepCtx(ctx, c.cfg.ReconnectDelay) {
			return
		}
	}
}

type pollEnvelope struct {
	Success bool            `json:"success"`
	Data    ws.StatusUpdate `json:"data"`
}

func (c *Client) runPolling(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.pollOnce(ctx)
		}
	}
}

func (c *Client) pollOnce(ctx context.Context) {
	url := c.cfg.BaseURL + "/api/customers/" + c.cfg.PhoneNumber + "/table-status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("table-status poll failed", zap.Error(err))
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return
	}

	var envelope pollEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || !envelope.Success {
		return
	}
	c.apply(envelope.Data)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
