package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"digital-menu-service/internal/config"
	"digital-menu-service/internal/phone"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StatusUpdate is the payload broadcast whenever a customer's table status
// changes. Every connected client receives every update and filters by phone
// number on its own side.
type StatusUpdate struct {
	CustomerID  int64     `json:"customerId"`
	PhoneNumber string    `json:"phoneNumber"`
	TableStatus string    `json:"tableStatus"`
	TableNumber string    `json:"tableNumber"`
	FloorNumber string    `json:"floorNumber"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Server struct {
	DB     *pgxpool.Pool
	Logger *zap.Logger
	Config config.Config

	tableStatusRealtime *tableStatusRealtime
}

func New(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *Server {
	srv := &Server{DB: db, Logger: logger, Config: cfg}
	srv.tableStatusRealtime = newTableStatusRealtime(db, logger, cfg)
	return srv
}

type wsRealtimeClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsRealtimeClient) writeJSON(value any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(value)
}

// ping is a JSON-level heartbeat rather than a websocket control frame, so
// browser clients can observe it and answer with a pong message.
func (c *wsRealtimeClient) ping() error {
	return c.writeJSON(map[string]any{"type": "ping"})
}

type tableStatusRealtime struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	cfg    config.Config

	started sync.Once
	mu      sync.RWMutex
	clients map[*wsRealtimeClient]struct{}
}

func newTableStatusRealtime(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config) *tableStatusRealtime {
	return &tableStatusRealtime{
		db:      db,
		logger:  logger,
		cfg:     cfg,
		clients: make(map[*wsRealtimeClient]struct{}),
	}
}

func (tr *tableStatusRealtime) ensureStarted() {
	tr.started.Do(func() {
		go tr.listenLoop(context.Background())
	})
}

func (tr *tableStatusRealtime) subscribe(client *wsRealtimeClient) (unsubscribe func()) {
	tr.mu.Lock()
	tr.clients[client] = struct{}{}
	tr.mu.Unlock()

	return func() {
		tr.mu.Lock()
		delete(tr.clients, client)
		tr.mu.Unlock()
	}
}

func (tr *tableStatusRealtime) broadcast(message any) {
	tr.mu.RLock()
	clients := make([]*wsRealtimeClient, 0, len(tr.clients))
	for c := range tr.clients {
		clients = append(clients, c)
	}
	tr.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(message); err != nil {
			_ = c.conn.Close()
			tr.mu.Lock()
			delete(tr.clients, c)
			tr.mu.Unlock()
		}
	}
}

func (tr *tableStatusRealtime) fetchStatusUpdate(ctx context.Context, phoneNumber string) (StatusUpdate, bool) {
	query := `
		select id, phone_number, table_status, table_number, floor_number, updated_at
		from customers
		where phone_number = $1
	`
	var update StatusUpdate
	if err := tr.db.QueryRow(ctx, query, phoneNumber).Scan(
		&update.CustomerID,
		&update.PhoneNumber,
		&update.TableStatus,
		&update.TableNumber,
		&update.FloorNumber,
		&update.UpdatedAt,
	); err != nil {
		return StatusUpdate{}, false
	}
	return update, true
}

// listenLoop holds a LISTEN connection on table_status_updates. The payload
// of each notification is the customer's phone number; the loop fetches the
// fresh snapshot and broadcasts it to every connected client. Reconnects use
// fixed delays: setup failures wait the setup retry delay, a dropped
// connection waits the reconnect delay.
func (tr *tableStatusRealtime) listenLoop(ctx context.Context) {
	for {
		conn, err := tr.db.Acquire(ctx)
		if err != nil {
			if tr.logger != nil {
				tr.logger.Warn("table-status LISTEN acquire failed", zap.Error(err))
			}
			time.Sleep(tr.cfg.WSSetupRetryDelay)
			continue
		}

		_, err = conn.Exec(ctx, `listen table_status_updates`)
		if err != nil {
			conn.Release()
			if tr.logger != nil {
				tr.logger.Warn("table-status LISTEN failed", zap.Error(err))
			}
			time.Sleep(tr.cfg.WSSetupRetryDelay)
			continue
		}

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				break
			}
			phoneNumber := strings.TrimSpace(n.Payload)
			if phoneNumber == "" {
				continue
			}

			update, found := tr.fetchStatusUpdate(ctx, phoneNumber)
			if !found {
				continue
			}

			tr.broadcast(map[string]any{"type": "tableStatusUpdate", "data": update})
		}

		conn.Release()
		time.Sleep(tr.cfg.WSReconnectDelay)
	}
}

// TableStatusWS upgrades the connection and streams table status updates for
// all customers; an optional phone query parameter triggers an immediate
// snapshot for that customer.
func (s *Server) TableStatusWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.tableStatusRealtime.ensureStarted()
	ctx := r.Context()
	client := &wsRealtimeClient{conn: conn}
	unsubscribe := s.tableStatusRealtime.subscribe(client)
	defer unsubscribe()

	if raw := r.URL.Query().Get("phone"); raw != "" {
		if update, found := s.tableStatusRealtime.fetchStatusUpdate(ctx, phone.Normalize(raw)); found {
			_ = client.writeJSON(map[string]any{"type": "tableStatusUpdate", "data": update})
		}
	}

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(s.Config.WSHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if err := client.ping(); err != nil {
				return
			}
		}
	}
}
