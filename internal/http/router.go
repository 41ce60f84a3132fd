package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"digital-menu-service/internal/config"
	"digital-menu-service/internal/http/handlers"
	"digital-menu-service/internal/middleware"
	"digital-menu-service/internal/queue"
	"digital-menu-service/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func NewRouter(db *pgxpool.Pool, logger *zap.Logger, cfg config.Config, queueClient *queue.Client, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
				"Pragma",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{DB: db, Logger: logger, Config: cfg, Queue: queueClient}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/customers", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Get("/{phoneNumber}", h.GetCustomer)
		r.Post("/{phoneNumber}/logout", h.Logout)
		r.Patch("/{phoneNumber}/seating", h.Seat)
		r.Get("/{phoneNumber}/table-status", h.GetTableStatus)
		r.Patch("/{phoneNumber}/table-status", h.UpdateTableStatus)
		r.Get("/{phoneNumber}/favorites", h.ListFavorites)
		r.Post("/{phoneNumber}/favorites", h.AddFavorite)
		r.Delete("/{phoneNumber}/favorites/{menuItemId}", h.RemoveFavorite)
		r.Get("/{phoneNumber}/invoice", h.GenerateInvoice)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/customer/{customerId}", h.ListCustomerOrders)
		r.Delete("/customer/{customerId}", h.DeleteCustomerOrders)
		r.Get("/{orderId}", h.GetOrder)
		r.Delete("/{orderId}", h.DeleteOrder)
		r.Patch("/{orderId}/status", h.UpdateOrderStatus)
		r.Patch("/{orderId}/payment", h.UpdatePayment)
	})

	r.Route("/api/menu-items", func(r chi.Router) {
		r.Get("/", h.ListMenu)
		r.Get("/categories", h.ListCategories)
		r.Get("/category/{category}", h.ListMenuByCategory)
		r.Get("/{menuItemId}", h.GetMenuItem)
	})

	r.Get("/ws/table-status", wsServer.TableStatusWS)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
