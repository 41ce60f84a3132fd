package queue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange     = "menu.events"
	NotificationsQueue = "menu.notifications"

	NotificationJobsExchange = "menu.notification_jobs"
	NotificationJobsQueue    = "menu.notification_jobs.process"
	NotificationJobsDLQ      = "menu.notification_jobs.dlq"
	NotificationJobsRK       = "process"
	NotificationJobsDeadRK   = "dead"

	RKOrderPlaced        = "order.placed"
	RKOrderStatusUpdated = "order.status.updated"
	RKPaymentUpdated     = "order.payment.updated"
	RKTableStatusUpdated = "table.status.updated"
)

// OrderEvent is the envelope published on the events exchange whenever an
// order or table changes. The routing key matches the Type field.
type OrderEvent struct {
	Type        string     `json:"type"`
	CustomerID  int64      `json:"customerId"`
	PhoneNumber string     `json:"phoneNumber"`
	OrderID     int64      `json:"orderId,omitempty"`
	Status      string     `json:"status,omitempty"`
	TableNumber string     `json:"tableNumber,omitempty"`
	FloorNumber string     `json:"floorNumber,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// NotificationJob is the unit of work consumed by the notification worker.
type NotificationJob struct {
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
	CreatedAt string         `json:"createdAt"`
	Attempt   int            `json:"attempt"`
}

// EnsureTopology declares the events exchange, the notifications queue bound
// to order and table routing keys, and the notification-jobs pipeline with
// its dead-letter queue.
func EnsureTopology(ctx context.Context, qc *Client) error {
	if qc == nil {
		return nil
	}

	if err := qc.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(NotificationsQueue); err != nil {
		return err
	}
	if err := qc.BindQueue(NotificationsQueue, EventsExchange, "order.#"); err != nil {
		return err
	}
	if err := qc.BindQueue(NotificationsQueue, EventsExchange, "table.#"); err != nil {
		return err
	}

	if err := qc.EnsureExchangeKind(NotificationJobsExchange, "direct"); err != nil {
		return err
	}
	if _, err := qc.EnsureQueue(NotificationJobsDLQ); err != nil {
		return err
	}
	if err := qc.BindQueue(NotificationJobsDLQ, NotificationJobsExchange, NotificationJobsDeadRK); err != nil {
		return err
	}
	_, err := qc.EnsureQueueWithArgs(NotificationJobsQueue, amqp.Table{
		"x-dead-letter-exchange":    NotificationJobsExchange,
		"x-dead-letter-routing-key": NotificationJobsDeadRK,
	})
	if err != nil {
		return err
	}
	return qc.BindQueue(NotificationJobsQueue, NotificationJobsExchange, NotificationJobsRK)
}

// TranslateEvent maps an order event to the notification job it should
// produce, or nil when the event kind does not notify anyone.
func TranslateEvent(evt OrderEvent, now time.Time) *NotificationJob {
	kind := ""
	switch strings.TrimSpace(evt.Type) {
	case RKOrderPlaced:
		kind = "push.order_placed"
	case RKOrderStatusUpdated:
		kind = "push.order_status"
	case RKPaymentUpdated:
		kind = "push.payment_status"
	case RKTableStatusUpdated:
		kind = "push.table_status"
	default:
		return nil
	}

	payload := map[string]any{
		"customerId":  evt.CustomerID,
		"phoneNumber": evt.PhoneNumber,
	}
	if evt.OrderID != 0 {
		payload["orderId"] = evt.OrderID
	}
	if evt.Status != "" {
		payload["status"] = evt.Status
	}
	if evt.TableNumber != "" {
		payload["tableNumber"] = evt.TableNumber
	}
	if evt.FloorNumber != "" {
		payload["floorNumber"] = evt.FloorNumber
	}

	return &NotificationJob{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: now.UTC().Format(time.RFC3339),
		Attempt:   1,
	}
}

// ProcessEventToJobs consumes one raw event body, enriches it with the
// customer's display name and forwards a job to the notification-jobs queue.
func ProcessEventToJobs(ctx context.Context, db *pgxpool.Pool, qc *Client, body []byte) error {
	if db == nil || qc == nil {
		return nil
	}

	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return err
	}

	job := TranslateEvent(evt, time.Now())
	if job == nil {
		return nil
	}

	var customerName string
	query := `select name from customers where id = $1`
	if err := db.QueryRow(ctx, query, evt.CustomerID).Scan(&customerName); err == nil {
		job.Payload["customerName"] = customerName
	}

	return qc.PublishJSON(ctx, NotificationJobsExchange, NotificationJobsRK, job)
}
