package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/pawtrip/internal/chat"
	"github.com/suPer8Hu/pawtrip/internal/store/rabbitmq"
)

type enricher interface {
	EnrichTrip(ctx context.Context, tripID string) error
}

// republishFunc parks body for delay before it is delivered again.
type republishFunc func(ctx context.Context, body []byte, attempt int, delay time.Duration) error

type deliveryHandler struct {
	svc         enricher
	republish   republishFunc
	maxAttempts int
	jobTimeout  time.Duration
	retryDelay  time.Duration
}

// handle settles exactly one delivery. Jobs already started run to
// completion on shutdown; jobs not started yet go back to the queue.
func (h *deliveryHandler) handle(ctx context.Context, workerID int, d amqp.Delivery) {
	if ctx.Err() != nil {
		_ = d.Nack(false, true)
		return
	}

	var m rabbitmq.TripMessage
	if err := json.Unmarshal(d.Body, &m); err != nil || m.TripID == "" {
		slog.Warn("bad message", "worker", workerID, "err", err)
		_ = d.Nack(false, false)
		return
	}

	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.jobTimeout)
	defer cancel()

	start := time.Now()
	err := h.svc.EnrichTrip(jobCtx, m.TripID)
	switch {
	case err == nil:
		if err := d.Ack(false); err != nil {
			slog.Error("ack failed", "worker", workerID, "trip_id", m.TripID, "err", err)
		}
		slog.Info("trip enriched", "worker", workerID, "trip_id", m.TripID, "cost", time.Since(start))
	case errors.Is(err, chat.ErrTripNotFound):
		slog.Warn("trip not found", "worker", workerID, "trip_id", m.TripID)
		_ = d.Nack(false, false)
	default:
		h.retry(jobCtx, workerID, d, m, err)
	}
}

// retry parks a failed delivery on the retry queue with a growing delay,
// or dead-letters it once the attempt budget is spent.
func (h *deliveryHandler) retry(ctx context.Context, workerID int, d amqp.Delivery, m rabbitmq.TripMessage, cause error) {
	attempt := rabbitmq.Attempt(d) + 1
	if attempt >= h.maxAttempts {
		slog.Error("trip enrichment failed, dead-lettering", "worker", workerID, "trip_id", m.TripID, "attempt", attempt, "err", cause)
		_ = d.Nack(false, false)
		return
	}

	delay := time.Duration(attempt) * h.retryDelay
	if err := h.republish(ctx, d.Body, attempt, delay); err != nil {
		slog.Error("retry publish failed, requeueing", "worker", workerID, "trip_id", m.TripID, "err", err)
		_ = d.Nack(false, true)
		return
	}
	slog.Warn("trip enrichment failed, retrying", "worker", workerID, "trip_id", m.TripID, "attempt", attempt, "delay", delay, "err", cause)
	_ = d.Ack(false)
}
