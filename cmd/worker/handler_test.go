package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/pawtrip/internal/chat"
	"github.com/suPer8Hu/pawtrip/internal/store/rabbitmq"
)

type settled struct {
	acks, nacks, requeues int
}

func (s *settled) Ack(tag uint64, multiple bool) error { s.acks++; return nil }
func (s *settled) Nack(tag uint64, multiple, requeue bool) error {
	if requeue {
		s.requeues++
	} else {
		s.nacks++
	}
	return nil
}
func (s *settled) Reject(tag uint64, requeue bool) error { return s.Nack(tag, false, requeue) }

type enrichFunc func(ctx context.Context, tripID string) error

func (f enrichFunc) EnrichTrip(ctx context.Context, tripID string) error { return f(ctx, tripID) }

type parked struct {
	attempts []int
	delays   []time.Duration
	err      error
}

func (p *parked) republish(ctx context.Context, body []byte, attempt int, delay time.Duration) error {
	if p.err != nil {
		return p.err
	}
	p.attempts = append(p.attempts, attempt)
	p.delays = append(p.delays, delay)
	return nil
}

func newHandler(svc enricher, p *parked) *deliveryHandler {
	return &deliveryHandler{svc: svc, republish: p.republish, maxAttempts: 3, jobTimeout: time.Second, retryDelay: 5 * time.Second}
}

func delivery(ack *settled, body string, attempt int) amqp.Delivery {
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(body)}
	if attempt > 0 {
		d.Headers = amqp.Table{rabbitmq.AttemptHeader: int32(attempt)}
	}
	return d
}

const tripBody = `{"trip_id":"t-1","user_id":"7"}`

func TestHandle_Settlement(t *testing.T) {
	unavailable := fmt.Errorf("%w: places down", chat.ErrEnrichmentUnavailable)
	cases := []struct {
		name     string
		body     string
		attempt  int
		err      error
		want     settled
		attempts []int
	}{
		{"enriched", tripBody, 0, nil, settled{acks: 1}, nil},
		{"unknown trip", tripBody, 0, chat.ErrTripNotFound, settled{nacks: 1}, nil},
		{"bad body", `{"user_id":"7"}`, 0, nil, settled{nacks: 1}, nil},
		{"first failure is retried", tripBody, 0, unavailable, settled{acks: 1}, []int{1}},
		{"second failure is retried", tripBody, 1, unavailable, settled{acks: 1}, []int{2}},
		{"budget spent dead-letters", tripBody, 2, unavailable, settled{nacks: 1}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &parked{}
			h := newHandler(enrichFunc(func(context.Context, string) error { return tc.err }), p)
			ack := &settled{}

			h.handle(context.Background(), 0, delivery(ack, tc.body, tc.attempt))

			assert.Equal(t, tc.want, *ack)
			assert.Equal(t, tc.attempts, p.attempts)
		})
	}
}

func TestHandle_RetryDelayGrows(t *testing.T) {
	p := &parked{}
	h := newHandler(enrichFunc(func(context.Context, string) error { return errors.New("boom") }), p)

	h.handle(context.Background(), 0, delivery(&settled{}, tripBody, 0))
	h.handle(context.Background(), 0, delivery(&settled{}, tripBody, 1))
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, p.delays)
}

func TestHandle_RepublishFailureRequeues(t *testing.T) {
	p := &parked{err: errors.New("channel closed")}
	h := newHandler(enrichFunc(func(context.Context, string) error { return errors.New("boom") }), p)
	ack := &settled{}

	h.handle(context.Background(), 0, delivery(ack, tripBody, 0))
	assert.Equal(t, settled{requeues: 1}, *ack)
}

func TestHandle_ShutdownBeforeStartRequeues(t *testing.T) {
	called := false
	h := newHandler(enrichFunc(func(context.Context, string) error { called = true; return nil }), &parked{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ack := &settled{}

	h.handle(ctx, 0, delivery(ack, tripBody, 0))

	assert.False(t, called)
	assert.Equal(t, settled{requeues: 1}, *ack)
}

func TestHandle_ShutdownDuringJobLetsItFinish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := &parked{}
	h := newHandler(enrichFunc(func(jobCtx context.Context, _ string) error {
		cancel()
		return jobCtx.Err()
	}), p)
	ack := &settled{}

	h.handle(ctx, 0, delivery(ack, tripBody, 0))

	require.Error(t, ctx.Err())
	assert.Equal(t, settled{acks: 1}, *ack)
	assert.Empty(t, p.attempts)
}
