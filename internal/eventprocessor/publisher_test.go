// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/recsengine/internal/logging"
	"github.com/tomtom215/recsengine/internal/recommend"
)

// recordingPublisher is a message.Publisher that records or fails publishes.
type recordingPublisher struct {
	mu     sync.Mutex
	fail   error
	topics []string
	msgs   []*message.Message
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.msgs = append(p.msgs, m)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.msgs)
}

func TestPublisher_SetsHeaders(t *testing.T) {
	t.Parallel()

	rec := &recordingPublisher{}
	pub := NewPublisher(rec, testTopics, zerolog.Nop())

	ctx := logging.ContextWithCorrelationID(context.Background(), "corr-1")
	if err := pub.PublishSimilarityRecompute(ctx, "p1", recommend.ProductData{Category: "audio"}); err != nil {
		t.Fatalf("PublishSimilarityRecompute() = %v", err)
	}

	if rec.published() != 1 {
		t.Fatalf("published %d messages, want 1", rec.published())
	}
	msg := rec.msgs[0]
	if rec.topics[0] != testTopics.Similarity {
		t.Errorf("topic = %q", rec.topics[0])
	}
	if got := msg.Metadata.Get(natsgo.MsgIdHdr); got != msg.UUID {
		t.Errorf("Nats-Msg-Id = %q, want message UUID %q", got, msg.UUID)
	}
	if got := msg.Metadata.Get("correlation_id"); got != "corr-1" {
		t.Errorf("correlation_id = %q", got)
	}
	if got := msg.Metadata.Get("product_id"); got != "p1" {
		t.Errorf("product_id = %q", got)
	}
}

func TestPublisher_RejectsInvalidRecompute(t *testing.T) {
	t.Parallel()

	rec := &recordingPublisher{}
	pub := NewPublisher(rec, testTopics, zerolog.Nop())

	if err := pub.PublishSimilarityRecompute(context.Background(), "", recommend.ProductData{}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("error = %v, want ErrInvalidEvent", err)
	}
	if rec.published() != 0 {
		t.Error("invalid event was published")
	}
}

func TestPublisher_Closed(t *testing.T) {
	t.Parallel()

	pub := NewPublisher(&recordingPublisher{}, testTopics, zerolog.Nop())
	if err := pub.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	err := pub.Publish(context.Background(), "topic", message.NewMessage("m1", nil))
	if !errors.Is(err, ErrPublisherClosed) {
		t.Errorf("Publish() after Close = %v, want ErrPublisherClosed", err)
	}
}

func TestPublisher_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	rec := &recordingPublisher{fail: errors.New("connection refused")}
	pub := NewPublisher(rec, testTopics, zerolog.Nop())
	pub.SetCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "test-publisher",
		MaxRequests:      1,
		Timeout:          time.Minute,
		FailureThreshold: 2,
	}, zerolog.Nop()))

	for i := 0; i < 2; i++ {
		if err := pub.PublishSimilarityRecompute(context.Background(), "p1", recommend.ProductData{}); err == nil {
			t.Fatalf("publish %d should fail", i)
		}
	}

	err := pub.PublishSimilarityRecompute(context.Background(), "p1", recommend.ProductData{})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error after threshold = %v, want ErrOpenState", err)
	}
}

func TestPublisher_InteractionTracked(t *testing.T) {
	t.Parallel()

	in := recommend.Interaction{UserID: "u1", ProductID: "p1", Type: recommend.InteractionAddToCart}

	t.Run("publishes to interaction topic", func(t *testing.T) {
		t.Parallel()
		rec := &recordingPublisher{}
		NewPublisher(rec, testTopics, zerolog.Nop()).InteractionTracked(context.Background(), in)

		if rec.published() != 1 || rec.topics[0] != testTopics.Interaction {
			t.Fatalf("topics = %v", rec.topics)
		}
		if got := rec.msgs[0].Metadata.Get("interaction_type"); got != "add_to_cart" {
			t.Errorf("interaction_type = %q", got)
		}
	})

	t.Run("disabled without topic", func(t *testing.T) {
		t.Parallel()
		rec := &recordingPublisher{}
		NewPublisher(rec, Topics{Similarity: "s"}, zerolog.Nop()).InteractionTracked(context.Background(), in)
		if rec.published() != 0 {
			t.Error("published without an interaction topic")
		}
	})

	t.Run("failure is swallowed", func(t *testing.T) {
		t.Parallel()
		rec := &recordingPublisher{fail: errors.New("down")}
		NewPublisher(rec, testTopics, zerolog.Nop()).InteractionTracked(context.Background(), in)
	})
}

func TestPublisher_ImplementsTrackListener(t *testing.T) {
	t.Parallel()

	var _ recommend.TrackListener = NewPublisher(&recordingPublisher{}, testTopics, zerolog.Nop())
}
