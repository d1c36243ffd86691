// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/recsengine/internal/config"
)

func TestNewTransport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		backend string
		wantNil bool
		wantErr error
	}{
		{name: "none", backend: config.EventsNone, wantNil: true},
		{name: "empty", backend: "", wantNil: true},
		{name: "channel", backend: config.EventsChannel},
		{name: "unknown", backend: "kafka", wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			transport, err := NewTransport(context.Background(), &config.EventsConfig{Backend: tt.backend}, zerolog.Nop())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewTransport() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTransport() = %v", err)
			}
			if tt.wantNil {
				if transport != nil {
					t.Errorf("transport = %+v, want nil", transport)
				}
				return
			}

			if transport.Publisher == nil || transport.Subscriber == nil {
				t.Fatal("transport missing publisher or subscriber")
			}
			if transport.Backend != tt.backend {
				t.Errorf("Backend = %q", transport.Backend)
			}
			if err := transport.Close(context.Background()); err != nil {
				t.Errorf("Close() = %v", err)
			}
			// closing twice is a no-op
			if err := transport.Close(context.Background()); err != nil {
				t.Errorf("second Close() = %v", err)
			}
		})
	}
}

func TestTopicsFromConfig(t *testing.T) {
	t.Parallel()

	topics := TopicsFromConfig(&config.EventsConfig{
		SimilarityTopic:  "a",
		InteractionTopic: "b",
		PoisonTopic:      "c",
	})
	if topics != (Topics{Similarity: "a", Interaction: "b", Poison: "c"}) {
		t.Errorf("topics = %+v", topics)
	}
}
