// Recsengine - Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/recsengine

package eventprocessor

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// validatable is implemented by every event type.
type validatable interface {
	Validate() error
}

// Marshal validates an event and converts it to JSON bytes.
func Marshal(event validatable) ([]byte, error) {
	if err := event.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DecodeSimilarityRecompute converts a message payload to an event.
func DecodeSimilarityRecompute(msg *message.Message) (*SimilarityRecompute, error) {
	var event SimilarityRecompute
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", EventTypeSimilarityRecompute, errorsJoinInvalid(err))
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

// DecodeInteractionTracked converts a message payload to an event.
func DecodeInteractionTracked(msg *message.Message) (*InteractionTracked, error) {
	var event InteractionTracked
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", EventTypeInteractionTracked, errorsJoinInvalid(err))
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	return &event, nil
}

// newMessage builds a watermill message whose UUID is the event ID, so the
// NATS publisher can use it for JetStream deduplication.
func newMessage(eventID, eventType string, event validatable) (*message.Message, error) {
	data, err := Marshal(event)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(eventID, data)
	msg.Metadata.Set("event_type", eventType)
	return msg, nil
}

func errorsJoinInvalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
}
