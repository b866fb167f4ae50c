package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not_found")

type CreateRequest struct {
	Type       Type
	Severity   Severity
	Title      string
	Message    string
	EntityType string
	EntityID   string
}

type ListRequest struct {
	UnreadOnly bool
	Limit      int
}

// Service owns notification creation: it persists the row (the durable
// source of truth), then pushes it to live clients best effort.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Notification, error)
	List(ctx context.Context, req ListRequest) ([]Notification, error)
	MarkRead(ctx context.Context, id string) error
}

// Broadcaster is the outbound fan-out channel notifications are pushed
// over after they are persisted.
type Broadcaster interface {
	Broadcast(message string)
}
