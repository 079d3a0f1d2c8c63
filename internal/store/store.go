package store

import (
	"context"
	"errors"

	"github.com/guerinoni/ghn/internal/model"
)

// ErrNotFound is returned when a lookup matches no cached notification.
var ErrNotFound = errors.New("notification not found")

// Cache holds the raw entries of the last successful fetch so actions can
// resolve their target by thread id or by list position. It is replaced
// wholesale on every fetch, never merged.
type Cache interface {
	ReplaceAll(ctx context.Context, seq uint64, notifications []model.Notification) error
	List(ctx context.Context) ([]model.Notification, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	GetByPosition(ctx context.Context, position int) (*model.Notification, error)
	CountUnread(ctx context.Context) (int, error)
	Seq(ctx context.Context) (uint64, error)
}
