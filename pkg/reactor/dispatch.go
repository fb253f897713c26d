package reactor

import (
	"context"
	"fmt"
	"time"

	"github.com/notaspat/notaspat/pkg/notes"
)

// Request is a typed message from a client surface. The closed set of
// variants keeps Dispatch exhaustive.
type Request interface {
	isRequest()
}

// GetBadgeCount asks for the current note count.
type GetBadgeCount struct{}

// UpdateBadge forces a badge refresh.
type UpdateBadge struct{}

// SetReminder sets or clears (nil When) the reminder of one note.
type SetReminder struct {
	ID   string
	When *time.Time
}

// GetStats asks for aggregate note statistics.
type GetStats struct{}

func (GetBadgeCount) isRequest() {}
func (UpdateBadge) isRequest()   {}
func (SetReminder) isRequest()   {}
func (GetStats) isRequest()      {}

// BadgeCountResponse answers GetBadgeCount.
type BadgeCountResponse struct {
	Count int `json:"count"`
}

// AckResponse answers requests that carry no payload back.
type AckResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// StatsResponse answers GetStats.
type StatsResponse struct {
	Stats notes.Stats `json:"stats"`
}

// Dispatch routes a client request. Unknown concrete types are a programming
// error and are reported as one rather than silently acked.
func (r *Reactor) Dispatch(ctx context.Context, req Request) (any, error) {
	switch req := req.(type) {
	case GetBadgeCount:
		count, err := r.store.Count(ctx)
		if err != nil {
			return nil, err
		}
		return BadgeCountResponse{Count: count}, nil

	case UpdateBadge:
		if err := r.UpdateBadge(ctx); err != nil {
			return AckResponse{Success: false, Error: err.Error()}, nil
		}
		return AckResponse{Success: true}, nil

	case SetReminder:
		note, err := r.store.SetReminder(ctx, req.ID, req.When)
		if err != nil {
			return AckResponse{Success: false, Error: err.Error()}, nil
		}
		if note == nil {
			return AckResponse{Success: false, Error: fmt.Sprintf("note %s not found", req.ID)}, nil
		}
		return AckResponse{Success: true}, nil

	case GetStats:
		stats, err := r.store.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return StatsResponse{Stats: stats}, nil

	default:
		return nil, fmt.Errorf("unknown request type %T", req)
	}
}
