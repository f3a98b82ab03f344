package importing

import (
	"context"
	"time"
)

// Action is what the user decided for a pending file.
type Action string

const (
	ActionImport  Action = "import"
	ActionDiscard Action = "discard"
)

// ParseAction maps a route parameter to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionImport, ActionDiscard:
		return Action(s), nil
	default:
		return "", ErrInvalidAction
	}
}

// Resolution records the outcome of a user decision.
type Resolution struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Action     Action    `json:"action"`
	Success    bool      `json:"success"`
	Detail     string    `json:"detail"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// History stores resolutions for the recent activity view.
type History interface {
	Record(ctx context.Context, r Resolution) error
	Recent(ctx context.Context, limit int) ([]Resolution, error)
}
