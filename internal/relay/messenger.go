package relay

import (
	"context"
	"errors"
)

// ErrNoReceiver is returned when no background is attached to the messenger
var ErrNoReceiver = errors.New("Failed to connect to extension background script")

// Messenger delivers a Message to the background. A returned error means the
// message could not be delivered; analysis failures come back in Response.
type Messenger interface {
	Send(ctx context.Context, msg Message) (Response, error)
}

// LocalMessenger dispatches in-process to a Background
type LocalMessenger struct {
	background *Background
}

// NewLocalMessenger creates a messenger bound to bg
func NewLocalMessenger(bg *Background) *LocalMessenger {
	return &LocalMessenger{background: bg}
}

// Send implements Messenger
func (m *LocalMessenger) Send(ctx context.Context, msg Message) (Response, error) {
	if m.background == nil {
		return Response{}, ErrNoReceiver
	}
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return m.background.Handle(ctx, msg), nil
}
