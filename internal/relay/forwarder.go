package relay

import (
	"context"
	"fmt"
)

// Forwarder re-emits a payload to a destination, selecting the platform
// call that matches the payload kind and preserving any caption.
type Forwarder struct {
	client Client
}

// NewForwarder creates a forwarder over the given platform client.
func NewForwarder(client Client) *Forwarder {
	return &Forwarder{client: client}
}

// Forward sends the payload to dest. The caller decides whether dest
// carries a thread identifier; the forwarder never adds one.
func (f *Forwarder) Forward(ctx context.Context, dest Destination, p Payload) error {
	var err error
	switch p.Kind {
	case PayloadText:
		_, err = f.client.SendText(ctx, dest, p.Body)
	case PayloadPhoto:
		_, err = f.client.SendPhoto(ctx, dest, p.FileID, p.Caption)
	case PayloadDocument:
		_, err = f.client.SendDocument(ctx, dest, p.FileID, p.Caption)
	case PayloadVideo:
		_, err = f.client.SendVideo(ctx, dest, p.FileID, p.Caption)
	default:
		return fmt.Errorf("payload kind %q is not forwardable", p.Kind)
	}
	if err != nil {
		return fmt.Errorf("forward %s to chat %d: %w", p.Kind, dest.ChatID, err)
	}
	return nil
}
