package relay

import "context"

// Destination addresses an outbound send. ThreadID is set only when the
// target is a forum topic inside the operator group; private chats have no
// thread concept.
type Destination struct {
	ChatID   int64
	ThreadID int64
}

// Receipt is the delivery acknowledgment for a send. ThreadID carries the
// topic the platform actually placed the message in, which on some platforms
// is the only reliable way to learn a freshly created topic's identifier.
type Receipt struct {
	MessageID int64
	ThreadID  int64
}

// Client is the chat-platform surface the relay core depends on.
// The telegram package provides the production implementation.
type Client interface {
	// CreateThread creates a new topic with the given label in the group
	// and returns its thread identifier.
	CreateThread(ctx context.Context, groupID int64, label string) (int64, error)

	SendText(ctx context.Context, dest Destination, body string) (Receipt, error)
	SendPhoto(ctx context.Context, dest Destination, fileID, caption string) (Receipt, error)
	SendDocument(ctx context.Context, dest Destination, fileID, caption string) (Receipt, error)
	SendVideo(ctx context.Context, dest Destination, fileID, caption string) (Receipt, error)
}
