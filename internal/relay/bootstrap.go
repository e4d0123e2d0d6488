package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/Artemis43/telegram-support-bot/internal/store"
)

// sentinelText is posted into a freshly created topic so its thread
// identifier lands in the platform's own message history.
const sentinelText = "Thread created"

// Bootstrapper performs the one-time setup for a new user: create a forum
// topic, record the chat↔thread mapping, greet the user.
type Bootstrapper struct {
	client    Client
	directory store.Directory
	sink      FailureSink
	groupID   int64
}

// NewBootstrapper wires the bootstrap path.
func NewBootstrapper(client Client, directory store.Directory, sink FailureSink, groupID int64) *Bootstrapper {
	return &Bootstrapper{client: client, directory: directory, sink: sink, groupID: groupID}
}

// Bootstrap runs the first-contact sequence for ev's sender and returns the
// thread the triggering message should be forwarded into.
//
// Each step must succeed before the next. A failure before the mapping is
// persisted leaves no partial state, so the whole sequence reruns on the
// user's next message. A persist failure after the topic exists orphans the
// remote topic; that is reported and the user still gets a greeting.
func (b *Bootstrapper) Bootstrap(ctx context.Context, ev InboundEvent) (int64, error) {
	name := ev.Sender.DisplayName()
	label := fmt.Sprintf("%d_%s", ev.ChatID, name)

	threadID, err := b.client.CreateThread(ctx, b.groupID, label)
	if err != nil {
		b.sink.Report(FailureThreadCreation, err, "chat_id", ev.ChatID, "label", label)
		return 0, fmt.Errorf("create thread for chat %d: %w", ev.ChatID, err)
	}

	receipt, err := b.client.SendText(ctx, Destination{ChatID: b.groupID, ThreadID: threadID}, sentinelText)
	if err != nil {
		b.sink.Report(FailureThreadCreation, err, "chat_id", ev.ChatID, "thread_id", threadID)
		return 0, fmt.Errorf("post sentinel in thread %d: %w", threadID, err)
	}
	// The sentinel's receipt is authoritative: some platforms only expose a
	// topic's real identifier on a posted message, not on the creation call.
	if receipt.ThreadID != 0 {
		threadID = receipt.ThreadID
	}

	persistErr := b.directory.Create(ctx, store.Mapping{
		ChatID:      ev.ChatID,
		DisplayName: name,
		ThreadID:    threadID,
	})
	switch {
	case errors.Is(persistErr, store.ErrDuplicate):
		// Lost a concurrent first-contact race. The topic just created is
		// orphaned; route through the winning row's thread instead.
		b.sink.Report(FailureDuplicateMapping, persistErr,
			"chat_id", ev.ChatID, "orphaned_thread_id", threadID)
		if winner, ok, lookupErr := b.directory.ThreadByChat(ctx, ev.ChatID); lookupErr == nil && ok {
			threadID = winner
		}
		persistErr = nil
	case persistErr != nil:
		b.sink.Report(FailureStore, persistErr, "chat_id", ev.ChatID, "orphaned_thread_id", threadID)
	}

	// Greeting is best-effort and independent of forwarding the message
	// that triggered bootstrap.
	b.Greet(ctx, ev)

	if persistErr != nil {
		return 0, fmt.Errorf("persist mapping for chat %d: %w", ev.ChatID, persistErr)
	}
	return threadID, nil
}

// Greet sends the welcome message to the user's private chat.
func (b *Bootstrapper) Greet(ctx context.Context, ev InboundEvent) {
	greeting := fmt.Sprintf("Hello %s\U0001F44B,\nHow can I assist you today?", ev.Sender.DisplayName())
	if _, err := b.client.SendText(ctx, Destination{ChatID: ev.ChatID}, greeting); err != nil {
		b.sink.Report(FailureTransport, err, "chat_id", ev.ChatID)
	}
}
