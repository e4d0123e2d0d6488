package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mymmrac/telego"

	"github.com/Artemis43/telegram-support-bot/internal/relay"
)

// Dispatcher runs one decoded event to completion.
type Dispatcher interface {
	Handle(ctx context.Context, ev relay.InboundEvent)
}

// Channel owns the Telegram intake: either a registered webhook or a long
// polling loop, feeding decoded events into the dispatcher.
type Channel struct {
	client     *Client
	dispatcher Dispatcher
	groupID    int64
	pollCancel context.CancelFunc
	pollDone   chan struct{}
}

// NewChannel wires the intake side of the bridge.
func NewChannel(client *Client, dispatcher Dispatcher, groupID int64) *Channel {
	return &Channel{client: client, dispatcher: dispatcher, groupID: groupID}
}

// ProcessUpdate decodes one update and runs it to completion. Updates that
// decode to nothing routable are logged at debug level and dropped.
func (c *Channel) ProcessUpdate(ctx context.Context, update telego.Update) {
	ev, ok := DecodeUpdate(update, c.groupID)
	if !ok {
		slog.Debug("telegram update skipped", "update_id", update.UpdateID)
		return
	}
	slog.Debug("telegram event received",
		"origin", string(ev.Origin),
		"chat_id", ev.ChatID,
		"thread_id", ev.ThreadID,
		"payload_kind", ev.Payload.Kind,
	)
	c.dispatcher.Handle(ctx, ev)
}

// RegisterWebhook points Telegram at publicURL's webhook endpoint.
func (c *Channel) RegisterWebhook(ctx context.Context, publicURL, secret string) error {
	url := fmt.Sprintf("%s/webhook/%s", publicURL, secret)
	err := c.client.Bot().SetWebhook(ctx, &telego.SetWebhookParams{
		URL:            url,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	slog.Info("telegram webhook registered", "url", publicURL)
	return nil
}

// StartPolling begins long polling for updates. Used when no public URL is
// available (local runs, development).
func (c *Channel) StartPolling(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)")

	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.client.Bot().UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				c.ProcessUpdate(pollCtx, update)
			}
		}
	}()

	return nil
}

// Stop shuts down polling and waits for the loop to exit so Telegram
// releases the getUpdates lock before a new instance starts. No-op in
// webhook mode.
func (c *Channel) Stop() {
	if c.pollCancel == nil {
		return
	}
	c.pollCancel()
	select {
	case <-c.pollDone:
		slog.Info("telegram bot stopped")
	case <-time.After(10 * time.Second):
		slog.Warn("telegram polling loop did not exit within timeout")
	}
}
