// Package telegram connects the relay core to the Telegram Bot API via telego.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/Artemis43/telegram-support-bot/internal/relay"
)

// Client implements relay.Client over a telego bot.
type Client struct {
	bot *telego.Bot
}

// NewClient creates the Telegram client. proxy is optional.
func NewClient(token, proxy string) (*Client, error) {
	var opts []telego.BotOption
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", proxy, err)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}

	bot, err := telego.NewBot(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Client{bot: bot}, nil
}

// Bot exposes the underlying telego bot for lifecycle wiring.
func (c *Client) Bot() *telego.Bot { return c.bot }

func (c *Client) CreateThread(ctx context.Context, groupID int64, label string) (int64, error) {
	topic, err := c.bot.CreateForumTopic(ctx, &telego.CreateForumTopicParams{
		ChatID: tu.ID(groupID),
		Name:   label,
	})
	if err != nil {
		return 0, fmt.Errorf("create forum topic %q: %w", label, err)
	}
	return int64(topic.MessageThreadID), nil
}

func (c *Client) SendText(ctx context.Context, dest relay.Destination, body string) (relay.Receipt, error) {
	params := tu.Message(tu.ID(dest.ChatID), body)
	if dest.ThreadID > 0 {
		params.MessageThreadID = int(dest.ThreadID)
	}
	msg, err := c.bot.SendMessage(ctx, params)
	if err != nil {
		return relay.Receipt{}, err
	}
	return receipt(msg), nil
}

func (c *Client) SendPhoto(ctx context.Context, dest relay.Destination, fileID, caption string) (relay.Receipt, error) {
	params := &telego.SendPhotoParams{
		ChatID:  tu.ID(dest.ChatID),
		Photo:   tu.FileFromID(fileID),
		Caption: caption,
	}
	if dest.ThreadID > 0 {
		params.MessageThreadID = int(dest.ThreadID)
	}
	msg, err := c.bot.SendPhoto(ctx, params)
	if err != nil {
		return relay.Receipt{}, err
	}
	return receipt(msg), nil
}

func (c *Client) SendDocument(ctx context.Context, dest relay.Destination, fileID, caption string) (relay.Receipt, error) {
	params := &telego.SendDocumentParams{
		ChatID:   tu.ID(dest.ChatID),
		Document: tu.FileFromID(fileID),
		Caption:  caption,
	}
	if dest.ThreadID > 0 {
		params.MessageThreadID = int(dest.ThreadID)
	}
	msg, err := c.bot.SendDocument(ctx, params)
	if err != nil {
		return relay.Receipt{}, err
	}
	return receipt(msg), nil
}

func (c *Client) SendVideo(ctx context.Context, dest relay.Destination, fileID, caption string) (relay.Receipt, error) {
	params := &telego.SendVideoParams{
		ChatID:  tu.ID(dest.ChatID),
		Video:   tu.FileFromID(fileID),
		Caption: caption,
	}
	if dest.ThreadID > 0 {
		params.MessageThreadID = int(dest.ThreadID)
	}
	msg, err := c.bot.SendVideo(ctx, params)
	if err != nil {
		return relay.Receipt{}, err
	}
	return receipt(msg), nil
}

func receipt(msg *telego.Message) relay.Receipt {
	if msg == nil {
		return relay.Receipt{}
	}
	return relay.Receipt{
		MessageID: int64(msg.MessageID),
		ThreadID:  int64(msg.MessageThreadID),
	}
}
