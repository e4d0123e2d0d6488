package telegram

import (
	"github.com/mymmrac/telego"

	"github.com/Artemis43/telegram-support-bot/internal/relay"
)

// DecodeUpdate converts a Telegram update into the relay's inbound event
// shape. ok is false for updates that carry nothing routable: non-message
// updates, anonymous senders, and traffic from chats that are neither a
// private conversation nor the operator group.
func DecodeUpdate(update telego.Update, groupID int64) (relay.InboundEvent, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return relay.InboundEvent{}, false
	}

	var origin relay.Origin
	switch {
	case msg.Chat.ID == groupID:
		origin = relay.OriginGroup
	case msg.Chat.Type == "private":
		origin = relay.OriginPrivate
	default:
		// Some unrelated group the bot was added to.
		return relay.InboundEvent{}, false
	}

	ev := relay.InboundEvent{
		Sender: relay.Sender{
			ID:        msg.From.ID,
			Username:  msg.From.Username,
			FirstName: msg.From.FirstName,
		},
		ChatID:  msg.Chat.ID,
		Origin:  origin,
		Payload: decodePayload(msg),
	}

	// In non-forum groups message_thread_id is reply context, not a topic.
	if msg.Chat.IsForum {
		ev.ThreadID = int64(msg.MessageThreadID)
	}
	return ev, true
}

// decodePayload builds the tagged payload union once, at the transport
// boundary. Media checks mirror the send calls the forwarder can make;
// everything else becomes PayloadUnsupported.
func decodePayload(msg *telego.Message) relay.Payload {
	switch {
	case msg.Text != "":
		return relay.Payload{Kind: relay.PayloadText, Body: msg.Text}
	case len(msg.Photo) > 0:
		// Highest resolution is last.
		photo := msg.Photo[len(msg.Photo)-1]
		return relay.Payload{Kind: relay.PayloadPhoto, FileID: photo.FileID, Caption: msg.Caption}
	case msg.Document != nil:
		return relay.Payload{Kind: relay.PayloadDocument, FileID: msg.Document.FileID, Caption: msg.Caption}
	case msg.Video != nil:
		return relay.Payload{Kind: relay.PayloadVideo, FileID: msg.Video.FileID, Caption: msg.Caption}
	}
	return relay.Payload{Kind: relay.PayloadUnsupported}
}
