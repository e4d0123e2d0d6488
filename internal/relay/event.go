// Package relay implements the routing core of the support bridge: the
// classification of inbound events, the bootstrap of new users into forum
// topics, and the forwarding of payloads between private chats and the
// operator group.
package relay

// Origin says which side of the bridge an event came from.
type Origin string

const (
	OriginPrivate Origin = "private"
	OriginGroup   Origin = "group"
)

// Payload kinds. Only these four are forwardable; everything else
// (stickers, voice, location, ...) is decoded as PayloadUnsupported.
const (
	PayloadText        = "text"
	PayloadPhoto       = "photo"
	PayloadDocument    = "document"
	PayloadVideo       = "video"
	PayloadUnsupported = "unsupported"
)

// Payload is the tagged content of an inbound event, built once at the
// transport boundary so downstream code switches on Kind instead of
// re-checking optional fields.
type Payload struct {
	Kind    string
	Body    string // text body (PayloadText only)
	FileID  string // platform file reference (media kinds)
	Caption string // optional caption (media kinds)
}

// Forwardable reports whether the payload has a matching platform send call.
func (p Payload) Forwardable() bool {
	switch p.Kind {
	case PayloadText, PayloadPhoto, PayloadDocument, PayloadVideo:
		return true
	}
	return false
}

// Sender identifies who sent an event.
type Sender struct {
	ID        int64
	Username  string
	FirstName string
}

// DisplayName is the label recorded at bootstrap: username when set,
// first name otherwise.
func (s Sender) DisplayName() string {
	if s.Username != "" {
		return s.Username
	}
	return s.FirstName
}

// InboundEvent is the transport-neutral shape of one incoming message.
type InboundEvent struct {
	Sender   Sender
	ChatID   int64
	Origin   Origin
	ThreadID int64 // forum topic the message was posted in; 0 = none
	Payload  Payload
}
