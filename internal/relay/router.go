package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Artemis43/telegram-support-bot/internal/store"
)

// Class is the terminal state of event classification.
type Class string

const (
	ClassNewUser       Class = "new_user"
	ClassUserMessage   Class = "user_message"
	ClassOperatorReply Class = "operator_reply"
	ClassCommand       Class = "command"
	ClassIgnored       Class = "ignored"
)

// Decision is the outcome of classifying one inbound event.
type Decision struct {
	Class  Class
	Dest   Destination // resolved destination for UserMessage / OperatorReply
	Reason string      // set when Ignored
	Err    error       // set when the dead-end must reach the failure sink
}

// defaultCallTimeout bounds every remote call made while handling one event.
const defaultCallTimeout = 30 * time.Second

// Config carries the static routing parameters loaded once at startup.
type Config struct {
	// GroupID is the operator supergroup all user traffic is bridged into.
	GroupID int64
	// Operators is the allow-list of sender IDs whose group-thread replies
	// are routed back to users.
	Operators []int64
	// CallTimeout bounds remote calls per event (default 30s).
	CallTimeout time.Duration
}

// Router classifies inbound events and drives them to completion.
type Router struct {
	directory store.Directory
	forwarder *Forwarder
	bootstrap *Bootstrapper
	sink      FailureSink
	groupID   int64
	operators map[int64]struct{}
	timeout   time.Duration
}

// NewRouter builds the routing engine. All collaborators are explicit; the
// router holds no ambient state beyond the read-only allow-list.
func NewRouter(client Client, directory store.Directory, sink FailureSink, cfg Config) *Router {
	ops := make(map[int64]struct{}, len(cfg.Operators))
	for _, id := range cfg.Operators {
		ops[id] = struct{}{}
	}
	timeout := cfg.CallTimeout
	if timeout == 0 {
		timeout = defaultCallTimeout
	}
	return &Router{
		directory: directory,
		forwarder: NewForwarder(client),
		bootstrap: NewBootstrapper(client, directory, sink, cfg.GroupID),
		sink:      sink,
		groupID:   cfg.GroupID,
		operators: ops,
		timeout:   timeout,
	}
}

// Classify applies the routing rules in order:
//  1. group + allow-listed sender + thread + forwardable payload →
//     OperatorReply (reverse lookup)
//  2. any other group traffic → Ignored (prevents admin chatter and loops)
//  3. private: command → Command; unsupported payload → Ignored;
//     known chat → UserMessage; unknown chat → NewUser
func (r *Router) Classify(ctx context.Context, ev InboundEvent) Decision {
	if ev.Origin == OriginGroup {
		if r.isOperator(ev.Sender.ID) && ev.ThreadID != 0 {
			if !ev.Payload.Forwardable() {
				return Decision{Class: ClassIgnored, Reason: "unsupported payload kind"}
			}
			chatID, ok, err := r.directory.ChatByThread(ctx, ev.ThreadID)
			if err != nil {
				return Decision{Class: ClassIgnored, Reason: "reverse lookup failed", Err: err}
			}
			if !ok {
				return Decision{
					Class:  ClassIgnored,
					Reason: "no user for thread",
					Err:    fmt.Errorf("no user for thread %d", ev.ThreadID),
				}
			}
			return Decision{Class: ClassOperatorReply, Dest: Destination{ChatID: chatID}}
		}
		return Decision{Class: ClassIgnored, Reason: "group traffic without reply context"}
	}

	if isCommand(ev.Payload) {
		return Decision{Class: ClassCommand}
	}
	if !ev.Payload.Forwardable() {
		return Decision{Class: ClassIgnored, Reason: "unsupported payload kind"}
	}

	threadID, ok, err := r.directory.ThreadByChat(ctx, ev.ChatID)
	if err != nil {
		return Decision{Class: ClassIgnored, Reason: "directory lookup failed", Err: err}
	}
	if !ok {
		return Decision{Class: ClassNewUser}
	}
	return Decision{Class: ClassUserMessage, Dest: Destination{ChatID: r.groupID, ThreadID: threadID}}
}

// Handle runs one event to completion. Every failure is reported and the
// event dropped; Handle never returns an error to the transport layer.
func (r *Router) Handle(ctx context.Context, ev InboundEvent) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	decision := r.Classify(ctx, ev)
	switch decision.Class {
	case ClassIgnored:
		if decision.Err != nil {
			r.sink.Report(FailureUnroutable, decision.Err,
				"chat_id", ev.ChatID, "thread_id", ev.ThreadID, "sender_id", ev.Sender.ID)
			return
		}
		slog.Debug("event ignored",
			"reason", decision.Reason,
			"origin", string(ev.Origin),
			"chat_id", ev.ChatID,
			"payload_kind", ev.Payload.Kind,
		)

	case ClassCommand:
		r.handleCommand(ctx, ev)

	case ClassOperatorReply:
		if err := r.forwarder.Forward(ctx, decision.Dest, ev.Payload); err != nil {
			r.sink.Report(FailureTransport, err,
				"source_thread_id", ev.ThreadID, "dest_chat_id", decision.Dest.ChatID)
		}

	case ClassUserMessage:
		r.forwardToThread(ctx, ev, decision.Dest)

	case ClassNewUser:
		threadID, err := r.bootstrap.Bootstrap(ctx, ev)
		if err != nil {
			// Already reported by the bootstrapper with full context.
			return
		}
		r.forwardToThread(ctx, ev, Destination{ChatID: r.groupID, ThreadID: threadID})
	}
}

func (r *Router) forwardToThread(ctx context.Context, ev InboundEvent, dest Destination) {
	if err := r.forwarder.Forward(ctx, dest, ev.Payload); err != nil {
		r.sink.Report(FailureTransport, err,
			"source_chat_id", ev.ChatID, "dest_thread_id", dest.ThreadID)
	}
}

// handleCommand covers private-chat bot commands. /start bootstraps the user
// if needed (first contact) or re-greets an already known one; anything else
// is never forwarded into the group.
func (r *Router) handleCommand(ctx context.Context, ev InboundEvent) {
	cmd := strings.Fields(ev.Payload.Body)[0]
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	if cmd != "/start" {
		slog.Debug("command ignored", "command", cmd, "chat_id", ev.ChatID)
		return
	}

	_, known, err := r.directory.ThreadByChat(ctx, ev.ChatID)
	if err != nil {
		r.sink.Report(FailureStore, err, "chat_id", ev.ChatID)
		return
	}
	if !known {
		if _, err := r.bootstrap.Bootstrap(ctx, ev); err != nil {
			return
		}
		return
	}
	// Known user: bootstrap already ran once, just greet again.
	r.bootstrap.Greet(ctx, ev)
}

func (r *Router) isOperator(id int64) bool {
	_, ok := r.operators[id]
	return ok
}

// isCommand reports whether a private text payload is a bot command.
func isCommand(p Payload) bool {
	return p.Kind == PayloadText && strings.HasPrefix(p.Body, "/") && len(strings.TrimSpace(p.Body)) > 1
}
