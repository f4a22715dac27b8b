package bot

import (
	"github.com/dalnet/sedbot/internal/correct"
	"github.com/dalnet/sedbot/internal/format"
	"github.com/dalnet/sedbot/internal/history"
	"github.com/dalnet/sedbot/internal/identifier"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Event is one inbound chat message, already stripped of protocol
// framing. Sender is the scope the message arrived in: the channel, or
// the counterpart's nick for private messages.
type Event struct {
	Sender  string
	Nick    string
	Text    string
	Private bool
	Action  bool
}

// MembershipKind tags a channel membership change.
type MembershipKind int

const (
	Part MembershipKind = iota
	Quit
	Kick
)

// MembershipEvent is a PART, QUIT or KICK as seen by the bot. Channel
// is empty for QUIT; Kicked is set only for KICK.
type MembershipEvent struct {
	Kind    MembershipKind
	Actor   string
	Channel string
	Kicked  string
}

// Processor turns inbound events into history mutations and correction
// replies. It owns the injected store; replies go out through the say
// collaborator and nothing else escapes. Handlers never fail outward:
// a message that can't be acted on is simply not replied to.
type Processor struct {
	store   *history.Store
	log     *zap.Logger
	limiter *rate.Limiter
}

// NewProcessor wires a processor around the given store. Correction
// replies are capped at one per second with a small burst, so a replay
// of stacked directives can't flood the channel.
func NewProcessor(store *history.Store, logger *zap.Logger) *Processor {
	initMetrics()
	return &Processor{
		store:   store,
		log:     logger,
		limiter: rate.NewLimiter(rate.Limit(1), 4),
	}
}

// Store returns the processor's history store.
func (p *Processor) Store() *history.Store {
	return p.store
}

// HandleMessage records the line and resolves correction directives.
// Private messages are ignored entirely: corrections never act in PMs,
// so recording lines there would only accumulate state. The history
// scan and push-back run as one unit inside the store, and the rate
// limiter is consulted before resolution so a dropped reply never
// mutates history.
func (p *Processor) HandleMessage(ev Event, say func(target, text string)) {
	if ev.Private {
		return
	}

	d, err := correct.Parse(ev.Text)
	if err != nil {
		// Malformed directive: reject silently, mutate nothing.
		directivesRejected.Inc()
		p.log.Debug("rejected directive",
			zap.String("scope", ev.Sender),
			zap.String("nick", ev.Nick),
			zap.Error(err))
		return
	}
	if d != nil {
		if p.limiter.Allow() {
			if reply, ok := correct.Resolve(p.store, ev.Sender, ev.Nick, d); ok {
				say(ev.Sender, reply)
				correctionsApplied.Inc()
			}
		} else {
			repliesLimited.Inc()
			p.log.Debug("correction rate-limited",
				zap.String("scope", ev.Sender),
				zap.String("nick", ev.Nick))
		}
	}

	// The directive line itself still goes through Record, which drops
	// bare directives; a nick-prefixed one counts as ordinary chatter.

	raw := ev.Text
	if ev.Action {
		raw = format.Action(ev.Text)
	}
	if p.store.Record(ev.Sender, ev.Nick, raw) {
		linesRecorded.Inc()
	}
}

// HandleMembership drops history that can no longer be corrected. self
// is the bot's own current nick; the bot leaving a channel drops the
// whole scope. All paths are idempotent.
func (p *Processor) HandleMembership(ev MembershipEvent, self string) {
	mode := p.store.Casemapping()
	isSelf := func(nick string) bool {
		return identifier.New(nick, mode).EqualString(self)
	}

	switch ev.Kind {
	case Part:
		if isSelf(ev.Actor) {
			p.store.ForgetScope(ev.Channel)
		} else {
			p.store.ForgetSpeaker(ev.Actor, ev.Channel)
		}
	case Quit:
		// Our own QUIT means the process is going away with the state.
		if !isSelf(ev.Actor) {
			p.store.ForgetSpeaker(ev.Actor, "")
		}
	case Kick:
		if isSelf(ev.Kicked) {
			p.store.ForgetScope(ev.Channel)
		} else {
			p.store.ForgetSpeaker(ev.Kicked, ev.Channel)
		}
	}
}
