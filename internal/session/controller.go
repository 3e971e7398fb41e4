// Package session owns the in-memory chat transcript for one shopper and
// drives the send/receive cycle against the remote assistant.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/PandeyAnukrati/Carti/internal/assistant"
	"github.com/PandeyAnukrati/Carti/internal/identity"
	"github.com/PandeyAnukrati/Carti/internal/model/chat"
	"github.com/PandeyAnukrati/Carti/internal/observability/metrics"
	"github.com/PandeyAnukrati/Carti/internal/store"
)

// State is the controller's position in the send/receive cycle.
type State string

const (
	// StateIdle accepts new sends.
	StateIdle State = "idle"
	// StateAwaiting means a reply is in flight; further sends are rejected.
	StateAwaiting State = "awaiting_response"
)

// User-facing strings, carried over verbatim from the storefront widget.
const (
	WelcomeText = "👋 Welcome to our store! How can I help you today?\n\n" +
		"You can ask things like:\n" +
		"• 'Show me men's clothing'\n" +
		"• 'Do you have headphones in stock?'\n" +
		"• 'What's the return policy for electronics?'\n" +
		"• 'Tell me about the brand StrideFlow'"
	VolatileWelcomeText = "👋 Welcome! Log in to save your chat history."
	EmptyReplyFallback  = "Sorry, I didn’t get that. Try asking about products, compatibility or returns."
	FailureNotice       = "🚫 Oops! Something went wrong. Please try again later."
)

// Controller mediates every transcript mutation for one shopper: optimistic
// append, remote exchange, in-place reconciliation and best-effort
// persistence. All mutations are serialized by an internal mutex; the lock is
// released across the remote call so reads, Reset and Initialize stay
// responsive while a reply is in flight.
type Controller struct {
	store  store.Store
	client assistant.Client
	log    zerolog.Logger

	mu         sync.Mutex
	binding    identity.Binding
	uid        string
	transcript chat.Transcript
	state      State
	generation uint64
}

// NewController builds an uninitialized controller. Call Initialize before
// use.
func NewController(st store.Store, client assistant.Client, log zerolog.Logger) *Controller {
	return &Controller{
		store:   st,
		client:  client,
		log:     log,
		binding: identity.Anonymous,
		state:   StateIdle,
	}
}

// Initialize binds the controller to the given identity and replaces the
// in-memory transcript wholesale. For a bound identity the persisted
// transcript is restored (pending entries dropped) or a welcome message is
// seeded and persisted; anonymous sessions get a volatile transcript with a
// distinct welcome. Must be called on every identity change; in-flight
// replies issued under the previous identity are discarded when they arrive.
func (c *Controller) Initialize(ctx context.Context, binding identity.Binding) {
	if binding == nil {
		binding = identity.Anonymous
	}
	uid := ""
	if id, ok := binding.Current(ctx); ok {
		uid = id.UID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.binding = binding
	c.uid = uid
	c.state = StateIdle
	c.seedLocked(ctx)
}

// seedLocked loads or seeds the transcript for the bound identity. Callers
// hold c.mu.
func (c *Controller) seedLocked(ctx context.Context) {
	if c.uid == "" {
		c.transcript = chat.Transcript{chat.NewMessage(chat.RoleAssistant, VolatileWelcomeText)}
		return
	}

	key := store.Key(c.uid)
	loaded, err := c.store.Load(ctx, key)
	if err == nil {
		if normalized := loaded.Normalize(); len(normalized) > 0 {
			c.transcript = normalized
			return
		}
	} else if err != store.ErrNotFound {
		metrics.Default.StoreLoadErrors.Inc()
		c.log.Warn().Err(err).Str("uid", c.uid).Msg("transcript load failed, reseeding")
	}

	c.transcript = chat.Transcript{chat.NewMessage(chat.RoleAssistant, WelcomeText)}
	c.persistLocked(ctx)
}

// Send runs one optimistic send/receive cycle: append the user message and a
// pending placeholder, persist, exchange with the remote assistant, then
// replace the placeholder in place with the reply or a failure notice and
// persist again. Returns false without side effects when text trims to empty
// or a reply is already in flight.
func (c *Controller) Send(ctx context.Context, text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		metrics.Default.SendsRejected.Inc()
		return false
	}

	c.transcript = append(c.transcript, chat.NewMessage(chat.RoleUser, text))
	c.transcript = append(c.transcript, chat.NewPending())
	pendingIdx := len(c.transcript) - 1
	c.state = StateAwaiting
	generation := c.generation
	binding := c.binding
	c.persistLocked(ctx)
	c.mu.Unlock()

	metrics.Default.SendsAccepted.Inc()

	credential := ""
	if token, err := binding.Token(ctx); err == nil {
		credential = token
	}

	started := time.Now()
	reply, err := c.client.Ask(ctx, text, credential)
	metrics.Default.RecordAsk(err, time.Since(started).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	// A Reset or identity change invalidated this exchange; the transcript
	// it targeted no longer exists.
	if c.generation != generation {
		c.log.Debug().Str("uid", c.uid).Msg("discarding stale assistant reply")
		return true
	}

	resolved := chat.NewMessage(chat.RoleAssistant, reply)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Str("uid", c.uid).Msg("assistant exchange failed")
		resolved.Text = FailureNotice
	case reply == "":
		resolved.Text = EmptyReplyFallback
	}

	c.transcript[pendingIdx] = resolved
	c.state = StateIdle
	c.persistLocked(ctx)
	return true
}

// Reset clears the persisted transcript for the bound identity and reseeds
// the welcome message. Allowed in any state; an in-flight reply is discarded
// when it arrives.
func (c *Controller) Reset(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.state = StateIdle
	if c.uid != "" {
		if err := c.store.Clear(ctx, store.Key(c.uid)); err != nil {
			c.log.Warn().Err(err).Str("uid", c.uid).Msg("transcript clear failed")
		}
	}
	if c.uid == "" {
		c.transcript = chat.Transcript{chat.NewMessage(chat.RoleAssistant, VolatileWelcomeText)}
		return
	}
	c.transcript = chat.Transcript{chat.NewMessage(chat.RoleAssistant, WelcomeText)}
	c.persistLocked(ctx)
}

// persistLocked saves the current transcript best-effort. Save failures are
// logged and swallowed; in-memory state stays authoritative. Callers hold
// c.mu.
func (c *Controller) persistLocked(ctx context.Context) {
	if c.uid == "" {
		return
	}
	if err := c.store.Save(ctx, store.Key(c.uid), c.transcript); err != nil {
		metrics.Default.StoreSaveErrors.Inc()
		c.log.Warn().Err(err).Str("uid", c.uid).Msg("transcript save failed")
	}
}

// Messages returns a snapshot of the transcript.
func (c *Controller) Messages() chat.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript.Clone()
}

// State returns the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// UID returns the bound identity id, empty for anonymous sessions.
func (c *Controller) UID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uid
}
