package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/PandeyAnukrati/Carti/internal/assistant"
	"github.com/PandeyAnukrati/Carti/internal/identity"
	"github.com/PandeyAnukrati/Carti/internal/store"
)

// Widget bundles the controller and visibility gate for one shopper.
type Widget struct {
	Controller *Controller
	Gate       *Gate
}

// Registry hands out one widget per identity partition. Anonymous requests
// share a single volatile widget whose transcript never outlives the process.
type Registry struct {
	store  store.Store
	client assistant.Client
	log    zerolog.Logger

	mu      sync.Mutex
	widgets map[string]*Widget
}

// NewRegistry builds an empty widget registry over the given transcript store
// and assistant client.
func NewRegistry(st store.Store, client assistant.Client, log zerolog.Logger) *Registry {
	return &Registry{
		store:   st,
		client:  client,
		log:     log,
		widgets: make(map[string]*Widget),
	}
}

// For returns the widget bound to the request's identity, initializing it on
// first use. Initialization replaces any prior transcript for the partition,
// so a login, logout or user switch always lands on a freshly bound
// controller.
func (r *Registry) For(ctx context.Context, binding identity.Binding) *Widget {
	uid := ""
	if id, ok := binding.Current(ctx); ok {
		uid = id.UID
	}

	r.mu.Lock()
	w, ok := r.widgets[uid]
	if !ok {
		w = &Widget{
			Controller: NewController(r.store, r.client, r.log.With().Str("uid", uid).Logger()),
			Gate:       NewGate(),
		}
		r.widgets[uid] = w
		r.mu.Unlock()
		w.Controller.Initialize(ctx, binding)
		return w
	}
	r.mu.Unlock()
	return w
}
