package session_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/PandeyAnukrati/Carti/internal/identity"
	"github.com/PandeyAnukrati/Carti/internal/model/chat"
	"github.com/PandeyAnukrati/Carti/internal/session"
	"github.com/PandeyAnukrati/Carti/internal/store"
)

// fakeClient scripts the remote assistant. When blocking, Ask waits for
// release to close; started is closed once the first exchange begins.
type fakeClient struct {
	mu          sync.Mutex
	reply       string
	err         error
	credentials []string
	texts       []string

	startOnce sync.Once
	started   chan struct{}
	release   chan struct{}
}

func newFakeClient(reply string, err error) *fakeClient {
	return &fakeClient{reply: reply, err: err, started: make(chan struct{})}
}

func (f *fakeClient) blockUntilReleased() {
	f.release = make(chan struct{})
}

func (f *fakeClient) Ask(_ context.Context, text, credential string) (string, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.credentials = append(f.credentials, credential)
	release := f.release
	reply, err := f.reply, f.err
	f.mu.Unlock()

	f.startOnce.Do(func() { close(f.started) })
	if release != nil {
		<-release
	}
	return reply, err
}

func newController(t *testing.T, uid string, client *fakeClient) (*session.Controller, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ctrl := session.NewController(st, client, zerolog.Nop())
	ctrl.Initialize(context.Background(), identity.Static{UID: uid, BearerToken: "tok-" + uid})
	return ctrl, st
}

func waitIdle(t *testing.T, ctrl *session.Controller) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for ctrl.State() != session.StateIdle {
		select {
		case <-deadline:
			t.Fatal("controller never returned to idle")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestInitializeSeedsWelcomeForIdentity(t *testing.T) {
	ctrl, st := newController(t, "u1", newFakeClient("", nil))

	msgs := ctrl.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected seeded welcome, got %d entries", len(msgs))
	}
	if msgs[0].Role != chat.RoleAssistant || msgs[0].Text != session.WelcomeText {
		t.Fatalf("unexpected welcome: %+v", msgs[0])
	}

	// The seeded welcome is persisted immediately.
	if _, err := st.Load(context.Background(), store.Key("u1")); err != nil {
		t.Fatalf("seeded welcome not persisted: %v", err)
	}
}

func TestInitializeAnonymousIsVolatile(t *testing.T) {
	st := store.NewMemoryStore()
	ctrl := session.NewController(st, newFakeClient("", nil), zerolog.Nop())
	ctrl.Initialize(context.Background(), identity.Anonymous)

	msgs := ctrl.Messages()
	if len(msgs) != 1 || msgs[0].Text != session.VolatileWelcomeText {
		t.Fatalf("expected volatile welcome, got %+v", msgs)
	}

	// Nothing may ever be written for an anonymous session.
	ctrl.Send(context.Background(), "hello")
	if _, err := st.Load(context.Background(), store.Key("")); err != store.ErrNotFound {
		t.Fatalf("anonymous transcript was persisted: %v", err)
	}
}

func TestSendSuccessAppendsPairAndReturnsIdle(t *testing.T) {
	client := newFakeClient("Yes, see Electronics.", nil)
	ctrl, _ := newController(t, "u1", client)

	before := len(ctrl.Messages())
	if !ctrl.Send(context.Background(), "Do you have headphones?") {
		t.Fatal("send was rejected")
	}

	msgs := ctrl.Messages()
	if len(msgs) != before+2 {
		t.Fatalf("expected %d entries, got %d", before+2, len(msgs))
	}
	userMsg, botMsg := msgs[len(msgs)-2], msgs[len(msgs)-1]
	if userMsg.Role != chat.RoleUser || userMsg.Text != "Do you have headphones?" {
		t.Fatalf("unexpected user entry: %+v", userMsg)
	}
	if botMsg.Role != chat.RoleAssistant || botMsg.Text != "Yes, see Electronics." || botMsg.Pending {
		t.Fatalf("unexpected assistant entry: %+v", botMsg)
	}
	if ctrl.State() != session.StateIdle {
		t.Fatalf("expected idle, got %s", ctrl.State())
	}
}

func TestSendTrimsAndIgnoresEmptyText(t *testing.T) {
	ctrl, _ := newController(t, "u1", newFakeClient("", nil))
	before := len(ctrl.Messages())

	if ctrl.Send(context.Background(), "   ") {
		t.Fatal("blank send was accepted")
	}
	if got := len(ctrl.Messages()); got != before {
		t.Fatalf("blank send mutated transcript: %d -> %d", before, got)
	}
}

func TestSendFailureAppendsFailureNotice(t *testing.T) {
	client := newFakeClient("", errors.New("connection refused"))
	ctrl, _ := newController(t, "u1", client)

	ctrl.Send(context.Background(), "anything")

	msgs := ctrl.Messages()
	last := msgs[len(msgs)-1]
	if last.Text != session.FailureNotice || last.Pending {
		t.Fatalf("expected failure notice, got %+v", last)
	}
	if msgs[len(msgs)-2].Text != "anything" {
		t.Fatalf("user entry missing before failure notice: %+v", msgs[len(msgs)-2])
	}
	if ctrl.State() != session.StateIdle {
		t.Fatalf("expected idle after failure, got %s", ctrl.State())
	}
}

func TestSendEmptyReplyUsesFallback(t *testing.T) {
	ctrl, _ := newController(t, "u1", newFakeClient("", nil))

	ctrl.Send(context.Background(), "hello")

	msgs := ctrl.Messages()
	if last := msgs[len(msgs)-1]; last.Text != session.EmptyReplyFallback {
		t.Fatalf("expected fallback text, got %q", last.Text)
	}
}

func TestSendRejectedWhileAwaiting(t *testing.T) {
	client := newFakeClient("ok", nil)
	client.blockUntilReleased()
	ctrl, _ := newController(t, "u1", client)

	done := make(chan struct{})
	go func() {
		ctrl.Send(context.Background(), "first")
		close(done)
	}()
	<-client.started

	if ctrl.Send(context.Background(), "second") {
		t.Fatal("concurrent send was accepted")
	}

	msgs := ctrl.Messages()
	pendingCount := 0
	for _, m := range msgs {
		if m.Pending {
			pendingCount++
		}
	}
	if pendingCount != 1 {
		t.Fatalf("expected exactly one pending entry, got %d", pendingCount)
	}
	for _, m := range msgs {
		if m.Text == "second" {
			t.Fatal("rejected send leaked into transcript")
		}
	}

	close(client.release)
	<-done
	waitIdle(t, ctrl)
}

func TestPendingStatePersistedMidFlight(t *testing.T) {
	client := newFakeClient("ok", nil)
	client.blockUntilReleased()
	ctrl, st := newController(t, "u1", client)

	done := make(chan struct{})
	go func() {
		ctrl.Send(context.Background(), "hello")
		close(done)
	}()
	<-client.started

	saved, err := st.Load(context.Background(), store.Key("u1"))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if saved.PendingIndex() == -1 {
		t.Fatal("pending entry was not persisted mid-flight")
	}

	close(client.release)
	<-done
}

func TestResetDiscardsInflightReply(t *testing.T) {
	client := newFakeClient("stale reply", nil)
	client.blockUntilReleased()
	ctrl, _ := newController(t, "u1", client)

	done := make(chan struct{})
	go func() {
		ctrl.Send(context.Background(), "hello")
		close(done)
	}()
	<-client.started

	ctrl.Reset(context.Background())
	close(client.release)
	<-done

	msgs := ctrl.Messages()
	if len(msgs) != 1 || msgs[0].Text != session.WelcomeText {
		t.Fatalf("post-reset transcript polluted: %+v", msgs)
	}
	for _, m := range msgs {
		if strings.Contains(m.Text, "stale reply") {
			t.Fatal("stale reply applied after reset")
		}
	}
	if ctrl.State() != session.StateIdle {
		t.Fatalf("expected idle, got %s", ctrl.State())
	}
}

func TestIdentityChangeDiscardsInflightReply(t *testing.T) {
	client := newFakeClient("stale reply", nil)
	client.blockUntilReleased()
	ctrl, _ := newController(t, "u1", client)

	done := make(chan struct{})
	go func() {
		ctrl.Send(context.Background(), "hello")
		close(done)
	}()
	<-client.started

	ctrl.Initialize(context.Background(), identity.Static{UID: "u2"})
	close(client.release)
	<-done

	for _, m := range ctrl.Messages() {
		if m.Text == "stale reply" || m.Pending {
			t.Fatalf("stale state leaked into u2 transcript: %+v", m)
		}
	}
}

func TestResetClearsStoreAndReseeds(t *testing.T) {
	ctrl, st := newController(t, "u1", newFakeClient("hi there", nil))
	ctrl.Send(context.Background(), "hello")

	ctrl.Reset(context.Background())

	msgs := ctrl.Messages()
	if len(msgs) != 1 || msgs[0].Text != session.WelcomeText {
		t.Fatalf("expected reseeded welcome, got %+v", msgs)
	}

	// The store holds only the reseeded welcome.
	saved, err := st.Load(context.Background(), store.Key("u1"))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(saved) != 1 || saved[0].Text != session.WelcomeText {
		t.Fatalf("store not reseeded: %+v", saved)
	}
}

func TestInitializeRestoresPersistedTranscript(t *testing.T) {
	client := newFakeClient("Yes, see Electronics.", nil)
	st := store.NewMemoryStore()

	first := session.NewController(st, client, zerolog.Nop())
	first.Initialize(context.Background(), identity.Static{UID: "u1"})
	first.Send(context.Background(), "Do you have headphones?")
	want := first.Messages()

	// Simulates a page reload: a fresh controller over the same store.
	second := session.NewController(st, client, zerolog.Nop())
	second.Initialize(context.Background(), identity.Static{UID: "u1"})
	got := second.Messages()

	if len(got) != len(want) {
		t.Fatalf("restored %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Role != want[i].Role || got[i].Text != want[i].Text {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestInitializeDropsDanglingPendingEntry(t *testing.T) {
	st := store.NewMemoryStore()
	stale := chat.Transcript{
		chat.NewMessage(chat.RoleAssistant, "welcome"),
		chat.NewMessage(chat.RoleUser, "hello"),
		chat.NewPending(),
	}
	if err := st.Save(context.Background(), store.Key("u1"), stale); err != nil {
		t.Fatalf("Save err: %v", err)
	}

	ctrl := session.NewController(st, newFakeClient("", nil), zerolog.Nop())
	ctrl.Initialize(context.Background(), identity.Static{UID: "u1"})

	msgs := ctrl.Messages()
	if msgs.PendingIndex() != -1 {
		t.Fatalf("dangling pending entry restored: %+v", msgs)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 entries after normalization, got %d", len(msgs))
	}
}

func TestStoreFailuresNeverSurface(t *testing.T) {
	client := newFakeClient("hi", nil)
	ctrl := session.NewController(failingStore{}, client, zerolog.Nop())
	ctrl.Initialize(context.Background(), identity.Static{UID: "u1"})

	if len(ctrl.Messages()) != 1 {
		t.Fatalf("expected seeded welcome despite store failure, got %+v", ctrl.Messages())
	}

	ctrl.Send(context.Background(), "hello")
	msgs := ctrl.Messages()
	if last := msgs[len(msgs)-1]; last.Text != "hi" {
		t.Fatalf("send did not complete against failing store: %+v", last)
	}
	if ctrl.State() != session.StateIdle {
		t.Fatalf("expected idle, got %s", ctrl.State())
	}
}

func TestSendAttachesBearerToken(t *testing.T) {
	client := newFakeClient("ok", nil)
	ctrl, _ := newController(t, "u1", client)

	ctrl.Send(context.Background(), "hello")

	client.mu.Lock()
	defer client.mu.Unlock()
	if len(client.credentials) != 1 || client.credentials[0] != "tok-u1" {
		t.Fatalf("unexpected credentials: %v", client.credentials)
	}
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Load(context.Context, string) (chat.Transcript, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Save(context.Context, string, chat.Transcript) error {
	return errors.New("disk on fire")
}

func (failingStore) Clear(context.Context, string) error {
	return errors.New("disk on fire")
}
