// Package session implements the login state of one account realm. The
// customer storefront and the admin dashboard each run their own Store.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/logging"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAlreadyRegistered  = errors.New("email already registered")
	ErrSignupDisabled     = errors.New("signup is not available")
	ErrBusy               = errors.New("another login is in progress")
)

const DefaultDelay = 800 * time.Millisecond

type State int

const (
	StatePending State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

type Store[A Account] struct {
	realm Realm[A]
	kv    kv.Store

	delay      time.Duration
	newID      func() string
	dispatcher events.Dispatcher
	log        *slog.Logger

	mu       sync.Mutex
	restored bool
	inFlight bool
	current  *A
}

type Option func(*options)

type options struct {
	delay      time.Duration
	newID      func() string
	dispatcher events.Dispatcher
	log        *slog.Logger
}

func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

func WithIDGenerator(gen func() string) Option {
	return func(o *options) { o.newID = gen }
}

func WithDispatcher(d events.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns a store in the Pending state. Call Restore before use.
func New[A Account](realm Realm[A], store kv.Store, opts ...Option) *Store[A] {
	o := options{
		delay:      DefaultDelay,
		newID:      uuid.NewString,
		dispatcher: events.Nop,
		log:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[A]{
		realm:      realm,
		kv:         store,
		delay:      o.delay,
		newID:      o.newID,
		dispatcher: o.dispatcher,
		log:        o.log,
	}
}

func Open[A Account](ctx context.Context, realm Realm[A], store kv.Store, opts ...Option) *Store[A] {
	s := New(realm, store, opts...)
	s.Restore(ctx)
	return s
}

// Restore picks up the session persisted under the realm's current key.
// An unreadable record leaves the realm signed out.
func (s *Store[A]) Restore(ctx context.Context) {
	acc, ok := kv.LoadJSON[A](ctx, s.kv, s.realm.CurrentKey, s.log)
	// a stored JSON null decodes to the zero account
	ok = ok && acc.AccountEmail() != ""

	s.mu.Lock()
	if ok {
		s.current = &acc
	} else {
		s.current = nil
	}
	s.restored = true
	s.mu.Unlock()

	s.logger(ctx).Debug("session_restored", "authenticated", ok)
}

func (s *Store[A]) Realm() string { return s.realm.Name }

func (s *Store[A]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store[A]) stateLocked() State {
	switch {
	case !s.restored || s.inFlight:
		return StatePending
	case s.current != nil:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

func (s *Store[A]) Current() (A, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		var zero A
		return zero, false
	}
	return *s.current, true
}

// Accounts returns the seeded accounts followed by the persisted ones.
// Persisted accounts reusing a seeded email are ignored.
func (s *Store[A]) Accounts(ctx context.Context) []A {
	out := make([]A, 0, len(s.realm.Seed))
	seen := make(map[string]struct{}, len(s.realm.Seed))
	for _, a := range s.realm.Seed {
		out = append(out, a)
		seen[a.AccountEmail()] = struct{}{}
	}

	persisted, _ := kv.LoadJSON[[]A](ctx, s.kv, s.realm.AccountsKey, s.log)
	for _, a := range persisted {
		if _, dup := seen[a.AccountEmail()]; dup {
			continue
		}
		out = append(out, a)
		seen[a.AccountEmail()] = struct{}{}
	}
	return out
}

// Login waits out the realm's delay, then signs in the account whose email
// and password both match exactly. On failure the previous session stays.
func (s *Store[A]) Login(ctx context.Context, email, password string) (A, error) {
	var zero A
	l := s.logger(ctx).With("op", "login")

	if err := s.begin(); err != nil {
		l.Warn("login_rejected", "reason", "request already pending", "error", err)
		return zero, err
	}
	if err := s.wait(ctx); err != nil {
		s.finish()
		l.Warn("login_cancelled", "error", err)
		return zero, err
	}

	for _, a := range s.Accounts(ctx) {
		if a.AccountEmail() == email && a.AccountPassword() == password {
			s.signIn(ctx, a)
			l.Info("login_succeeded", "account_id", a.AccountID())
			s.emit(ctx, events.LoginSucceeded{Realm: s.realm.Name, AccountID: a.AccountID(), Email: email})
			return a, nil
		}
	}

	s.finish()
	l.Warn("login_failed", "reason", "invalid credentials")
	s.emit(ctx, events.LoginFailed{Realm: s.realm.Name, Email: email})
	return zero, ErrInvalidCredentials
}

// Signup registers a new account and signs it in. The email must not
// belong to any existing account of the realm.
func (s *Store[A]) Signup(ctx context.Context, email, password, name string) (A, error) {
	var zero A
	l := s.logger(ctx).With("op", "signup")

	if s.realm.NewAccount == nil {
		l.Warn("signup_rejected", "reason", "realm has no signup")
		return zero, ErrSignupDisabled
	}
	if err := s.begin(); err != nil {
		l.Warn("signup_rejected", "reason", "request already pending", "error", err)
		return zero, err
	}
	if err := s.wait(ctx); err != nil {
		s.finish()
		l.Warn("signup_cancelled", "error", err)
		return zero, err
	}

	accounts := s.Accounts(ctx)
	for _, a := range accounts {
		if a.AccountEmail() == email {
			s.finish()
			l.Warn("signup_failed", "reason", "email already registered")
			return zero, ErrAlreadyRegistered
		}
	}

	acc := s.realm.NewAccount(s.newID(), email, password, name)
	accounts = append(accounts, acc)
	if err := kv.SaveJSON(ctx, s.kv, s.realm.AccountsKey, accounts); err != nil {
		l.Error("accounts_persist_failed", "key", s.realm.AccountsKey, "error", err)
	}

	s.signIn(ctx, acc)
	l.Info("signup_succeeded", "account_id", acc.AccountID())
	s.emit(ctx, events.SignedUp{Realm: s.realm.Name, AccountID: acc.AccountID(), Email: email})
	return acc, nil
}

func (s *Store[A]) Logout(ctx context.Context) {
	s.mu.Lock()
	prev := s.current
	s.current = nil
	if err := s.kv.Delete(ctx, s.realm.CurrentKey); err != nil {
		s.logger(ctx).Error("session_delete_failed", "key", s.realm.CurrentKey, "error", err)
	}
	s.mu.Unlock()

	if prev == nil {
		return
	}
	id := (*prev).AccountID()
	s.logger(ctx).Info("logged_out", "account_id", id)
	s.emit(ctx, events.LoggedOut{Realm: s.realm.Name, AccountID: id})
}

func (s *Store[A]) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrBusy
	}
	s.inFlight = true
	return nil
}

// finish ends the pending request without changing the session.
func (s *Store[A]) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
}

// signIn ends the pending request with acc as the current account. The
// current key is written under the same lock as the memory update so a
// concurrent Logout cannot be undone by a late write.
func (s *Store[A]) signIn(ctx context.Context, acc A) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := kv.SaveJSON(ctx, s.kv, s.realm.CurrentKey, acc); err != nil {
		s.logger(ctx).Error("session_persist_failed", "key", s.realm.CurrentKey, "error", err)
	}
	s.current = &acc
	s.inFlight = false
}

func (s *Store[A]) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store[A]) logger(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, s.log).With("store", "session", "realm", s.realm.Name)
}

func (s *Store[A]) emit(ctx context.Context, e events.Event) {
	if err := s.dispatcher.Dispatch(ctx, e); err != nil {
		s.logger(ctx).Error("event_dispatch_failed", "type", e.Type(), "error", err)
	}
}
