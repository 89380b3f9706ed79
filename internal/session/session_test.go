package session

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/models"
)

type mockDispatcher struct {
	events []events.Event
}

func (m *mockDispatcher) Dispatch(_ context.Context, e events.Event) error {
	m.events = append(m.events, e)
	return nil
}

func customers(t *testing.T, store kv.Store, opts ...Option) *Store[models.Customer] {
	t.Helper()
	n := 0
	opts = append([]Option{
		WithDelay(0),
		WithIDGenerator(func() string { n++; return fmt.Sprintf("c-%d", n) }),
	}, opts...)
	return Open(context.Background(), CustomerRealm(), store, opts...)
}

func TestNew_PendingUntilRestore(t *testing.T) {
	t.Parallel()

	s := New(CustomerRealm(), kv.NewMemoryStore(), WithDelay(0))
	assert.Equal(t, StatePending, s.State())

	s.Restore(context.Background())
	assert.Equal(t, StateUnauthenticated, s.State())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name   string
		stored string
		want   State
	}{
		{name: "valid record", stored: `{"id":"1","email":"customer@example.com","password":"customer123","name":"John Customer"}`, want: StateAuthenticated},
		{name: "corrupt record", stored: `{"id":`, want: StateUnauthenticated},
		{name: "json null", stored: `null`, want: StateUnauthenticated},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := kv.NewMemoryStore()
			require.NoError(t, store.Save(ctx, "current-customer", []byte(tt.stored)))
			s := customers(t, store)
			assert.Equal(t, tt.want, s.State())
		})
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := &mockDispatcher{}
	store := kv.NewMemoryStore()
	s := customers(t, store, WithDispatcher(d))

	c, err := s.Login(ctx, "customer@example.com", "customer123")
	require.NoError(t, err)
	assert.Equal(t, "John Customer", c.Name)
	assert.Equal(t, StateAuthenticated, s.State())

	b, err := store.Load(ctx, "current-customer")
	require.NoError(t, err)
	var saved models.Customer
	require.NoError(t, json.Unmarshal(b, &saved))
	assert.Equal(t, c, saved)

	require.Len(t, d.events, 1)
	assert.Equal(t, "login_succeeded", d.events[0].Type())
}

func TestLogin_FailureKeepsSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "customer@example.com", password: "nope"},
		{name: "unknown email", email: "who@example.com", password: "customer123"},
		{name: "email case differs", email: "Customer@example.com", password: "customer123"},
		{name: "admin credentials in customer realm", email: "admin@example.com", password: "admin123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := customers(t, kv.NewMemoryStore())
			_, err := s.Login(ctx, tt.email, tt.password)
			require.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Equal(t, StateUnauthenticated, s.State())
		})
	}

	s := customers(t, kv.NewMemoryStore())
	_, err := s.Login(ctx, "customer@example.com", "customer123")
	require.NoError(t, err)
	_, err = s.Login(ctx, "customer@example.com", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "customer@example.com", cur.Email)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestSignup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := kv.NewMemoryStore()
	s := customers(t, store)

	c, err := s.Signup(ctx, "new@example.com", "pw", "New Person")
	require.NoError(t, err)
	assert.Equal(t, "c-1", c.ID)
	assert.Equal(t, StateAuthenticated, s.State())

	accounts := s.Accounts(ctx)
	require.Len(t, accounts, 2)
	assert.Equal(t, "customer@example.com", accounts[0].Email)
	assert.Equal(t, "new@example.com", accounts[1].Email)

	s.Logout(ctx)
	again := customers(t, store)
	got, err := again.Login(ctx, "new@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := kv.NewMemoryStore()
	s := customers(t, store)

	_, err := s.Signup(ctx, "customer@example.com", "x", "Dup")
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Equal(t, StateUnauthenticated, s.State())
	assert.Len(t, s.Accounts(ctx), 1)

	_, err = store.Load(ctx, "customers")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestAdminRealm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := kv.NewMemoryStore()
	admins := Open(ctx, AdminRealm(), store, WithDelay(0))
	shoppers := customers(t, store)

	_, err := admins.Signup(ctx, "boss@example.com", "pw", "Boss")
	require.ErrorIs(t, err, ErrSignupDisabled)

	_, err = admins.Login(ctx, "customer@example.com", "customer123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	a, err := admins.Login(ctx, "admin@example.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, a.AccountRole())
	assert.Equal(t, StateAuthenticated, admins.State())

	assert.Equal(t, StateUnauthenticated, shoppers.State())
	_, err = store.Load(ctx, "current-admin")
	require.NoError(t, err)
	_, err = store.Load(ctx, "current-customer")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := &mockDispatcher{}
	store := kv.NewMemoryStore()
	s := customers(t, store, WithDispatcher(d))
	_, err := s.Login(ctx, "customer@example.com", "customer123")
	require.NoError(t, err)

	s.Logout(ctx)
	assert.Equal(t, StateUnauthenticated, s.State())
	_, err = store.Load(ctx, "current-customer")
	require.ErrorIs(t, err, kv.ErrNotFound)

	s.Logout(ctx)
	assert.Equal(t, []string{"login_succeeded", "logged_out"}, []string{d.events[0].Type(), d.events[1].Type()})
	assert.Len(t, d.events, 2)
}

func TestLogin_BusyAndCancel(t *testing.T) {
	t.Parallel()

	s := Open(context.Background(), CustomerRealm(), kv.NewMemoryStore(), WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "customer@example.com", "customer123")
		done <- err
	}()

	require.Eventually(t, func() bool { return s.State() == StatePending }, time.Second, 5*time.Millisecond)

	_, err := s.Login(context.Background(), "customer@example.com", "customer123")
	require.ErrorIs(t, err, ErrBusy)
	_, err = s.Signup(context.Background(), "x@example.com", "pw", "X")
	require.ErrorIs(t, err, ErrBusy)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("login did not return after cancel")
	}
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestLogin_Delay(t *testing.T) {
	t.Parallel()

	s := Open(context.Background(), CustomerRealm(), kv.NewMemoryStore(), WithDelay(30*time.Millisecond))
	start := time.Now()
	_, err := s.Login(context.Background(), "customer@example.com", "customer123")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestAccounts_IgnoresPersistedSeedCollisions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := kv.NewMemoryStore()
	require.NoError(t, kv.SaveJSON(ctx, store, "customers", []models.Customer{
		{ID: "x", Email: "customer@example.com", Password: "hijack", Name: "Impostor"},
		{ID: "y", Email: "other@example.com", Password: "pw", Name: "Other"},
	}))

	s := customers(t, store)
	accounts := s.Accounts(ctx)
	require.Len(t, accounts, 2)
	assert.Equal(t, "John Customer", accounts[0].Name)
	assert.Equal(t, "Other", accounts[1].Name)

	_, err := s.Login(ctx, "customer@example.com", "hijack")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

// gatedStore blocks the first Save of key until release is closed.
type gatedStore struct {
	*kv.MemoryStore
	key     string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Save(ctx context.Context, key string, v []byte) error {
	if key == g.key {
		select {
		case <-g.entered:
		default:
			close(g.entered)
			<-g.release
		}
	}
	return g.MemoryStore.Save(ctx, key, v)
}

func TestLogout_DuringLoginWriteStaysLoggedOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := &gatedStore{
		MemoryStore: kv.NewMemoryStore(),
		key:         CustomerRealm().CurrentKey,
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	s := customers(t, store)

	loginDone := make(chan error, 1)
	go func() {
		_, err := s.Login(ctx, "customer@example.com", "customer123")
		loginDone <- err
	}()
	<-store.entered

	logoutDone := make(chan struct{})
	go func() {
		s.Logout(ctx)
		close(logoutDone)
	}()
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	require.NoError(t, <-loginDone)
	<-logoutDone

	_, ok := s.Current()
	assert.False(t, ok)

	restored := customers(t, store.MemoryStore)
	assert.Equal(t, StateUnauthenticated, restored.State())
}
