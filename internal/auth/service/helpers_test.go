package service_test

import (
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/service"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/surveybasket/pkg/cryptox"
	"github.com/aussiebroadwan/surveybasket/pkg/jwtx"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

const (
	testEmail    = "a@x.com"
	testPassword = "Secret1!"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []domain.EmailTask
}

func (q *recordingQueue) Enqueue(_ context.Context, task domain.EmailTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) Close() error { return nil }

func (q *recordingQueue) last(t *testing.T) domain.EmailTask {
	t.Helper()
	q.mu.Lock()
	defer q.mu.Unlock()
	require.NotEmpty(t, q.tasks)
	return q.tasks[len(q.tasks)-1]
}

// codeFrom pulls the encoded code out of an emailed link.
func codeFrom(t *testing.T, task domain.EmailTask) string {
	t.Helper()
	u, err := url.Parse(task.Data["action_url"])
	require.NoError(t, err)
	code := u.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

type env struct {
	clock       *clock
	store       store.Store
	credentials *credential.StoreProvider
	issuer      *service.TokenIssuer
	ledger      *service.RefreshTokenLedger
	resolver    *service.PermissionResolver
	queue       *recordingQueue

	tokens    *service.TokenService
	accounts  *service.AccountService
	users     *service.UserService
	roles     *service.RolesService
	bootstrap *service.BootstrapService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	e := &env{
		clock: &clock{now: time.Now().UTC().Truncate(time.Second)},
		store: s,
		queue: &recordingQueue{},
	}

	hasher := &cryptox.PasswordHasher{Pepper: "pepper", Memory: 64, Iterations: 1, Parallelism: 1}
	e.credentials = credential.NewStoreProvider(s, hasher)
	e.credentials.Now = e.clock.Now

	e.issuer, err = service.NewTokenIssuer(testKey, jwtx.DefaultIssuer, jwtx.DefaultAudience, e.clock.Now)
	require.NoError(t, err)

	e.ledger = service.NewRefreshTokenLedger(s)
	e.ledger.Now = e.clock.Now
	e.resolver = &service.PermissionResolver{Store: s}

	e.tokens = &service.TokenService{
		Store:       s,
		Credentials: e.credentials,
		Issuer:      e.issuer,
		Ledger:      e.ledger,
		Permissions: e.resolver,
	}
	e.accounts = &service.AccountService{Store: s, Credentials: e.credentials, Queue: e.queue, Origin: "http://app.test"}
	e.users = &service.UserService{Store: s, Credentials: e.credentials}
	e.roles = &service.RolesService{Store: s}
	e.bootstrap = &service.BootstrapService{Store: s, Credentials: e.credentials, Token: "boot"}
	return e
}

// seed bootstraps the default roles with an admin, then registers and
// confirms a Member with testEmail and testPassword.
func (e *env) seed(t *testing.T) domain.User {
	t.Helper()
	ctx := context.Background()

	_, err := e.bootstrap.Bootstrap(ctx, "boot", domain.BootstrapData{
		AdminEmail:     "admin@x.com",
		AdminFirstName: "Root",
		AdminLastName:  "Admin",
		AdminPassword:  "Admin123!",
	})
	require.NoError(t, err)

	require.NoError(t, e.accounts.Register(ctx, service.RegisterRequest{
		Email: testEmail, Password: testPassword, FirstName: "Ada", LastName: "Lovelace",
	}))
	u, err := e.store.Users().GetUserByEmail(ctx, testEmail)
	require.NoError(t, err)
	require.NoError(t, e.accounts.ConfirmEmail(ctx, u.ID, codeFrom(t, e.queue.last(t))))

	u, err = e.store.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	return u
}
