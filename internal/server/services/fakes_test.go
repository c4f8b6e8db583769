package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/newcomers"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/registrationtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/google/uuid"
)

// memStore is an in-memory stand-in for the three tables.
type memStore struct {
	newcomers []models.Newcomer
	tokens    []models.RegistrationToken
	users     []models.User

	failTokenCreate error
	failUserCount   error
}

func (s *memStore) snapshot() memStore {
	return memStore{
		newcomers: append([]models.Newcomer(nil), s.newcomers...),
		tokens:    append([]models.RegistrationToken(nil), s.tokens...),
		users:     append([]models.User(nil), s.users...),
	}
}

func (s *memStore) restore(snap memStore) {
	s.newcomers, s.tokens, s.users = snap.newcomers, snap.tokens, snap.users
}

// fakeTx runs units of work one at a time and undoes their writes on error,
// which is what a serializable store guarantees to observers.
type fakeTx struct {
	mu    sync.Mutex
	store *memStore
	runs  int
	err   error
}

func (f *fakeTx) Run(ctx context.Context, fn dbx.TxFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs++
	if f.err != nil {
		return f.err
	}

	snap := f.store.snapshot()
	if err := fn(ctx, nil); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeManager struct {
	store *memStore
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Users(dbx.DBTX) users.Repository { return &memUsers{m.store} }

func (m *fakeManager) Newcomers(dbx.DBTX) newcomers.Repository { return &memNewcomers{m.store} }

func (m *fakeManager) RegistrationTokens(dbx.DBTX) registrationtokens.Repository {
	return &memTokens{m.store}
}

type memUsers struct{ s *memStore }

func (r *memUsers) CountByEmail(_ context.Context, email string) (int, error) {
	if r.s.failUserCount != nil {
		return 0, r.s.failUserCount
	}
	n := 0
	for _, u := range r.s.users {
		if u.Email == email {
			n++
		}
	}
	return n, nil
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("db error: duplicate key value violates unique constraint %q", "users_email_key")
		}
	}
	r.s.users = append(r.s.users, *u)
	out := *u
	return &out, nil
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.ID == id {
			out := u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

type memNewcomers struct{ s *memStore }

func (r *memNewcomers) CountByEmail(_ context.Context, email string) (int, error) {
	n := 0
	for _, c := range r.s.newcomers {
		if c.Email == email {
			n++
		}
	}
	return n, nil
}

func (r *memNewcomers) Create(_ context.Context, n *models.Newcomer) (*models.Newcomer, error) {
	r.s.newcomers = append(r.s.newcomers, *n)
	out := *n
	return &out, nil
}

func (r *memNewcomers) GetByToken(_ context.Context, tokenHash string, now time.Time) (*models.Newcomer, error) {
	for _, t := range r.s.tokens {
		if t.TokenHash != tokenHash || !t.ExpiredAt.After(now) {
			continue
		}
		for _, n := range r.s.newcomers {
			if n.ID == t.UserID {
				out := n
				return &out, nil
			}
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memNewcomers) DeleteStale(_ context.Context, now time.Time) (int64, error) {
	live := map[string]bool{}
	for _, t := range r.s.tokens {
		if t.ExpiredAt.After(now) {
			live[t.UserID] = true
		}
	}

	var kept []models.Newcomer
	var deleted int64
	for _, n := range r.s.newcomers {
		if live[n.ID] {
			kept = append(kept, n)
			continue
		}
		deleted++
	}

	var keptTokens []models.RegistrationToken
	for _, t := range r.s.tokens {
		if live[t.UserID] {
			keptTokens = append(keptTokens, t)
		}
	}

	r.s.newcomers, r.s.tokens = kept, keptTokens
	return deleted, nil
}

type memTokens struct{ s *memStore }

func (r *memTokens) Create(_ context.Context, t *models.RegistrationToken) error {
	if r.s.failTokenCreate != nil {
		return r.s.failTokenCreate
	}
	r.s.tokens = append(r.s.tokens, *t)
	return nil
}

// fakePasswords stores "hashed:" + password so tests can tell the two apart.
type fakePasswords struct {
	hashErr error
}

func (f fakePasswords) Hash(password string) (string, error) {
	if f.hashErr != nil {
		return "", f.hashErr
	}
	return "hashed:" + password, nil
}

func (f fakePasswords) Verify(password, credential string) (bool, error) {
	if !strings.HasPrefix(credential, "hashed:") {
		return false, errors.New("unknown credential format")
	}
	return credential == "hashed:"+password, nil
}

type letter struct {
	name, email, token string
}

type fakeMailer struct {
	mu      sync.Mutex
	letters []letter
	err     error
}

func (m *fakeMailer) SendRegistrationLetter(_ context.Context, name, email, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.letters = append(m.letters, letter{name, email, token})
	return m.err
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type uuidIDs struct{}

func (uuidIDs) NewID() string { return uuid.NewString() }

type fixture struct {
	store  *memStore
	tx     *fakeTx
	mailer *fakeMailer
	clock  *fakeClock
	cfg    *config.Config
	reg    *RegistrationService
	users  *UserService
}

func newFixture() *fixture {
	store := &memStore{}
	f := &fixture{
		store:  store,
		tx:     &fakeTx{store: store},
		mailer: &fakeMailer{},
		clock:  &fakeClock{now: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		cfg: &config.Config{
			SecretKey:                   "k",
			AccessTokenValidityDuration: time.Hour,
			MaxNewcomersWithSameEmail:   3,
			RegistrationTokenLifetime:   24 * time.Hour,
		},
	}

	deps := Collaborators{
		Passwords: fakePasswords{},
		Tokens:    cryptox.NewTokens(),
		Mailer:    f.mailer,
		IDs:       uuidIDs{},
		Clock:     f.clock,
	}
	m := &fakeManager{store: store}
	f.reg = NewRegistrationService(f.tx, m, deps, f.cfg, logging.Nop())
	f.users = NewUserService(nil, m, deps.Passwords, f.cfg)
	return f
}
