package usecase

import (
	"context"
	"sync"

	"screenshot_backend/internal/feature/auth/domain/entity"
)

// mockUserRepository is a Func-field mock of UserRepository for failure paths.
// Methods without a Func behave like an empty store.
type mockUserRepository struct {
	FindByEmailFunc       func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc          func(ctx context.Context, id uint) (*entity.User, error)
	FindByIdentityFunc    func(ctx context.Context, q IdentityQuery) (*entity.User, error)
	CreateFunc            func(ctx context.Context, user *entity.User) error
	CreateWithProfileFunc func(ctx context.Context, user *entity.User, profile *entity.Profile) error
	UpdateFunc            func(ctx context.Context, user *entity.User) error
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) FindByIdentity(ctx context.Context, q IdentityQuery) (*entity.User, error) {
	if m.FindByIdentityFunc != nil {
		return m.FindByIdentityFunc(ctx, q)
	}
	return nil, ErrUserNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	if m.CreateWithProfileFunc != nil {
		return m.CreateWithProfileFunc(ctx, user, profile)
	}
	return nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *entity.User) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) Transaction(ctx context.Context, fn func(tx UserRepository) error) error {
	return fn(m)
}

// memStore is an in-memory UserRepository enforcing the same uniqueness rules as the database.
// A transaction holds the store lock for its whole duration and is rolled back on error.
type memStore struct {
	mu       sync.Mutex
	users    []entity.User
	profiles []entity.Profile
	nextID   uint

	// raceWith, when set, makes the next insert lose against a row committed by another writer.
	raceWith func(loser *entity.User) entity.User

	// concurrent holds rows committed by another writer while the current transaction ran.
	concurrent []entity.User
}

func newMemStore() *memStore {
	return &memStore{nextID: 1}
}

func cloneUser(u entity.User) *entity.User {
	c := u
	if u.GoogleID != nil {
		g := *u.GoogleID
		c.GoogleID = &g
	}
	return &c
}

// seed inserts a user directly and returns the stored copy.
func (s *memStore) seed(u entity.User) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.nextID
	s.nextID++
	s.users = append(s.users, *cloneUser(u))
	return cloneUser(u)
}

func (s *memStore) snapshot() ([]entity.User, []entity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *cloneUser(u))
	}
	return users, append([]entity.Profile(nil), s.profiles...)
}

func (s *memStore) flushConcurrent() {
	for _, u := range s.concurrent {
		u.ID = s.nextID
		s.nextID++
		s.users = append(s.users, u)
	}
	s.concurrent = nil
}

func (s *memStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.FindByEmail(ctx, email)
}

func (s *memStore) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.FindByID(ctx, id)
}

func (s *memStore) FindByIdentity(ctx context.Context, q IdentityQuery) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memTx{s}.FindByIdentity(ctx, q)
}

func (s *memStore) Create(ctx context.Context, user *entity.User) error {
	return s.Transaction(ctx, func(tx UserRepository) error { return tx.Create(ctx, user) })
}

func (s *memStore) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return s.Transaction(ctx, func(tx UserRepository) error { return tx.CreateWithProfile(ctx, user, profile) })
}

func (s *memStore) Update(ctx context.Context, user *entity.User) error {
	return s.Transaction(ctx, func(tx UserRepository) error { return tx.Update(ctx, user) })
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx UserRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]entity.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *cloneUser(u))
	}
	profiles := append([]entity.Profile(nil), s.profiles...)
	nextID := s.nextID

	err := fn(memTx{s})
	if err != nil {
		s.users, s.profiles, s.nextID = users, profiles, nextID
	}
	s.flushConcurrent()
	return err
}

// memTx operates on the store while its lock is held.
type memTx struct {
	s *memStore
}

func (t memTx) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range t.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (t memTx) FindByID(_ context.Context, id uint) (*entity.User, error) {
	for _, u := range t.s.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (t memTx) FindByIdentity(_ context.Context, q IdentityQuery) (*entity.User, error) {
	var matches []entity.User
	for _, u := range t.s.users {
		if (q.Username != "" && u.Username == q.Username) ||
			(q.Email != "" && u.Email == q.Email) ||
			(q.GoogleID != "" && u.GoogleID != nil && *u.GoogleID == q.GoogleID) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return cloneUser(matches[0]), nil
	default:
		return nil, ErrIntegrityViolation
	}
}

func (t memTx) conflicts(u *entity.User) bool {
	for _, other := range t.s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return true
		}
		if u.GoogleID != nil && other.GoogleID != nil && *u.GoogleID == *other.GoogleID {
			return true
		}
	}
	return false
}

func (t memTx) Create(_ context.Context, user *entity.User) error {
	if t.s.raceWith != nil {
		rival := t.s.raceWith(user)
		t.s.raceWith = nil
		t.s.concurrent = append(t.s.concurrent, rival)
		return ErrDuplicateUser
	}
	if t.conflicts(user) {
		return ErrDuplicateUser
	}
	user.ID = t.s.nextID
	t.s.nextID++
	t.s.users = append(t.s.users, *cloneUser(*user))
	return nil
}

func (t memTx) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	if err := t.Create(ctx, user); err != nil {
		return err
	}
	profile.ID = uint(len(t.s.profiles) + 1)
	profile.UserID = user.ID
	t.s.profiles = append(t.s.profiles, *profile)
	return nil
}

func (t memTx) Update(_ context.Context, user *entity.User) error {
	if t.conflicts(user) {
		return ErrDuplicateUser
	}
	for i, u := range t.s.users {
		if u.ID == user.ID {
			t.s.users[i] = *cloneUser(*user)
			return nil
		}
	}
	return ErrUserNotFound
}

func (t memTx) Transaction(_ context.Context, fn func(tx UserRepository) error) error {
	return fn(t)
}

// mockVerifier is a Func-field mock of IdentityVerifier.
type mockVerifier struct {
	mu         sync.Mutex
	calls      int
	VerifyFunc func(ctx context.Context, token string) (*entity.Claim, error)
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*entity.Claim, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, token)
	}
	return nil, ErrInvalidToken
}

func (m *mockVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// staticVerifier accepts any token and returns the given claim.
func staticVerifier(c entity.Claim) *mockVerifier {
	return &mockVerifier{VerifyFunc: func(context.Context, string) (*entity.Claim, error) {
		claim := c
		return &claim, nil
	}}
}

// mockJWTGenerator is a mock implementation of JWTGenerator interface.
type mockJWTGenerator struct {
	GenerateTokenFunc func(userID uint, email string) (string, error)
}

func (m *mockJWTGenerator) GenerateToken(userID uint, email string) (string, error) {
	if m.GenerateTokenFunc != nil {
		return m.GenerateTokenFunc(userID, email)
	}
	return "mock-jwt-token", nil
}

// recordingPublisher records published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.AccountEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e entity.AccountEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Types() []entity.AccountEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]entity.AccountEventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}
