package directory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process directory used by tests and local runs. The
// mutex spans the whole check-and-insert so uniqueness holds under
// concurrent Create calls, matching the Postgres guarantees.
type Memory struct {
	mu         sync.Mutex
	byEmail    map[string]*User
	byUsername map[string]*User
}

func NewMemory() *Memory {
	return &Memory{
		byEmail:    make(map[string]*User),
		byUsername: make(map[string]*User),
	}
}

func (m *Memory) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *Memory) Create(ctx context.Context, u *User) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	emailKey := strings.ToLower(u.Email)
	if _, ok := m.byEmail[emailKey]; ok {
		return nil, ErrDuplicateEmail
	}
	if _, ok := m.byUsername[u.Username]; ok {
		return nil, ErrDuplicateUsername
	}

	created := *u
	created.ID = uuid.NewString()
	created.CreatedAt = time.Now().UTC()

	m.byEmail[emailKey] = &created
	m.byUsername[created.Username] = &created

	cp := created
	return &cp, nil
}
