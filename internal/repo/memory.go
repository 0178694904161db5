package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"Flashover/internal/calc/input"
)

// MemoryRepository keeps everything in process. Used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]memUser
	sets   map[int]memSet
	nextID int
}

type memUser struct {
	id    int
	email string
	hash  string
}

type memSet struct {
	owner int
	set   InputSet
}

func NewMemory() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]memUser),
		sets:  make(map[int]memSet),
	}
}

func (r *MemoryRepository) id() int {
	r.nextID++
	return r.nextID
}

func (r *MemoryRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for l, u := range r.users {
		if l == login || u.email == email {
			return 0, fmt.Errorf("user %s already exists", login)
		}
	}
	u := memUser{id: r.id(), email: email, hash: password}
	r.users[login] = u
	return u.id, nil
}

func (r *MemoryRepository) GetByLogin(ctx context.Context, login string) (int, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[login]
	if !ok {
		return 0, "", nil
	}
	return u.id, u.hash, nil
}

func (r *MemoryRepository) SaveInputs(ctx context.Context, userID int, set InputSet) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set.ID = r.id()
	set.Fields = clone(set.Fields)
	set.Updated = time.Now()
	r.sets[set.ID] = memSet{owner: userID, set: set}
	return set.ID, nil
}

func (r *MemoryRepository) UpdateInputs(ctx context.Context, userID int, set InputSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[set.ID]
	if !ok || s.owner != userID {
		return ErrNotFound
	}
	set.Fields = clone(set.Fields)
	set.Updated = time.Now()
	r.sets[set.ID] = memSet{owner: userID, set: set}
	return nil
}

func (r *MemoryRepository) GetInputs(ctx context.Context, userID, id int) (InputSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[id]
	if !ok || s.owner != userID {
		return InputSet{}, ErrNotFound
	}
	set := s.set
	set.Fields = clone(set.Fields)
	return set, nil
}

func (r *MemoryRepository) ListInputs(ctx context.Context, userID int) ([]InputSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sets := []InputSet{}
	for _, s := range r.sets {
		if s.owner == userID {
			sets = append(sets, s.set)
		}
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].ID > sets[j].ID })
	return sets, nil
}

func (r *MemoryRepository) DeleteInputs(ctx context.Context, userID, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sets[id]
	if !ok || s.owner != userID {
		return ErrNotFound
	}
	delete(r.sets, id)
	return nil
}

func clone(f input.Fields) input.Fields {
	out := make(input.Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
