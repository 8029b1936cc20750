package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string
	byPhone map[string]string
}

// NewMemoryRepository builds an in-memory user store for testing and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
		byPhone: make(map[string]string),
	}
}

func (r *memoryRepository) FindByEmailOrPhone(_ context.Context, email, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.byEmail[email]; ok && email != "" {
		return r.byID[id], nil
	}
	if id, ok := r.byPhone[phone]; ok && phone != "" {
		return r.byID[id], nil
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) CreateWithProfile(_ context.Context, user User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return User{}, ErrConflict
	}
	if _, exists := r.byPhone[user.PhoneNumber]; exists {
		return User{}, ErrConflict
	}
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user.ID
	r.byPhone[user.PhoneNumber] = user.ID
	return user, nil
}

func (r *memoryRepository) Ping(context.Context) error { return nil }
