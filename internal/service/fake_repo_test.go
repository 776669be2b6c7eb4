package service

import (
	"errors"
	"sort"
	"sync"

	"user-management-app/internal/domain"
)

// memRepo is an in-memory UserRepository that mimics the store's unique
// indexes, including the error text a real driver would produce.
type memRepo struct {
	mu    sync.Mutex
	users map[string]domain.User

	failNext  error // next call of any method returns this
	createErr error // Create always returns this when set
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]domain.User{}}
}

func (r *memRepo) takeErr() error {
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *memRepo) Create(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return err
	}
	if r.createErr != nil {
		return r.createErr
	}
	for _, v := range r.users {
		if v.Email == u.Email {
			return errors.New(`duplicate key value violates unique constraint "uni_users_email"`)
		}
		if v.UserName == u.UserName {
			return errors.New(`duplicate key value violates unique constraint "uni_users_user_name"`)
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) FindByID(id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	if u, ok := r.users[id]; ok {
		cp := u
		return &cp, nil
	}
	return nil, nil
}

func (r *memRepo) FindByEmail(email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindByUserName(name string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UserName == name {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ListByLastLogin() ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastLoginTime.After(out[j].LastLoginTime)
	})
	return out, nil
}

func (r *memRepo) Update(u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return err
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.takeErr(); err != nil {
		return err
	}
	delete(r.users, id)
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memRepo) get(id string) (domain.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *memRepo) put(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}
