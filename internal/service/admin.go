package service

import (
	"user-management-app/internal/domain"
)

// AdminService implements the bulk user administration operations.
// Targets are mutated one by one with no atomicity across the set; ids that
// resolve to nothing are skipped silently.
type AdminService struct {
	users domain.UserRepository
}

func NewAdminService(users domain.UserRepository) *AdminService {
	return &AdminService{users: users}
}

// Actor resolves the acting user for the pre-mutation guard.
func (s *AdminService) Actor(id string) (*domain.User, error) {
	return s.users.FindByID(id)
}

// List returns every user, most recently active first.
func (s *AdminService) List() ([]domain.User, error) {
	return s.users.ListByLastLogin()
}

// Block marks every resolvable target as blocked and reports whether the set
// included the actor. All targets are mutated before the caller reacts to a
// self-block, so the actor's own row goes through the same path as any other.
func (s *AdminService) Block(actorID string, targetIDs []string) (selfTargeted bool, err error) {
	selfTargeted = containsID(targetIDs, actorID)
	if err := s.setBlocked(targetIDs, true); err != nil {
		return selfTargeted, err
	}
	return selfTargeted, nil
}

// Unblock marks every resolvable target as unblocked. No self-targeting
// special case: the guard already required the actor not be blocked.
func (s *AdminService) Unblock(targetIDs []string) error {
	return s.setBlocked(targetIDs, false)
}

// Delete removes target rows. A self-delete short-circuits the batch: only
// the actor's row is removed and the remaining ids stay untouched.
func (s *AdminService) Delete(actorID string, targetIDs []string) (selfDeleted bool, err error) {
	if containsID(targetIDs, actorID) {
		return true, s.deleteOne(actorID)
	}
	for _, id := range targetIDs {
		if id == "" {
			continue
		}
		if err := s.deleteOne(id); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (s *AdminService) setBlocked(targetIDs []string, blocked bool) error {
	for _, id := range targetIDs {
		u, err := s.users.FindByID(id)
		if err != nil {
			return err
		}
		if u == nil {
			continue
		}
		u.IsBlocked = blocked
		if err := s.users.Update(u); err != nil {
			return err
		}
	}
	return nil
}

func (s *AdminService) deleteOne(id string) error {
	u, err := s.users.FindByID(id)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}
	return s.users.Delete(u.ID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
