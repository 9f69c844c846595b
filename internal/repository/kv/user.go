package kv

import (
	"context"
	"errors"
	"strings"

	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/repository"
	"azoom-rental-backend/internal/storage"
)

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type userRepository struct {
	kv storage.KeyValueStore
}

func NewUserRepository(kv storage.KeyValueStore) repository.UserRepository {
	return &userRepository{kv: kv}
}

func (r *userRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return loadList[domain.User](ctx, r.kv, KeyUsers)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if sameEmail(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	return updateList(ctx, r.kv, KeyUsers, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if sameEmail(u.Email, user.Email) {
				return nil, repository.ErrDuplicateEmail
			}
		}
		return append(users, *user), nil
	})
}

func (r *userRepository) DeleteUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var removed *domain.User
	err := updateList(ctx, r.kv, KeyUsers, func(users []domain.User) ([]domain.User, error) {
		removed = nil
		kept := users[:0]
		for i := range users {
			if removed == nil && sameEmail(users[i].Email, email) {
				u := users[i]
				removed = &u
				continue
			}
			kept = append(kept, users[i])
		}
		if removed == nil {
			return nil, repository.ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *userRepository) ReplaceUsers(ctx context.Context, users []domain.User) error {
	return updateList(ctx, r.kv, KeyUsers, func([]domain.User) ([]domain.User, error) {
		return users, nil
	})
}

type staffRepository struct {
	kv storage.KeyValueStore
}

func NewStaffRepository(kv storage.KeyValueStore) repository.StaffRepository {
	return &staffRepository{kv: kv}
}

func (r *staffRepository) ListStaff(ctx context.Context) ([]domain.Staff, error) {
	return loadList[domain.Staff](ctx, r.kv, KeyStaff)
}

func (r *staffRepository) GetStaffByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	staff, err := r.ListStaff(ctx)
	if err != nil {
		return nil, err
	}
	for i := range staff {
		if sameEmail(staff[i].Email, email) {
			return &staff[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *staffRepository) CreateStaff(ctx context.Context, s *domain.Staff) error {
	return updateList(ctx, r.kv, KeyStaff, func(staff []domain.Staff) ([]domain.Staff, error) {
		for _, existing := range staff {
			if sameEmail(existing.Email, s.Email) {
				return nil, repository.ErrDuplicateEmail
			}
		}
		return append(staff, *s), nil
	})
}

type preferenceRepository struct {
	kv storage.KeyValueStore
}

func NewPreferenceRepository(kv storage.KeyValueStore) repository.PreferenceRepository {
	return &preferenceRepository{kv: kv}
}

func (r *preferenceRepository) GetSavedEmail(ctx context.Context) (string, error) {
	entry, err := r.kv.Get(ctx, KeySavedEmail)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(entry.Value), nil
}

func (r *preferenceRepository) SetSavedEmail(ctx context.Context, email string) error {
	return storage.Update(ctx, r.kv, KeySavedEmail, func([]byte, bool) ([]byte, error) {
		return []byte(email), nil
	})
}
