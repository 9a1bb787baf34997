package directory

import (
	"context"
	"fmt"
	"strings"

	"splitbot/internal/core"
	"splitbot/internal/rowstore"
)

// users table layout: A userId | B userName.

type UserRepo struct {
	store rowstore.Store
}

func NewUserRepo(store rowstore.Store) *UserRepo {
	return &UserRepo{store: store}
}

// GetByID returns the stored user info, or nil when the user is unknown.
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*core.UserInfo, error) {
	rows, err := r.store.ReadAllRows(ctx, rowstore.TableUsers)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(row[0]) != strings.TrimSpace(userID) {
			continue
		}
		name := ""
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}
		return &core.UserInfo{UserID: strings.TrimSpace(userID), Name: name}, nil
	}
	return nil, nil
}

// CreateIfNotExists registers the user on first contact and is a no-op for
// returning users.
func (r *UserRepo) CreateIfNotExists(ctx context.Context, userID, name string) (core.UserInfo, error) {
	existing, err := r.GetByID(ctx, userID)
	if err != nil {
		return core.UserInfo{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	if err := r.store.AppendRows(ctx, rowstore.TableUsers, [][]string{{userID, name}}); err != nil {
		return core.UserInfo{}, fmt.Errorf("create user %s: %w", userID, err)
	}
	return core.UserInfo{UserID: userID, Name: name}, nil
}
