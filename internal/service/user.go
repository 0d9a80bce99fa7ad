package service

import (
	"context"

	"itemapi/internal/dberr"
	"itemapi/internal/model"
	"itemapi/internal/repository"
	"itemapi/internal/uow"
)

// UserCreate is the validated input for creating a user.
type UserCreate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserUpdate is a partial update: only non-nil fields are applied.
type UserUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (in UserUpdate) applyTo(user *model.User) {
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
}

// UserService defines the business operations on users.
type UserService interface {
	// GetUser returns the user or a not-found error.
	GetUser(ctx context.Context, id int64) (*model.User, error)

	// GetUsers lists users with pagination.
	GetUsers(ctx context.Context, skip, limit int) ([]model.User, error)

	// CreateUser creates a user.
	CreateUser(ctx context.Context, in UserCreate) (*model.User, error)

	// UpdateUser applies a partial update to an existing user.
	UpdateUser(ctx context.Context, id int64, in UserUpdate) (*model.User, error)

	// DeleteUser removes a user; a user who still owns items cannot be
	// deleted.
	DeleteUser(ctx context.Context, id int64) (*model.User, error)
}

type userService struct {
	uow *uow.Factory
}

// NewUserService constructs a UserService.
func NewUserService(factory *uow.Factory) UserService {
	return &userService{uow: factory}
}

func (s *userService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user *model.User
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		user, err = u.Users().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFoundf("user with id %d not found", id)
	}
	return user, nil
}

func (s *userService) GetUsers(ctx context.Context, skip, limit int) ([]model.User, error) {
	var users []model.User
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		users, err = u.Users().GetAll(ctx, skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userService) CreateUser(ctx context.Context, in UserCreate) (*model.User, error) {
	var created *model.User
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		created, err = u.Users().Create(ctx, &model.User{Name: in.Name, Email: in.Email})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *userService) UpdateUser(ctx context.Context, id int64, in UserUpdate) (*model.User, error) {
	var updated *model.User
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		user, err := u.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return notFoundf("user with id %d not found", id)
		}

		in.applyTo(user)
		updated, err = u.Users().Update(ctx, user)
		if err != nil {
			return err
		}
		if updated == nil {
			return notFoundf("user with id %d not found", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) (*model.User, error) {
	var deleted *model.User
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		user, err := u.Users().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil {
			return notFoundf("user with id %d not found", id)
		}

		total, err := u.Items().CountBySpecification(ctx, repository.ItemOwnedBy(id))
		if err != nil {
			return err
		}
		if total > 0 {
			owned, err := u.Items().GetByOwner(ctx, id, 0, total)
			if err != nil {
				return err
			}
			deps := make([]dberr.Dependency, 0, len(owned))
			for _, item := range owned {
				deps = append(deps, dberr.Dependency{EntityType: "item", EntityID: item.ID})
			}
			return &dberr.DeletionBlockedError{
				EntityType:   "user",
				EntityID:     id,
				Reason:       "user still owns items",
				Dependencies: deps,
			}
		}

		if _, err := u.Users().Delete(ctx, id); err != nil {
			return err
		}
		deleted = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
