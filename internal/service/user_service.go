package service

import (
	"context"
	"errors"
	"strings"

	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

func (s *UserService) CreateUser(ctx context.Context, in models.UserInput) (*models.User, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalidArgument("name must not be blank")
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		return nil, invalidArgument("email must not be blank")
	}

	user := &models.User{Name: strings.TrimSpace(*in.Name), Email: strings.TrimSpace(*in.Email)}
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		taken, err := repo.EmailTaken(ctx, user.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateEmail
		}
		return repo.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, s.userError(err, user.Email)
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("User created")
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		u, err := repo.GetUser(ctx, id)
		if err != nil {
			return lookup(err, "user", id)
		}
		user = u
		return nil
	})
	return user, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		var err error
		users, err = repo.ListUsers(ctx)
		return err
	})
	return users, err
}

// UpdateUser applies the non-blank fields of patch. Keeping one's own email is not a conflict.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		u, err := repo.GetUser(ctx, id)
		if err != nil {
			return lookup(err, "user", id)
		}

		if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
			u.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
			email := strings.TrimSpace(*patch.Email)
			taken, err := repo.EmailTaken(ctx, email, u.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateEmail
			}
			u.Email = email
		}

		if err := repo.UpdateUser(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, s.userError(err, "")
	}

	s.logger.Info().Int64("user_id", id).Msg("User updated")
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	err := s.store.WithTx(ctx, func(repo domain.Repository) error {
		if err := repo.DeleteUser(ctx, id); err != nil {
			return lookup(err, "user", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info().Int64("user_id", id).Msg("User deleted")
	return nil
}

func (s *UserService) userError(err error, email string) error {
	if errors.Is(err, database.ErrDuplicateEmail) || errors.Is(err, ErrDuplicateEmail) {
		s.logger.Warn().Str("email", email).Msg("Email already registered")
		return ErrDuplicateEmail
	}
	return err
}
