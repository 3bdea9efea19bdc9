package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks a user payload that failed validation. The wrapped
// message names the offending field.
var ErrInvalid = errors.New("invalid user")

// Service contains business logic for user management.
type Service struct {
	repo     *Repository
	validate *validator.Validate
}

// NewService creates a new user Service.
func NewService(repo *Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// GetByID returns a user by id.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Create validates and registers a new user.
func (s *Service) Create(ctx context.Context, u *User) (*User, error) {
	if err := s.validateUser(u); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces the record identified by id with the given payload. The
// record must already exist and keeps its original id regardless of the
// payload's id field.
func (s *Service) Update(ctx context.Context, id int64, u *User) (*User, error) {
	if err := s.validateUser(u); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	u.ID = id
	return s.repo.Update(ctx, u)
}

// Delete removes a user by id; the user must exist.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// validateUser applies the struct tags plus the birthday-in-the-past rule.
func (s *Service) validateUser(u *User) error {
	if err := s.validate.Struct(u); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: field %s failed on %q", ErrInvalid, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if u.Birthday.IsZero() {
		return fmt.Errorf("%w: birthday is required", ErrInvalid)
	}
	if !u.Birthday.Before(time.Now()) {
		return fmt.Errorf("%w: birthday must be in the past", ErrInvalid)
	}
	return nil
}
