package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// UserService implements account administration.
type UserService struct {
	users ports.UserRepository
	now   func() time.Time
}

func NewUserService(users ports.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) Create(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	u := &domain.User{
		Username: strings.TrimSpace(in.Username),
		Email:    strings.TrimSpace(in.Email),
		Name:     strings.TrimSpace(in.Name),
		Role:     in.Role,
		IsActive: true,
	}
	if u.Role == "" {
		u.Role = domain.RoleAM
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if u.Username == "" || u.Email == "" || u.Name == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email, name and password are required", domain.ErrInvalidInput)
	}
	if err := validateUser(u); err != nil {
		return nil, err
	}

	clash, err := s.users.ExistsUsernameOrEmail(ctx, u.Username, u.Email, "")
	if err != nil {
		return nil, err
	}
	if clash {
		return nil, domain.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)

	now := s.now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	return s.users.Create(ctx, u)
}

// Update replaces the non-empty fields of in. A blank password keeps the
// current one.
func (s *UserService) Update(ctx context.Context, id string, in ports.UserInput) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.Username); v != "" {
		u.Username = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		u.Email = v
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		u.Name = v
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := validateUser(u); err != nil {
		return nil, err
	}

	clash, err := s.users.ExistsUsernameOrEmail(ctx, u.Username, u.Email, u.ID)
	if err != nil {
		return nil, err
	}
	if clash {
		return nil, domain.ErrUserExists
	}

	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. Callers cannot delete their own account.
func (s *UserService) Delete(ctx context.Context, who domain.Identity, id string) error {
	if id == who.UserID {
		return domain.ErrSelfDelete
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

func validateUser(u *domain.User) error {
	if !domain.ValidRole(u.Role) {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, u.Role)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", domain.ErrInvalidInput, u.Email)
	}
	return nil
}
