package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sirupsen/logrus"

	"taskhub/internal/auth"
	"taskhub/internal/authz"
	"taskhub/internal/domain"
	"taskhub/internal/repository"
)

const minPasswordLength = 8

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUserAlreadyExists is returned when registering an email that is taken.
	ErrUserAlreadyExists = fmt.Errorf("email already registered: %w", domain.ErrConflict)
)

// UserService describes user lifecycle operations. Administrative calls take
// the acting principal and are authorized through the authz engine.
type UserService interface {
	Register(ctx context.Context, actor domain.Principal, email, password string, role domain.Role) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Current(ctx context.Context, id int64) (*domain.User, error)
	GetUser(ctx context.Context, actor domain.Principal, id int64) (*domain.User, error)
	ListUsers(ctx context.Context, actor domain.Principal) ([]domain.User, error)
	UpdateUser(ctx context.Context, actor domain.Principal, id int64, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, actor domain.Principal, id int64) error
}

type userService struct {
	users  repository.UserRepository
	hasher *auth.PasswordHasher
	engine *authz.Engine
	log    logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, hasher *auth.PasswordHasher, engine *authz.Engine, log logrus.FieldLogger) UserService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &userService{
		users:  users,
		hasher: hasher,
		engine: engine,
		log:    log,
	}
}

func (s *userService) Register(ctx context.Context, actor domain.Principal, email, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleRegular
	}
	if !role.Valid() {
		return nil, domain.Invalid("role", fmt.Sprintf("unknown role %q", role))
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	if err := s.authorize(actor, authz.Request{Principal: actor, Op: authz.OpCreateUser, Role: role}); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

// Current loads the caller's own record; it needs no authorization beyond authentication.
func (s *userService) Current(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetUser(ctx context.Context, actor domain.Principal, id int64) (*domain.User, error) {
	if err := s.authorize(actor, authz.Request{Principal: actor, Op: authz.OpReadUser}); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) ListUsers(ctx context.Context, actor domain.Principal) ([]domain.User, error) {
	if err := s.authorize(actor, authz.Request{Principal: actor, Op: authz.OpListUsers}); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor domain.Principal, id int64, patch domain.UserPatch) (*domain.User, error) {
	if err := s.authorize(actor, authz.Request{Principal: actor, Op: authz.OpUpdateUser}); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, domain.Invalid("role", fmt.Sprintf("unknown role %q", *patch.Role))
		}
		user.Role = *patch.Role
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, actor domain.Principal, id int64) error {
	if err := s.authorize(actor, authz.Request{Principal: actor, Op: authz.OpDeleteUser}); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	return nil
}

func (s *userService) authorize(actor domain.Principal, req authz.Request) error {
	d := s.engine.Decide(req)
	if d.Allowed {
		return nil
	}
	s.log.WithFields(logrus.Fields{
		"principal": actor.ID,
		"op":        req.Op,
		"rule":      d.Rule,
		"reason":    d.Reason,
	}).Info("authorization denied")
	return d.Err()
}

func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.Invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.Invalid("email", "invalid email address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if strings.TrimSpace(password) == "" {
		return domain.Invalid("password", "password is required")
	}
	if len(password) < minPasswordLength {
		return domain.Invalid("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
