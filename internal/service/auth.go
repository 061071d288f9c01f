package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/refrain2333/link-ai/internal/auth"
	"github.com/refrain2333/link-ai/internal/config"
	"github.com/refrain2333/link-ai/internal/domain"
	"github.com/refrain2333/link-ai/internal/repository"
	"github.com/shopspring/decimal"
)

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService struct {
	store          repository.Store
	tokens         *auth.TokenIssuer
	initialCredits decimal.Decimal
	notifier       Notifier
	validate       *validator.Validate
	now            func() time.Time
}

func NewAuthService(store repository.Store, tokens *auth.TokenIssuer, initialCredits decimal.Decimal, notifier Notifier) *AuthService {
	return &AuthService{
		store:          store,
		tokens:         tokens,
		initialCredits: initialCredits,
		notifier:       orNop(notifier),
		validate:       validator.New(),
		now:            time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(field, password string) error {
	if len(password) < config.MinPasswordLength || len(password) > config.MaxPasswordLength {
		return domain.Validation(field, fmt.Sprintf("%s must be %d to %d characters",
			field, config.MinPasswordLength, config.MaxPasswordLength))
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > config.MaxNameLength {
		return "", domain.Validation("name", fmt.Sprintf("name must be 1 to %d characters", config.MaxNameLength))
	}
	return name, nil
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return nil, domain.Validation("email", "email must be a valid address")
	}
	if err := validatePassword("password", password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, domain.NewUser{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         domain.RoleUser,
		Credits:      s.initialCredits,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.notifier.LogRegistration(user)
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies credentials and records the login. Unknown email and wrong
// password fail identically.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var result *AuthResult
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		user, err := tx.GetUserByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return domain.ErrInvalidCredentials
			}
			return fmt.Errorf("lock user: %w", err)
		}

		ok, err := auth.CheckPassword(user.PasswordHash, password)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInvalidCredentials
		}

		token, err := s.tokens.Issue(user)
		if err != nil {
			return err
		}

		now := s.now()
		if err := tx.RecordLogin(ctx, user.ID, ip, now); err != nil {
			return fmt.Errorf("record login: %w", err)
		}
		user.LastLoginAt = &now
		if ip != "" {
			user.LastLoginIP = &ip
		}

		result = &AuthResult{Token: token, User: user}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := auth.CheckPassword(user.PasswordHash, oldPassword)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrWrongPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.store.GetUserByID(ctx, userID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, name string) (*domain.User, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateUserName(ctx, userID, name)
}

func (s *AuthService) Stats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.Credits = user.Credits
	stats.CreditsUsed = user.CreditsUsed
	return stats, nil
}
