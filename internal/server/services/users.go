package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// Authenticator is the one-time code and session backend.
type Authenticator interface {
	SendOneTimeCode(ctx context.Context, email string) (string, error)
	CreateSession(ctx context.Context, accountID, code string) (string, error)
	GetCurrentIdentity(ctx context.Context, secret string) (string, error)
	DestroySession(ctx context.Context, secret string) error
	DestroyAccountSessions(ctx context.Context, accountID string) error
}

// UserService covers sign-up, sign-in, the current user and their avatar.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	auth        Authenticator
	files       *FileSaga
	accounts    *AccountSaga
	validate    *validator.Validate
	log         logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, auth Authenticator,
	files *FileSaga, accounts *AccountSaga, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		auth:        auth,
		files:       files,
		accounts:    accounts,
		validate:    validator.New(),
		log:         log,
	}
}

// CreateAccount mails a sign-in code to email and creates the User on first
// sign-up. Signing up again with a known email only sends a new code.
func (s *UserService) CreateAccount(ctx context.Context, fullName, email string) (string, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" {
		return "", fmt.Errorf("%w: full name is required", common.ErrorValidation)
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}

	users := s.repomanager.Users(s.db)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	accountID, err := s.auth.SendOneTimeCode(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to send an OTP: %w", err)
	}

	if existing == nil {
		_, err := users.Create(ctx, &models.User{
			AccountID: accountID,
			FullName:  fullName,
			Email:     email,
			AvatarURL: models.PlaceholderAvatars[0],
		})
		if err != nil {
			return "", fmt.Errorf("error creating user: %w", err)
		}
		s.log.Info(ctx, "user signed up", "account_id", accountID)
	}
	return accountID, nil
}

// SignIn sends a code to a known user. Unknown emails report
// common.ErrorNotFound.
func (s *UserService) SignIn(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}

	if _, err := s.repomanager.Users(s.db).GetByEmail(ctx, email); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("user not found: %w", common.ErrorNotFound)
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	accountID, err := s.auth.SendOneTimeCode(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to send an OTP: %w", err)
	}
	return accountID, nil
}

// VerifySecret exchanges a code for a session secret.
func (s *UserService) VerifySecret(ctx context.Context, accountID, code string) (string, error) {
	if accountID == "" || code == "" {
		return "", fmt.Errorf("%w: account id and code are required", common.ErrorValidation)
	}
	return s.auth.CreateSession(ctx, accountID, strings.TrimSpace(code))
}

// GetCurrentUser resolves secret to its User.
func (s *UserService) GetCurrentUser(ctx context.Context, secret string) (*models.User, error) {
	accountID, err := s.auth.GetCurrentIdentity(ctx, secret)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).GetByAccountID(ctx, accountID)
}

func (s *UserService) SignOut(ctx context.Context, secret string) error {
	return s.auth.DestroySession(ctx, secret)
}

func (s *UserService) SetAvatarFromUpload(ctx context.Context, user *models.User, up Upload, path string) (*models.File, error) {
	if t, ext := models.DetectFileType(up.Name); t != models.FileTypeImage {
		return nil, fmt.Errorf("%w: .%s", common.ErrorNotAnImage, ext)
	}
	return s.files.SetAvatarFromUpload(ctx, user.ID, user.AccountID, up, PriorAvatarOf(user), path)
}

func (s *UserService) SetAvatarFromPlaceholder(ctx context.Context, user *models.User, placeholderURL string) (*models.User, error) {
	return s.files.SetAvatarFromPlaceholder(ctx, user.ID, placeholderURL, PriorAvatarOf(user))
}

// DeleteAccount removes the user with all their files and ends every session
// of their account.
func (s *UserService) DeleteAccount(ctx context.Context, user *models.User) error {
	if err := s.accounts.DeleteAccount(ctx, user.ID); err != nil {
		return err
	}
	if err := s.auth.DestroyAccountSessions(ctx, user.AccountID); err != nil {
		s.log.Warn(ctx, "ending sessions of deleted account failed", "account_id", user.AccountID, "error", err)
	}
	return nil
}
