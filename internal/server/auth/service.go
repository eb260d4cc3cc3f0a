// Package auth issues emailed one-time codes and the sessions they are
// exchanged for.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vicktor007/store-lit/internal/common"
	"github.com/Vicktor007/store-lit/internal/cryptox"
	"github.com/Vicktor007/store-lit/internal/dbx"
	"github.com/Vicktor007/store-lit/internal/logging"
	"github.com/Vicktor007/store-lit/internal/server/config"
	"github.com/Vicktor007/store-lit/internal/server/models"
	"github.com/Vicktor007/store-lit/internal/server/notify"
	"github.com/Vicktor007/store-lit/internal/server/repositories/repomanager"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Service struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	mailer          notify.Mailer
	jwtSecret       []byte
	sessionValidity time.Duration
	codeValidity    time.Duration
	maxAttempts     int
	log             logging.Logger
	now             func() time.Time
}

func NewService(db *sql.DB, m repomanager.RepositoryManager, mailer notify.Mailer, cfg *config.Config, log logging.Logger) *Service {
	return &Service{
		db:              db,
		repomanager:     m,
		mailer:          mailer,
		jwtSecret:       []byte(cfg.SecretKey),
		sessionValidity: cfg.SessionValidityDuration,
		codeValidity:    cfg.OneTimeCodeValidityDuration,
		maxAttempts:     cfg.OneTimeCodeMaxAttempts,
		log:             log,
		now:             time.Now,
	}
}

// SendOneTimeCode makes sure an account exists for email, replaces its
// pending code with a fresh one and queues the code for delivery.
func (s *Service) SendOneTimeCode(ctx context.Context, email string) (string, error) {
	account, err := s.repomanager.Accounts(s.db).GetOrCreate(ctx, email)
	if err != nil {
		return "", fmt.Errorf("error getting account: %w", err)
	}

	code, err := common.MakeNumericCode(common.OneTimeCodeLength)
	if err != nil {
		return "", common.ErrorInternal
	}

	salt := cryptox.NewSalt()
	otp := &models.OneTimeCode{
		AccountID: account.ID,
		Hash:      cryptox.HashCode(code, salt),
		Salt:      salt,
		ExpiresAt: s.now().Add(s.codeValidity),
	}
	if err := s.repomanager.OneTimeCodes(s.db).Upsert(ctx, otp); err != nil {
		return "", fmt.Errorf("error storing code: %w", err)
	}

	if err := s.mailer.SendOneTimeCode(ctx, account.Email, code, account.ID); err != nil {
		return "", fmt.Errorf("error sending code: %w", err)
	}
	return account.ID, nil
}

// CreateSession exchanges a pending code for a signed session token. Codes
// are single use and burn after maxAttempts wrong guesses.
func (s *Service) CreateSession(ctx context.Context, accountID, code string) (string, error) {
	codes := s.repomanager.OneTimeCodes(s.db)

	otp, err := codes.Get(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error reading code: %w", err)
	}

	if !s.now().Before(otp.ExpiresAt) {
		s.burnCode(ctx, accountID, "expired")
		return "", common.ErrCodeExpired
	}
	if otp.Attempts >= s.maxAttempts {
		s.burnCode(ctx, accountID, "too many attempts")
		return "", common.ErrTooManyAttempts
	}

	if !cryptox.VerifyCode(code, otp.Salt, otp.Hash) {
		n, err := codes.IncrementAttempts(ctx, accountID)
		if err != nil {
			return "", fmt.Errorf("error counting attempt: %w", err)
		}
		if n >= s.maxAttempts {
			s.burnCode(ctx, accountID, "too many attempts")
			return "", common.ErrTooManyAttempts
		}
		return "", common.ErrCodeMismatch
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		AccountID: accountID,
		ExpiresAt: s.now().Add(s.sessionValidity),
	}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.OneTimeCodes(tx).Delete(ctx, accountID); err != nil {
			return err
		}
		return s.repomanager.Sessions(tx).Create(ctx, session)
	})
	if err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	token, err := GenerateToken(session.ID, accountID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// burnCode deletes the pending code of accountID. A failed delete leaves a
// code that can no longer be used, so it is only logged.
func (s *Service) burnCode(ctx context.Context, accountID, reason string) {
	if err := s.repomanager.OneTimeCodes(s.db).Delete(ctx, accountID); err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.log.Warn(ctx, "failed to delete one-time code", "account_id", accountID, "reason", reason, "error", err)
	}
}

// GetCurrentIdentity resolves a session token to its account id. The token
// must verify and its session row must still exist and be unexpired.
func (s *Service) GetCurrentIdentity(ctx context.Context, secret string) (string, error) {
	claims, err := ParseToken(secret, s.jwtSecret)
	if err != nil {
		return "", common.ErrorUnauthorized
	}

	session, err := s.repomanager.Sessions(s.db).Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("error reading session: %w", err)
	}
	if session.AccountID != claims.AccountID || !s.now().Before(session.ExpiresAt) {
		return "", common.ErrorUnauthorized
	}
	return session.AccountID, nil
}

// DestroySession deletes the session behind secret. Unknown sessions and
// unusable tokens are ignored; expired tokens still end their session.
func (s *Service) DestroySession(ctx context.Context, secret string) error {
	claims, err := ParseToken(secret, s.jwtSecret, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil
	}
	err = s.repomanager.Sessions(s.db).Delete(ctx, claims.SessionID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// DestroyAccountSessions ends every session of accountID.
func (s *Service) DestroyAccountSessions(ctx context.Context, accountID string) error {
	if err := s.repomanager.Sessions(s.db).DeleteByAccount(ctx, accountID); err != nil {
		return fmt.Errorf("error deleting sessions: %w", err)
	}
	return nil
}
