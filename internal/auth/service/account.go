package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/surveybasket/internal/auth/credential"
	"github.com/aussiebroadwan/surveybasket/internal/auth/domain"
	"github.com/aussiebroadwan/surveybasket/internal/auth/jobs"
	"github.com/aussiebroadwan/surveybasket/internal/auth/store"
	"github.com/aussiebroadwan/surveybasket/pkg/idx"
	"github.com/aussiebroadwan/surveybasket/pkg/slogx"
)

const (
	subjectEmailConfirmation = "Survey Basket: Email Confirmation"
	subjectForgetPassword    = "Survey Basket: Change Password"
)

type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (r RegisterRequest) Validate() error {
	return errors.Join(
		domain.ValidateEmail(r.Email),
		domain.ValidatePassword(r.Password),
		domain.ValidateName("firstName", r.FirstName),
		domain.ValidateName("lastName", r.LastName),
	)
}

// AccountService covers self-service account flows that go through emailed
// action codes.
type AccountService struct {
	Store       store.Store
	Credentials credential.Provider
	Queue       jobs.Queue

	// Origin is the front-end base URL used in emailed links.
	Origin string
}

// EncodeCode makes an opaque action code safe for links.
func EncodeCode(code string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(code))
}

// DecodeCode reverses EncodeCode. Any decoding failure is ErrInvalidCode.
func DecodeCode(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(strings.TrimSpace(encoded), "="))
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidCode
	}
	return string(raw), nil
}

// Register creates an unconfirmed user in the default role and emails a
// confirmation link.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	_, err := s.Store.Users().GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return ErrEmailAlreadyExist
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	hash, err := s.Credentials.HashPassword(req.Password)
	if err != nil {
		return err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        strings.TrimSpace(req.Email),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hash,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		role, err := tx.Roles().GetDefaultRole(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		u.Roles = []string{role.Name}
		return tx.Users().SetUserRoles(ctx, u.ID, []string{role.ID})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrEmailAlreadyExist
		}
		slogx.FromContext(ctx).Error("create account", slog.Any("error", err))
		return ErrInvalidCreateAccount
	}

	return s.sendConfirmation(ctx, u)
}

// ConfirmEmail consumes an encoded confirmation code.
func (s *AccountService) ConfirmEmail(ctx context.Context, userID, encodedCode string) error {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if u.EmailConfirmed {
		return ErrDuplicatedConfirmation
	}

	code, err := DecodeCode(encodedCode)
	if err != nil {
		return err
	}
	return mapCredentialErr(s.Credentials.ConfirmEmail(ctx, u.ID, code))
}

// ResendConfirmationEmail is silent for unknown addresses.
func (s *AccountService) ResendConfirmationEmail(ctx context.Context, email string) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.EmailConfirmed {
		return ErrDuplicatedConfirmation
	}
	return s.sendConfirmation(ctx, u)
}

// ForgetPassword emails a reset link. Unknown addresses succeed silently.
func (s *AccountService) ForgetPassword(ctx context.Context, email string) error {
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if !u.EmailConfirmed {
		return ErrEmailNotConfirmed
	}

	code, err := s.Credentials.GenerateResetCode(ctx, u.ID)
	if err != nil {
		return err
	}
	encoded := EncodeCode(code)
	link := s.Origin + "/auth/forgetPassword?" + url.Values{"email": {u.Email}, "code": {encoded}}.Encode()

	slogx.FromContext(ctx).Debug("password reset code issued", slog.String("user_id", u.ID))
	return s.enqueue(ctx, u, subjectForgetPassword, domain.TemplateForgetPassword, link)
}

// ResetPassword consumes an encoded reset code and sets newPassword.
func (s *AccountService) ResetPassword(ctx context.Context, email, encodedCode, newPassword string) error {
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if !u.EmailConfirmed {
		return ErrInvalidCode
	}

	code, err := DecodeCode(encodedCode)
	if err != nil {
		return err
	}
	return mapCredentialErr(s.Credentials.ResetPassword(ctx, u.ID, code, newPassword))
}

func (s *AccountService) sendConfirmation(ctx context.Context, u domain.User) error {
	code, err := s.Credentials.GenerateConfirmationCode(ctx, u.ID)
	if err != nil {
		return err
	}
	encoded := EncodeCode(code)
	link := s.Origin + "/auth/emailConfirmation?" + url.Values{"userId": {u.ID}, "code": {encoded}}.Encode()

	slogx.FromContext(ctx).Debug("confirmation code issued", slog.String("user_id", u.ID))
	return s.enqueue(ctx, u, subjectEmailConfirmation, domain.TemplateEmailConfirmation, link)
}

// enqueue logs a failed hand-off instead of returning it. The code is already
// stored and can be resent.
func (s *AccountService) enqueue(ctx context.Context, u domain.User, subject string, tmpl domain.EmailTemplate, link string) error {
	task := domain.EmailTask{
		ID:       idx.NewAt(time.Now().UTC()).String(),
		To:       u.Email,
		Subject:  subject,
		Template: tmpl,
		Data:     map[string]string{"name": u.FirstName, "action_url": link},
	}
	if err := s.Queue.Enqueue(ctx, task); err != nil {
		slogx.FromContext(ctx).Error("enqueue email",
			slog.String("template", string(tmpl)),
			slog.Any("error", fmt.Errorf("task %s: %w", task.ID, err)),
		)
	}
	return nil
}

func mapCredentialErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, credential.ErrInvalidCode):
		return ErrInvalidCode
	case errors.Is(err, credential.ErrAlreadyConfirmed):
		return ErrDuplicatedConfirmation
	default:
		return err
	}
}
