package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/revelohq/revelo/core"
)

var (
	// errors
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrUsernameExists   = errors.New("a user with this username already exists")
	ErrAuthFailed       = errors.New("invalid email or password")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrCodeInvalid      = errors.New("invalid or expired verification code")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, username, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByUsernameOrEmail(ctx context.Context, name string) (User, error)
		// SetVerifyCode stores a fresh code + expiry on the user.
		SetVerifyCode(ctx context.Context, id, code string, expiry time.Time) error
		// MarkVerified clears the code and flags the email verified.
		MarkVerified(ctx context.Context, id string) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger, conf: conf}
}

// Register creates an unverified user and sends the verification code.
// An email-provider failure does not roll the user back; it is logged
// and the caller gets the created user with a warning-level outcome.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	if err := svc.repo.CheckUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return User{}, err
	}

	code, err := GenerateVerifyCode()
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "generating verification code")
	}

	now := NowFunc().UTC()
	usr := User{
		Username:         nu.Username,
		FullName:         nu.FullName,
		Email:            nu.Email,
		AuthProvider:     ProviderCredentials,
		EmailVerified:    false,
		VerifyCode:       code,
		VerifyCodeExpiry: now.Add(svc.conf.VerifyCodeTTL),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}

	svc.sendVerificationEmail(usr, code)
	return usr, nil
}

// VerifyEmail confirms the 6-digit code. Verifying an already-verified
// user is a no-op success.
func (svc *Service) VerifyEmail(ctx context.Context, ve VerifyEmail) (User, error) {
	if err := ve.Validate(); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetUserByEmail(ctx, ve.Email)
	if err != nil {
		return User{}, err
	}
	if usr.EmailVerified {
		return usr, nil
	}
	if usr.VerifyCode != ve.Code || usr.CodeExpired(NowFunc().UTC()) {
		return User{}, core.NewFieldError("code", ErrCodeInvalid.Error())
	}
	return svc.repo.MarkVerified(ctx, usr.ID)
}

// Authenticate applies the local-credential login rules. Unverified
// accounts get a fresh code (when the stored one expired) and a resent
// email, then fail with ErrEmailNotVerified so the caller can route to
// the verification screen.
func (svc *Service) Authenticate(ctx context.Context, name, password string) (User, error) {
	usr, err := svc.repo.GetUserByUsernameOrEmail(ctx, core.CleanString(name, true /* lower */))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrAuthFailed
		}
		return User{}, pkgerrors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(password); err != nil {
		return User{}, ErrAuthFailed
	}

	if !usr.EmailVerified {
		code := usr.VerifyCode
		now := NowFunc().UTC()
		if usr.CodeExpired(now) {
			code, err = GenerateVerifyCode()
			if err != nil {
				return User{}, pkgerrors.Wrap(err, "regenerating verification code")
			}
			if err = svc.repo.SetVerifyCode(ctx, usr.ID, code, now.Add(svc.conf.VerifyCodeTTL)); err != nil {
				return User{}, pkgerrors.Wrap(err, "storing verification code")
			}
		}
		svc.sendVerificationEmail(usr, code)
		return User{}, ErrEmailNotVerified
	}
	return usr, nil
}

func (svc *Service) sendVerificationEmail(usr User, code string) {
	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Username, Address: usr.Email}},
		Subject:      "Verify your account",
		TemplateName: "verify-email",
		TemplateData: struct{ Code string }{code},
		BodyStr:      fmt.Sprintf("Your verification code is: %s", code),
	}
	// EmailService sends asynchronously and owns retries; a provider
	// outage surfaces in its own logs, never as a failed registration.
	svc.mailSvc.SendMessages(msg)
	svc.logger.Info(fmt.Sprintf("verification code sent to %s", usr.Email))
}
