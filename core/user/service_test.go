package user_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revelohq/revelo/core"
	"github.com/revelohq/revelo/core/user"
	dummymail "github.com/revelohq/revelo/services/email/dummy"
	logsvc "github.com/revelohq/revelo/services/logger"
	inmemdb "github.com/revelohq/revelo/storage/database/inmem"
)

type userFixture struct {
	svc  *user.Service
	mail interface {
		SentMessages() []core.EmailMessage
		Reset()
	}
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	mailSvc := dummymail.NewService()
	conf := &core.Config{TestMode: true, VerifyCodeTTL: 15 * time.Minute}
	svc := user.NewService(inmemdb.NewUserRepository(db), mailSvc, logsvc.NewTestLogger(), conf)
	return &userFixture{svc: svc, mail: mailSvc}
}

func validNewUser() user.NewUser {
	return user.NewUser{
		Username: "jsmith",
		FullName: "Jay Smith",
		Email:    "jay@example.test",
		Password: "sup3rs3cret",
	}
}

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	orig := user.NowFunc
	user.NowFunc = func() time.Time { return now }
	t.Cleanup(func() { user.NowFunc = orig })
}

func Test_UserService_Register(t *testing.T) {
	ctx := context.Background()
	fix := newUserFixture(t)

	usr, err := fix.svc.Register(ctx, validNewUser())
	require.NoError(t, err)
	assert.NotEmpty(t, usr.ID)
	assert.False(t, usr.EmailVerified)
	require.Len(t, usr.VerifyCode, 6)
	assert.False(t, usr.VerifyCodeExpiry.IsZero())

	// the code went out by email
	sent := fix.mail.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, usr.Email, sent[0].To[0].Address)
	assert.True(t, strings.Contains(sent[0].TextContent, usr.VerifyCode))

	t.Run("duplicate email", func(t *testing.T) {
		nu := validNewUser()
		nu.Username = "other"
		_, err := fix.svc.Register(ctx, nu)
		assert.ErrorIs(t, err, user.ErrEmailExists)
	})
	t.Run("duplicate username", func(t *testing.T) {
		nu := validNewUser()
		nu.Email = "other@example.test"
		_, err := fix.svc.Register(ctx, nu)
		assert.ErrorIs(t, err, user.ErrUsernameExists)
	})
	t.Run("username with whitespace rejected", func(t *testing.T) {
		nu := validNewUser()
		nu.Username = "j smith"
		nu.Email = "fourth@example.test"
		_, err := fix.svc.Register(ctx, nu)
		assert.Error(t, err)
	})
	t.Run("weak password rejected", func(t *testing.T) {
		nu := validNewUser()
		nu.Username = "third"
		nu.Email = "third@example.test"
		nu.Password = "short"
		_, err := fix.svc.Register(ctx, nu)
		assert.Error(t, err)
	})
}

func Test_UserService_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	fix := newUserFixture(t)

	usr, err := fix.svc.Register(ctx, validNewUser())
	require.NoError(t, err)

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if usr.VerifyCode == wrong {
			wrong = "000001"
		}
		_, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{Email: usr.Email, Code: wrong})
		assert.Error(t, err)
	})
	t.Run("malformed code", func(t *testing.T) {
		_, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{Email: usr.Email, Code: "12ab56"})
		assert.Error(t, err)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{Email: "ghost@example.test", Code: usr.VerifyCode})
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
	t.Run("expired code", func(t *testing.T) {
		mockNow(t, usr.VerifyCodeExpiry.Add(time.Minute))
		_, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{Email: usr.Email, Code: usr.VerifyCode})
		assert.Error(t, err)
	})
	t.Run("right code", func(t *testing.T) {
		got, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{Email: usr.Email, Code: usr.VerifyCode})
		require.NoError(t, err)
		assert.True(t, got.EmailVerified)
		assert.Empty(t, got.VerifyCode)
	})
	t.Run("already verified is a no-op", func(t *testing.T) {
		got, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{Email: usr.Email, Code: "999999"})
		require.NoError(t, err)
		assert.True(t, got.EmailVerified)
	})
}

func Test_UserService_Authenticate(t *testing.T) {
	ctx := context.Background()
	fix := newUserFixture(t)

	nu := validNewUser()
	usr, err := fix.svc.Register(ctx, nu)
	require.NoError(t, err)
	fix.mail.Reset()

	t.Run("unknown user", func(t *testing.T) {
		_, err := fix.svc.Authenticate(ctx, "ghost@example.test", nu.Password)
		assert.ErrorIs(t, err, user.ErrAuthFailed)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := fix.svc.Authenticate(ctx, nu.Email, "wrong")
		assert.ErrorIs(t, err, user.ErrAuthFailed)
	})
	t.Run("unverified resends the current code", func(t *testing.T) {
		_, err := fix.svc.Authenticate(ctx, nu.Email, nu.Password)
		assert.ErrorIs(t, err, user.ErrEmailNotVerified)

		sent := fix.mail.SentMessages()
		require.Len(t, sent, 1)
		assert.True(t, strings.Contains(sent[0].TextContent, usr.VerifyCode))
	})
	t.Run("unverified with expired code gets a fresh one", func(t *testing.T) {
		fix.mail.Reset()
		mockNow(t, usr.VerifyCodeExpiry.Add(time.Minute))

		_, err := fix.svc.Authenticate(ctx, nu.Email, nu.Password)
		assert.ErrorIs(t, err, user.ErrEmailNotVerified)

		sent := fix.mail.SentMessages()
		require.Len(t, sent, 1)

		// the fresh code verifies
		fresh, err := fix.svc.VerifyEmail(ctx, user.VerifyEmail{
			Email: usr.Email,
			Code:  strings.TrimPrefix(sent[0].TextContent, "Your verification code is: "),
		})
		require.NoError(t, err)
		assert.True(t, fresh.EmailVerified)
	})
	t.Run("verified login works by email or username", func(t *testing.T) {
		got, err := fix.svc.Authenticate(ctx, nu.Email, nu.Password)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)

		got, err = fix.svc.Authenticate(ctx, nu.Username, nu.Password)
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
	})
}
