package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/revelohq/revelo/core"
)

// Auth providers
const (
	ProviderGoogle      = "google"
	ProviderCredentials = "credentials"
)

type User struct {
	ID               string    `json:"id" bson:"_id,omitempty"`
	Username         string    `json:"username" bson:"username"`
	FullName         string    `json:"fullName,omitempty" bson:"fullName,omitempty"`
	Email            string    `json:"email" bson:"email"`
	PasswordHash     []byte    `json:"-" bson:"passwordHash,omitempty"`
	AuthProvider     string    `json:"authProvider" bson:"authProvider"`
	ProfilePicture   string    `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	InstituteName    string    `json:"instituteName,omitempty" bson:"instituteName,omitempty"`
	EmailVerified    bool      `json:"isVerified" bson:"isVerified"`
	VerifyCode       string    `json:"-" bson:"verifyCode,omitempty"`
	VerifyCodeExpiry time.Time `json:"-" bson:"verifyCodeExpiry,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"createdAt"` // UTC
	UpdatedAt        time.Time `json:"updated_at" bson:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) CodeExpired(now time.Time) bool {
	return u.VerifyCodeExpiry.IsZero() || now.After(u.VerifyCodeExpiry)
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	FullName string `json:"fullName"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (nu *NewUser) Validate() error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return core.Validate.Struct(nu)
}

// VerifyEmail is the email+code confirmation payload.
type VerifyEmail struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

func (ve *VerifyEmail) Validate() error {
	ve.Email = core.CleanString(ve.Email, true /* lower */)
	ve.Code = core.CleanString(ve.Code)
	return core.Validate.Struct(ve)
}
