package institute

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/revelohq/revelo/core"
)

// Verification status. A single stored field; isVerified in API
// responses is derived from it so the two can never disagree.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
)

// Institute types accepted at registration.
const (
	TypeSchool     = "school"
	TypeInstitute  = "institute"
	TypeUniversity = "university"
)

type Institute struct {
	ID                    string    `json:"id" bson:"_id,omitempty"`
	Name                  string    `json:"instituteName" bson:"instituteName"`
	Address               string    `json:"address" bson:"address"`
	State                 string    `json:"state" bson:"state"`
	Country               string    `json:"country" bson:"country"`
	ContactNumber         string    `json:"contactNumber" bson:"contactNumber"`
	OfficeEmail           string    `json:"officeEmail" bson:"officeEmail"`
	LogoURL               string    `json:"logo" bson:"logo"`
	VerificationLetterURL string    `json:"verificationLetter" bson:"verificationLetter"`
	Type                  string    `json:"instituteType" bson:"instituteType"`
	Status                Status    `json:"verificationStatus" bson:"verificationStatus"`
	VerificationDate      time.Time `json:"verificationDate,omitempty" bson:"verificationDate,omitempty"`
	PasswordHash          []byte    `json:"-" bson:"passwordHash"`
	EventIDs              []string  `json:"events" bson:"events"`
	CreatedAt             time.Time `json:"created_at" bson:"createdAt"` // UTC
	UpdatedAt             time.Time `json:"updated_at" bson:"updatedAt"` // UTC
}

func (i *Institute) IsVerified() bool { return i.Status == StatusApproved }

func (i *Institute) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	i.PasswordHash = hash
	return nil
}

func (i *Institute) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(i.PasswordHash, []byte(pwd))
}

// MarshalJSON emits a derived isVerified field alongside
// verificationStatus for clients that still read the old boolean.
func (i Institute) MarshalJSON() ([]byte, error) {
	type alias Institute
	return json.Marshal(struct {
		alias
		IsVerified bool `json:"isVerified"`
	}{alias(i), i.IsVerified()})
}

// NewInstitute contains information needed to register a new Institute.
// Logo and verification letter arrive as multipart files and are
// uploaded separately; only their resulting URLs land here.
type NewInstitute struct {
	Name                  string `json:"instituteName" validate:"required"`
	Address               string `json:"address" validate:"required"`
	State                 string `json:"state" validate:"required"`
	Country               string `json:"country" validate:"required"`
	ContactNumber         string `json:"contactNumber" validate:"required"`
	OfficeEmail           string `json:"officeEmail" validate:"required,email"`
	Password              string `json:"password" validate:"required"`
	Type                  string `json:"instituteType" validate:"required,oneof=school institute university"`
	LogoURL               string `json:"logo" validate:"required"`
	VerificationLetterURL string `json:"verificationLetter" validate:"required"`
}

func (ni *NewInstitute) Validate() error {
	ni.Name = core.CleanString(ni.Name)
	ni.Address = core.CleanString(ni.Address)
	ni.State = core.CleanString(ni.State)
	ni.Country = core.CleanString(ni.Country)
	ni.ContactNumber = core.CleanString(ni.ContactNumber)
	ni.OfficeEmail = core.CleanString(ni.OfficeEmail, true /* lower */)

	return core.Validate.Struct(ni)
}
