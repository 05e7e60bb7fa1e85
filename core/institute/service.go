package institute

import (
	"context"
	"errors"
	"time"

	"github.com/revelohq/revelo/core"
)

var (
	// errors
	ErrNotFound          = errors.New("institute not found")
	ErrExists            = errors.New("institute already exists")
	ErrInvalidCredential = errors.New("incorrect password")
	ErrNotVerified       = errors.New("institute not verified by the admin")
	ErrForbidden         = errors.New("permission denied")
)

type (
	Repository interface {
		CheckNameOrEmailTaken(ctx context.Context, name, email string) error
		CreateInstitute(ctx context.Context, inst Institute) (Institute, error)
		GetInstituteByID(ctx context.Context, id string) (Institute, error)
		GetInstituteByName(ctx context.Context, name string) (Institute, error)
		QueryAllInstitutes(ctx context.Context) ([]Institute, error)
		// ApproveInstitute atomically sets the approved status and
		// verification date, returning the new document state.
		ApproveInstitute(ctx context.Context, id string, when time.Time) (Institute, error)
		AttachEvent(ctx context.Context, instituteID, eventID string) error
	}

	Service struct {
		repo Repository
	}

	// VerificationPartition is the admin listing split.
	VerificationPartition struct {
		Verified   []Institute `json:"institutesVerified"`
		Unverified []Institute `json:"institutesNotVerified"`
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a pending institute. The caller is responsible for
// having uploaded logo/verification-letter files beforehand.
func (svc *Service) Register(ctx context.Context, ni NewInstitute) (Institute, error) {
	if err := ni.Validate(); err != nil {
		return Institute{}, err
	}
	if err := svc.repo.CheckNameOrEmailTaken(ctx, ni.Name, ni.OfficeEmail); err != nil {
		return Institute{}, err
	}

	now := time.Now().UTC()
	inst := Institute{
		Name:                  ni.Name,
		Address:               ni.Address,
		State:                 ni.State,
		Country:               ni.Country,
		ContactNumber:         ni.ContactNumber,
		OfficeEmail:           ni.OfficeEmail,
		LogoURL:               ni.LogoURL,
		VerificationLetterURL: ni.VerificationLetterURL,
		Type:                  ni.Type,
		Status:                StatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := inst.SetPassword(ni.Password); err != nil {
		return Institute{}, err
	}
	return svc.repo.CreateInstitute(ctx, inst)
}

// Authenticate applies the institute login rules. The verification gate
// comes after the password check on purpose: unverified institutes must
// not leak their status to callers who don't hold the credentials.
func (svc *Service) Authenticate(ctx context.Context, name, password string) (Institute, error) {
	inst, err := svc.repo.GetInstituteByName(ctx, core.CleanString(name))
	if err != nil {
		return Institute{}, err
	}
	if err = inst.CheckPassword(password); err != nil {
		return Institute{}, ErrInvalidCredential
	}
	if !inst.IsVerified() {
		return Institute{}, ErrNotVerified
	}
	return inst, nil
}

// Approve transitions pending → approved. Admin-only; the transition is
// one-way and idempotent (re-approving is a no-op success).
func (svc *Service) Approve(ctx context.Context, id, callerRole string) (Institute, error) {
	if callerRole != core.RoleAdmin {
		return Institute{}, ErrForbidden
	}
	return svc.repo.ApproveInstitute(ctx, id, time.Now().UTC())
}

// ListByVerification partitions all institutes for the admin panel.
func (svc *Service) ListByVerification(ctx context.Context, callerRole string) (VerificationPartition, error) {
	if callerRole != core.RoleAdmin {
		return VerificationPartition{}, ErrForbidden
	}
	all, err := svc.repo.QueryAllInstitutes(ctx)
	if err != nil {
		return VerificationPartition{}, err
	}
	part := VerificationPartition{
		Verified:   make([]Institute, 0, len(all)),
		Unverified: make([]Institute, 0, len(all)),
	}
	for _, inst := range all {
		if inst.IsVerified() {
			part.Verified = append(part.Verified, inst)
		} else {
			part.Unverified = append(part.Unverified, inst)
		}
	}
	return part, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Institute, error) {
	return svc.repo.GetInstituteByID(ctx, id)
}
