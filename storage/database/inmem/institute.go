package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/revelohq/revelo/core/institute"
)

type instituteRepository struct {
	db *instituteTable
}

var _ institute.Repository = (*instituteRepository)(nil)

func NewInstituteRepository(db *DB) *instituteRepository {
	return &instituteRepository{db: db.institute}
}

func (repo *instituteRepository) CheckNameOrEmailTaken(_ context.Context, name, email string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inst := range repo.db.table {
		if inst.Name == name || inst.OfficeEmail == email {
			return institute.ErrExists
		}
	}
	return nil
}

func (repo *instituteRepository) CreateInstitute(_ context.Context, inst institute.Institute) (institute.Institute, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst.ID = uuid.NewString()
	repo.db.table[inst.ID] = &inst
	return inst, nil
}

func (repo *instituteRepository) GetInstituteByID(_ context.Context, id string) (institute.Institute, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return institute.Institute{}, institute.ErrNotFound
}

func (repo *instituteRepository) GetInstituteByName(_ context.Context, name string) (institute.Institute, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, inst := range repo.db.table {
		if inst.Name == name {
			return *inst, nil
		}
	}
	return institute.Institute{}, institute.ErrNotFound
}

func (repo *instituteRepository) QueryAllInstitutes(_ context.Context) ([]institute.Institute, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	insts := make([]institute.Institute, 0, len(repo.db.table))
	for _, inst := range repo.db.table {
		insts = append(insts, *inst)
	}
	return insts, nil
}

func (repo *instituteRepository) ApproveInstitute(_ context.Context, id string, when time.Time) (institute.Institute, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst, ok := repo.db.table[id]
	if !ok {
		return institute.Institute{}, institute.ErrNotFound
	}
	inst.Status = institute.StatusApproved
	inst.VerificationDate = when
	inst.UpdatedAt = when
	return *inst, nil
}

func (repo *instituteRepository) AttachEvent(_ context.Context, instituteID, eventID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	inst, ok := repo.db.table[instituteID]
	if !ok {
		return institute.ErrNotFound
	}
	inst.EventIDs = append(inst.EventIDs, eventID)
	inst.UpdatedAt = time.Now().UTC()
	return nil
}
