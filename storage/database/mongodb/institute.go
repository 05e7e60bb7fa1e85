package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/revelohq/revelo/core/institute"
)

type instituteRepository struct {
	col *mongo.Collection
}

var _ institute.Repository = (*instituteRepository)(nil)

func NewInstituteRepository(db *mongo.Database) *instituteRepository {
	return &instituteRepository{col: db.Collection(institutesCollection)}
}

func (repo *instituteRepository) CheckNameOrEmailTaken(ctx context.Context, name, email string) error {
	n, err := repo.col.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"instituteName": name},
		bson.M{"officeEmail": email},
	}})
	if err != nil {
		return err
	}
	if n > 0 {
		return institute.ErrExists
	}
	return nil
}

func (repo *instituteRepository) CreateInstitute(ctx context.Context, inst institute.Institute) (institute.Institute, error) {
	inst.ID = uuid.NewString()
	if _, err := repo.col.InsertOne(ctx, inst); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return institute.Institute{}, institute.ErrExists
		}
		return institute.Institute{}, err
	}
	return inst, nil
}

func (repo *instituteRepository) GetInstituteByID(ctx context.Context, id string) (institute.Institute, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

func (repo *instituteRepository) GetInstituteByName(ctx context.Context, name string) (institute.Institute, error) {
	return repo.findOne(ctx, bson.M{"instituteName": name})
}

func (repo *instituteRepository) findOne(ctx context.Context, filter bson.M) (institute.Institute, error) {
	var inst institute.Institute
	if err := repo.col.FindOne(ctx, filter).Decode(&inst); err != nil {
		if err == mongo.ErrNoDocuments {
			return institute.Institute{}, institute.ErrNotFound
		}
		return institute.Institute{}, err
	}
	return inst, nil
}

func (repo *instituteRepository) QueryAllInstitutes(ctx context.Context) ([]institute.Institute, error) {
	cursor, err := repo.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	insts := make([]institute.Institute, 0)
	if err = cursor.All(ctx, &insts); err != nil {
		return nil, err
	}
	return insts, nil
}

func (repo *instituteRepository) ApproveInstitute(ctx context.Context, id string, when time.Time) (institute.Institute, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{
		"verificationStatus": institute.StatusApproved,
		"verificationDate":   when,
		"updatedAt":          when,
	}}

	var inst institute.Institute
	if err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after).Decode(&inst); err != nil {
		if err == mongo.ErrNoDocuments {
			return institute.Institute{}, institute.ErrNotFound
		}
		return institute.Institute{}, err
	}
	return inst, nil
}

func (repo *instituteRepository) AttachEvent(ctx context.Context, instituteID, eventID string) error {
	res, err := repo.col.UpdateOne(ctx, bson.M{"_id": instituteID}, bson.M{
		"$push": bson.M{"events": eventID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return institute.ErrNotFound
	}
	return nil
}
