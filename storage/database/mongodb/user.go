package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/revelohq/revelo/core/user"
)

type userRepository struct {
	col *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) *userRepository {
	return &userRepository{col: db.Collection(usersCollection)}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string) error {
	n, err := repo.col.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrEmailExists
	}
	n, err = repo.col.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}
	if n > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.NewString()
	if _, err := repo.col.InsertOne(ctx, usr); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.findOne(ctx, bson.M{"email": email})
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, name string) (user.User, error) {
	return repo.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": name},
		bson.M{"email": name},
	}})
}

func (repo *userRepository) findOne(ctx context.Context, filter bson.M) (user.User, error) {
	var usr user.User
	if err := repo.col.FindOne(ctx, filter).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) SetVerifyCode(ctx context.Context, id, code string, expiry time.Time) error {
	res, err := repo.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"verifyCode":       code,
		"verifyCodeExpiry": expiry,
		"updatedAt":        time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo *userRepository) MarkVerified(ctx context.Context, id string) (user.User, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$set":   bson.M{"isVerified": true, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"verifyCode": "", "verifyCodeExpiry": ""},
	}

	var usr user.User
	if err := repo.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, after).Decode(&usr); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return usr, nil
}
