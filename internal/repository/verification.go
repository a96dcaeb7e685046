package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/troindx/oxidize/internal/database"
	"github.com/troindx/oxidize/internal/model"
)

// EmailVerificationRepository defines the interface for email verification
// record operations. The unique index on user_id is the structural
// enforcement of the one-record-per-user invariant: a losing concurrent
// insert fails with a duplicate key error instead of silently duplicating.
type EmailVerificationRepository interface {
	CreateVerification(ctx context.Context, verification *model.EmailVerification) (*model.EmailVerification, error)
	GetVerification(ctx context.Context, id string) (*model.EmailVerification, error)
	GetVerificationByUserID(ctx context.Context, userID bson.ObjectID) (*model.EmailVerification, error)
	GetVerificationByEmail(ctx context.Context, email string) (*model.EmailVerification, error)
	UpdateVerification(ctx context.Context, verification *model.EmailVerification) (*model.EmailVerification, error)
}

const verificationCollection = "email_verifications"

type verificationMongoRepository struct {
	db *mongo.Database
}

// NewEmailVerificationMongoRepository creates a MongoDB-backed
// EmailVerificationRepository, registering its collection and ensuring the
// unique user_id index.
func NewEmailVerificationMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
	registry *database.Registry,
) EmailVerificationRepository {
	registry.Add(verificationCollection)
	collection := db.Collection(verificationCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create email verification indexes")
	}

	return &verificationMongoRepository{db: db}
}

func (r *verificationMongoRepository) CreateVerification(
	ctx context.Context,
	verification *model.EmailVerification,
) (*model.EmailVerification, error) {
	now := time.Now()
	verification.CreatedAt = now
	verification.UpdatedAt = now

	result, err := r.db.Collection(verificationCollection).InsertOne(ctx, verification)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		verification.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return verification, nil
}

func (r *verificationMongoRepository) GetVerification(
	ctx context.Context,
	id string,
) (*model.EmailVerification, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(verificationCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var verification model.EmailVerification
	if err := result.Decode(&verification); err != nil {
		return nil, err
	}

	return &verification, nil
}

func (r *verificationMongoRepository) GetVerificationByUserID(
	ctx context.Context,
	userID bson.ObjectID,
) (*model.EmailVerification, error) {
	result := r.db.Collection(verificationCollection).FindOne(ctx, bson.M{"user_id": userID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var verification model.EmailVerification
	if err := result.Decode(&verification); err != nil {
		return nil, err
	}

	return &verification, nil
}

func (r *verificationMongoRepository) GetVerificationByEmail(
	ctx context.Context,
	email string,
) (*model.EmailVerification, error) {
	result := r.db.Collection(verificationCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var verification model.EmailVerification
	if err := result.Decode(&verification); err != nil {
		return nil, err
	}

	return &verification, nil
}

func (r *verificationMongoRepository) UpdateVerification(
	ctx context.Context,
	verification *model.EmailVerification,
) (*model.EmailVerification, error) {
	verification.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"secret":     verification.Secret,
		"verified":   verification.Verified,
		"email":      verification.Email,
		"updated_at": verification.UpdatedAt,
	}}

	result := r.db.Collection(verificationCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": verification.ID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var updated model.EmailVerification
	if err := result.Decode(&updated); err != nil {
		return nil, err
	}

	return &updated, nil
}
