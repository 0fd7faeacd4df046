package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
)

type UserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{collection: db.Collection(usersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	id := primitive.NewObjectID()
	doc := userDocument{
		ID:         id,
		Email:      user.Email,
		Password:   user.PasswordHash,
		OTP:        user.OTP,
		OTPExpires: user.OTPExpires,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt.UTC(),
		UpdatedAt:  user.UpdatedAt.UTC(),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id.Hex()
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return doc.toDomain(), nil
}

// ConsumeOTP matches on the pending code and its expiry in the same update,
// so of two concurrent verifications only one can modify the document.
func (r *UserRepository) ConsumeOTP(ctx context.Context, userID, code, refreshToken string, now time.Time) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrInvalidOrExpiredOTP
	}
	filter := bson.M{
		"_id":         objID,
		"otp":         code,
		"otp_expires": bson.M{"$gte": now.UTC()},
	}
	update := bson.M{
		"$set": bson.M{
			"otp":           nil,
			"otp_expires":   nil,
			"is_verified":   true,
			"refresh_token": refreshToken,
			"updated_at":    now.UTC(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to consume otp for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInvalidOrExpiredOTP
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, refreshToken string) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	update := bson.M{
		"$set": bson.M{
			"refresh_token": refreshToken,
			"updated_at":    time.Now().UTC(),
		},
	}
	res, err := r.collection.UpdateByID(ctx, objID, update)
	if err != nil {
		return fmt.Errorf("failed to set refresh token for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
