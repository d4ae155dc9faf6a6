package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"main/model"
	"main/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo struct {
	MongoCollection *mongo.Collection
}

func NewUserRepo(client *mongo.Client, dbName string) *UserRepo {
	return &UserRepo{
		MongoCollection: client.Database(dbName).Collection("users"),
	}
}

// FindUser returns the user or (nil, nil) when no such user exists.
func (r *UserRepo) FindUser(ctx context.Context, userID string) (*model.User, error) {
	timer := utils.TrackDBOperation("find", "users")
	defer timer.ObserveDuration()

	if userID == "" {
		return nil, errors.New("userID cannot be empty")
	}

	var user model.User
	err := r.MongoCollection.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "user_lookup_error")
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, user *model.User) error {
	timer := utils.TrackDBOperation("insert", "users")
	defer timer.ObserveDuration()

	if user.UserID == "" || user.Email == "" {
		utils.TrackError("database", "invalid_user_data")
		return errors.New("user id and email required")
	}

	if _, err := r.MongoCollection.InsertOne(ctx, user); err != nil {
		utils.TrackError("database", "user_creation_failed")
		return fmt.Errorf("failed to add user to database: %w", err)
	}

	return nil
}

// BeginTwoFactorSetup stores a pending secret and hashed backup codes.
// The credential stays disabled until the setup token is confirmed; calling
// this again replaces any previous pending setup.
func (r *UserRepo) BeginTwoFactorSetup(ctx context.Context, userID, tempSecret string, hashedCodes []string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"two_factor.temp_secret":  tempSecret,
			"two_factor.enabled":      false,
			"two_factor.backup_codes": hashedCodes,
			"two_factor.setup_at":     now,
		},
	}

	return r.updateUser(ctx, userID, update, "2fa_setup_failed")
}

// EnableTwoFactor promotes the pending secret to the active secret and
// clears it, completing the two-phase setup.
func (r *UserRepo) EnableTwoFactor(ctx context.Context, userID, secret string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"two_factor.secret":      secret,
			"two_factor.enabled":     true,
			"two_factor.enabled_at":  now,
			"two_factor.temp_secret": "",
		},
	}

	return r.updateUser(ctx, userID, update, "2fa_enable_failed")
}

// UpdateBackupCodes replaces the stored hashed backup codes, used both for
// single-use consumption and for regeneration.
func (r *UserRepo) UpdateBackupCodes(ctx context.Context, userID string, hashedCodes []string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	update := bson.M{
		"$set": bson.M{
			"two_factor.backup_codes": hashedCodes,
		},
	}

	return r.updateUser(ctx, userID, update, "backup_codes_update_failed")
}

// DisableTwoFactor resets the credential to its disabled state, discarding
// secrets and remaining backup codes.
func (r *UserRepo) DisableTwoFactor(ctx context.Context, userID string) error {
	timer := utils.TrackDBOperation("update", "users")
	defer timer.ObserveDuration()

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"two_factor": model.TwoFactorCredential{
				Enabled:    false,
				DisabledAt: &now,
			},
		},
	}

	return r.updateUser(ctx, userID, update, "2fa_disable_failed")
}

func (r *UserRepo) updateUser(ctx context.Context, userID string, update bson.M, errorKind string) error {
	if userID == "" {
		return errors.New("userID cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		utils.TrackError("database", errorKind)
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.MatchedCount == 0 {
		utils.TrackError("database", "user_not_found")
		return errors.New("user not found")
	}

	return nil
}
