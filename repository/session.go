package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"main/model"
	"main/services"
	"main/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepo is the MongoDB-backed session store. Cache is optional; a nil
// cache disables read-through caching without changing behavior.
type SessionRepo struct {
	MongoCollection *mongo.Collection
	Cache           *services.SessionCache
}

func NewSessionRepo(client *mongo.Client, dbName string, cache *services.SessionCache) *SessionRepo {
	return &SessionRepo{
		MongoCollection: client.Database(dbName).Collection("user_sessions"),
		Cache:           cache,
	}
}

// CreateSession inserts a new session. The session identifier is assigned
// here if the caller left it empty.
func (r *SessionRepo) CreateSession(ctx context.Context, session *model.Session) error {
	timer := utils.TrackDBOperation("insert", "user_sessions")
	defer timer.ObserveDuration()

	if session == nil {
		utils.TrackError("database", "nil_session")
		return fmt.Errorf("session cannot be nil")
	}

	if session.UserID == "" {
		utils.TrackError("database", "invalid_session_data")
		return fmt.Errorf("invalid session data: missing user id")
	}

	if session.SessionID == "" {
		session.SessionID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.MongoCollection.InsertOne(ctx, session); err != nil {
		utils.TrackError("database", "session_creation_failed")
		return fmt.Errorf("failed to create session in database: %w", err)
	}

	if r.Cache != nil {
		if err := r.Cache.SetSession(session); err != nil {
			utils.TrackError("cache", "session_cache_set_failed")
			log.Printf("Warning: Failed to cache session: %v", err)
		}
	}

	return nil
}

// GetSession returns the session or (nil, nil) when it does not exist.
func (r *SessionRepo) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	timer := utils.TrackDBOperation("find", "user_sessions")
	defer timer.ObserveDuration()

	if sessionID == "" {
		utils.TrackError("database", "empty_session_id")
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	if r.Cache != nil {
		if session, err := r.Cache.GetSession(sessionID); err == nil && session != nil {
			utils.TrackCacheOperation("session", true)
			return session, nil
		}
		utils.TrackCacheOperation("session", false)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var session model.Session
	err := r.MongoCollection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		utils.TrackError("database", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch session from database: %w", err)
	}

	if r.Cache != nil {
		if err := r.Cache.SetSession(&session); err != nil {
			log.Printf("Warning: Failed to cache session: %v", err)
		}
	}

	return &session, nil
}

// UpdateSession persists the mutable fields of a session: activity timestamp
// and the active/invalidated state. Creation-time fields are never rewritten.
func (r *SessionRepo) UpdateSession(ctx context.Context, session *model.Session) error {
	timer := utils.TrackDBOperation("update", "user_sessions")
	defer timer.ObserveDuration()

	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"last_activity_at":    session.LastActivityAt,
			"is_active":           session.IsActive,
			"invalidated_at":      session.InvalidatedAt,
			"invalidation_reason": session.InvalidationReason,
		},
	}

	result, err := r.MongoCollection.UpdateOne(
		ctx,
		bson.M{"session_id": session.SessionID},
		update,
	)
	if err != nil {
		utils.TrackError("database", "session_update_failed")
		return fmt.Errorf("failed to update session in database: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("session not found")
	}

	if r.Cache != nil {
		if !session.IsActive {
			if err := r.Cache.DeleteSession(session.SessionID); err != nil {
				log.Printf("Warning: Failed to evict session from cache: %v", err)
			}
		} else if err := r.Cache.SetSession(session); err != nil {
			log.Printf("Warning: Failed to update session cache: %v", err)
		}
	}

	return nil
}

// GetUserActiveSessions returns all is_active sessions for a user, oldest
// first. Sessions past a lazy deadline still appear here until something
// materializes the expiry; callers apply their own deadline predicate.
func (r *SessionRepo) GetUserActiveSessions(ctx context.Context, userID string) ([]*model.Session, error) {
	timer := utils.TrackDBOperation("find", "user_sessions")
	defer timer.ObserveDuration()

	if userID == "" {
		utils.TrackError("database", "empty_user_id")
		return nil, fmt.Errorf("userID cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.M{"created_at": 1})
	cursor, err := r.MongoCollection.Find(ctx,
		bson.M{
			"user_id":   userID,
			"is_active": true,
		}, opts)
	if err != nil {
		utils.TrackError("database", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch active sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

// GetAllActiveSessions returns every is_active session across users, for the
// eager cleanup sweep.
func (r *SessionRepo) GetAllActiveSessions(ctx context.Context) ([]*model.Session, error) {
	timer := utils.TrackDBOperation("find", "user_sessions")
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := r.MongoCollection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		utils.TrackError("database", "session_fetch_failed")
		return nil, fmt.Errorf("failed to fetch active sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	return sessions, nil
}

// CountActiveSessions counts is_active sessions still inside their absolute
// window for a user.
func (r *SessionRepo) CountActiveSessions(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("userID cannot be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count, err := r.MongoCollection.CountDocuments(
		ctx,
		bson.M{
			"user_id":    userID,
			"is_active":  true,
			"expires_at": bson.M{"$gt": time.Now()},
		},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return int(count), nil
}
