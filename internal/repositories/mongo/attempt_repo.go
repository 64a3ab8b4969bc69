package mongo

import (
	"context"
	"errors"
	"os"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harsha446-acm/ai-interview-platform/internal/models"
	"github.com/harsha446-acm/ai-interview-platform/internal/repositories"
)

// Repo wraps the attempts collection.
type Repo struct{ col *mongo.Collection }

// NewAttemptRepo ensures indexes on candidate_token and session_id.
func NewAttemptRepo(c *Client) (*Repo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}

	colName := os.Getenv("ATTEMPTS_COLLECTION")
	if colName == "" {
		colName = "interview_attempts"
	}

	col := db.Collection(colName)
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "candidate_token", Value: 1}}},
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	return &Repo{col: col}, nil
}

func (r *Repo) CreateAttempt(ctx context.Context, a *models.InterviewAttempt) error {
	a.Version = 1
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrConflict
	}
	return err
}

func (r *Repo) GetAttempt(ctx context.Context, id string) (*models.InterviewAttempt, error) {
	var a models.InterviewAttempt
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAttempt replaces the document, conditioned on the version it was
// loaded with. A non-matching version means a concurrent writer got there
// first and the caller must reload.
func (r *Repo) UpdateAttempt(ctx context.Context, a *models.InterviewAttempt) error {
	loadedVersion := a.Version
	a.Version++
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID, "version": loadedVersion}, a)
	if err != nil {
		a.Version = loadedVersion
		return err
	}
	if res.MatchedCount == 0 {
		a.Version = loadedVersion
		return repositories.ErrConflict
	}
	return nil
}

func (r *Repo) GetByToken(ctx context.Context, token string) (*models.InterviewAttempt, error) {
	var a models.InterviewAttempt
	err := r.col.FindOne(ctx, bson.M{"candidate_token": token}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) ListBySession(ctx context.Context, sessionID string) ([]models.InterviewAttempt, error) {
	return r.list(ctx, bson.M{"session_id": sessionID})
}

func (r *Repo) ListInProgress(ctx context.Context) ([]models.InterviewAttempt, error) {
	return r.list(ctx, bson.M{"status": models.StatusInProgress})
}

func (r *Repo) list(ctx context.Context, filter bson.M) ([]models.InterviewAttempt, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.InterviewAttempt
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
