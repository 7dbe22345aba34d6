package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
)

type quizRepository struct {
	coll *mongo.Collection
}

func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if _, err := r.coll.InsertOne(ctx, quiz); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *quizRepository) GetRaw(ctx context.Context, id primitive.ObjectID) (*models.RawQuiz, error) {
	var raw models.RawQuiz
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("find quiz: %w", err)
	}
	return &raw, nil
}

// Replace stores the full document under the same id; last writer wins for
// racing edits.
func (r *quizRepository) Replace(ctx context.Context, quiz *models.Quiz) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": quiz.ID}, quiz)
	if err != nil {
		return fmt.Errorf("replace quiz: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *quizRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.QuizStatus, updatedAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": updatedAt},
	})
	if err != nil {
		return fmt.Errorf("update quiz status: %w", err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *quizRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func quizFilter(filters repositories.QuizFilters) bson.M {
	filter := bson.M{}
	if filters.Status != nil {
		filter["status"] = *filters.Status
	}
	if filters.TestType != nil {
		filter["testType"] = *filters.TestType
	}
	return filter
}

func (r *quizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.RawQuiz, int64, error) {
	filter := quizFilter(filters)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count quizzes: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filters.Limit > 0 {
		opts.SetLimit(int64(filters.Limit)).SetSkip(int64(filters.Offset))
	}

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list quizzes: %w", err)
	}
	defer cursor.Close(ctx)

	var quizzes []*models.RawQuiz
	if err := cursor.All(ctx, &quizzes); err != nil {
		return nil, 0, fmt.Errorf("decode quizzes: %w", err)
	}
	return quizzes, total, nil
}

func (r *quizRepository) Count(ctx context.Context, filters repositories.QuizFilters) (int64, error) {
	return r.coll.CountDocuments(ctx, quizFilter(filters))
}
