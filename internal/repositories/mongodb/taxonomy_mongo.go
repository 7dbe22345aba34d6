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

type taxonomyRepository struct {
	coll *mongo.Collection
}

func (r *taxonomyRepository) Create(ctx context.Context, entity *models.NamedEntity) error {
	if _, err := r.coll.InsertOne(ctx, entity); err != nil {
		return fmt.Errorf("insert %s: %w", r.coll.Name(), err)
	}
	return nil
}

func (r *taxonomyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.NamedEntity, error) {
	var entity models.NamedEntity
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("find in %s: %w", r.coll.Name(), err)
	}
	return &entity, nil
}

func (r *taxonomyRepository) GetByName(ctx context.Context, name string) (*models.NamedEntity, error) {
	var entity models.NamedEntity
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&entity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("find by name in %s: %w", r.coll.Name(), err)
	}
	return &entity, nil
}

func (r *taxonomyRepository) ExistsOtherWithName(ctx context.Context, name string, excludeID primitive.ObjectID) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"name": name,
		"_id":  bson.M{"$ne": excludeID},
	})
	if err != nil {
		return false, fmt.Errorf("count by name in %s: %w", r.coll.Name(), err)
	}
	return count > 0, nil
}

func (r *taxonomyRepository) List(ctx context.Context) ([]*models.NamedEntity, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var entities []*models.NamedEntity
	if err := cursor.All(ctx, &entities); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.coll.Name(), err)
	}
	return entities, nil
}

func (r *taxonomyRepository) Rename(ctx context.Context, id primitive.ObjectID, name string, updatedAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"name": name, "updatedAt": updatedAt},
	})
	if err != nil {
		return fmt.Errorf("rename in %s: %w", r.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *taxonomyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *taxonomyRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// AddRef adds value to the named backlink array if absent. A missing target
// document is not an error; backlinks are a convenience index and the primary
// write has already happened.
func (r *taxonomyRepository) AddRef(ctx context.Context, id primitive.ObjectID, field, value string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$addToSet": bson.M{field: value},
	})
	if err != nil {
		return fmt.Errorf("add %s ref in %s: %w", field, r.coll.Name(), err)
	}
	return nil
}

// RemoveRef removes value from the named backlink array if present.
func (r *taxonomyRepository) RemoveRef(ctx context.Context, id primitive.ObjectID, field, value string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$pull": bson.M{field: value},
	})
	if err != nil {
		return fmt.Errorf("remove %s ref in %s: %w", field, r.coll.Name(), err)
	}
	return nil
}
