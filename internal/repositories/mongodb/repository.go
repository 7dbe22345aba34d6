package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/quizbank/admin-service/internal/models"
	"github.com/quizbank/admin-service/internal/repositories"
)

// RepositoryConfig carries the injected clients; the repository never opens
// connections of its own.
type RepositoryConfig struct {
	Client   *mongo.Client
	Database string
}

type mongoRepository struct {
	client *mongo.Client
	db     *mongo.Database

	quiz       *quizRepository
	taxonomies map[models.TaxonomyKind]*taxonomyRepository
}

// NewRepository builds the Mongo-backed repository aggregate around an
// already-connected client.
func NewRepository(cfg RepositoryConfig) repositories.Repository {
	db := cfg.Client.Database(cfg.Database)

	taxonomies := make(map[models.TaxonomyKind]*taxonomyRepository, 4)
	for _, kind := range []models.TaxonomyKind{models.KindExam, models.KindChapter, models.KindClass, models.KindSubject} {
		taxonomies[kind] = &taxonomyRepository{coll: db.Collection(kind.Collection())}
	}

	return &mongoRepository{
		client:     cfg.Client,
		db:         db,
		quiz:       &quizRepository{coll: db.Collection("quizzes")},
		taxonomies: taxonomies,
	}
}

// EnsureIndexes creates the indexes the service relies on: unique taxonomy
// names and the quiz list sort order.
func EnsureIndexes(ctx context.Context, repo repositories.Repository) error {
	m, ok := repo.(*mongoRepository)
	if !ok {
		return nil
	}

	unique := options.Index().SetUnique(true)
	for kind, r := range m.taxonomies {
		_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: unique,
		})
		if err != nil {
			return fmt.Errorf("create name index for %s: %w", kind.Collection(), err)
		}
	}

	_, err := m.quiz.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create quiz createdAt index: %w", err)
	}
	return nil
}

func (m *mongoRepository) Quiz() repositories.QuizRepository { return m.quiz }

func (m *mongoRepository) Taxonomy(kind models.TaxonomyKind) repositories.TaxonomyRepository {
	return m.taxonomies[kind]
}

func (m *mongoRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.client.Ping(ctx, nil)
}

func (m *mongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
