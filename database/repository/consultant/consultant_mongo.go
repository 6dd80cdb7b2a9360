package consultantRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoConsultantRepo implements ConsultantRepository using MongoDB.
type MongoConsultantRepo struct {
	coll *mongo.Collection
}

// NewMongoConsultantRepo creates a new instance of ConsultantRepository using MongoDB.
func NewMongoConsultantRepo() ConsultantRepository {
	coll := database.MongoClient.Database("consultly").Collection("consultants")
	return &MongoConsultantRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ErrNotFound is returned when no consultant matches the requested ID.
var ErrNotFound = errors.New("consultant not found")

func (r *MongoConsultantRepo) GetByID(id string) (*models.Consultant, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var consultant models.Consultant
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&consultant); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch consultant with id %s: %w", id, err)
	}
	return &consultant, nil
}

func (r *MongoConsultantRepo) GetAllActive() ([]models.Consultant, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve consultants: %w", err)
	}
	defer cursor.Close(ctx)

	var consultants []models.Consultant
	for cursor.Next(ctx) {
		var c models.Consultant
		if err := cursor.Decode(&c); err != nil {
			return nil, fmt.Errorf("failed to decode consultant: %w", err)
		}
		consultants = append(consultants, c)
	}
	return consultants, nil
}
