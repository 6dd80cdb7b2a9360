package leadRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLeadRepo implements LeadRepository using MongoDB.
type MongoLeadRepo struct {
	coll *mongo.Collection
}

// NewMongoLeadRepo creates a new instance of LeadRepository using MongoDB.
func NewMongoLeadRepo() LeadRepository {
	coll := database.MongoClient.Database("consultly").Collection("leads")
	return &MongoLeadRepo{coll: coll}
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoLeadRepo) Upsert(lead *models.Lead) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"email": lead.Email, "source": lead.Source}
	update := bson.M{
		"$set": bson.M{
			"first_name": lead.FirstName,
			"last_name":  lead.LastName,
			"company":    lead.Company,
			"resource":   lead.Resource,
			"consent":    lead.Consent,
			"updated_at": lead.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"id":         lead.ID,
			"email":      lead.Email,
			"source":     lead.Source,
			"created_at": lead.CreatedAt,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert lead for %s: %w", lead.Email, err)
	}
	return nil
}

func (r *MongoLeadRepo) GetByEmail(email string) ([]models.Lead, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to find leads for %s: %w", email, err)
	}
	defer cursor.Close(ctx)

	var leads []models.Lead
	for cursor.Next(ctx) {
		var l models.Lead
		if err := cursor.Decode(&l); err != nil {
			return nil, fmt.Errorf("failed to decode lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, nil
}
