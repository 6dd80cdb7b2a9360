package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"consultly/config"
	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Seeds the consultant directory with a demo roster for local development.
func main() {
	config.LoadConfig()
	database.InitDB()
	client := database.MongoClient
	db := client.Database("consultly")
	consultantColl := db.Collection("consultants")

	// Clear existing consultants.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := consultantColl.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear consultants collection: %v", err)
	}

	roster := []models.Consultant{
		{
			ID:         "con-1",
			Name:       "Ada Keller",
			Title:      "Cloud Strategy",
			Bio:        "Helps mid-size companies plan and execute cloud migrations.",
			Expertise:  []string{"cloud", "architecture", "cost-optimization"},
			Languages:  []string{"en", "de"},
			HourlyRate: 220,
			Currency:   "EUR",
			Active:     true,
		},
		{
			ID:         "con-2",
			Name:       "Noor Haddad",
			Title:      "Data Platforms",
			Bio:        "Designs analytics platforms and data governance programs.",
			Expertise:  []string{"data", "analytics", "governance"},
			Languages:  []string{"en", "fr"},
			HourlyRate: 200,
			Currency:   "EUR",
			Active:     true,
		},
		{
			ID:         "con-3",
			Name:       "Tomás Rivera",
			Title:      "Digital Marketing",
			Bio:        "Runs growth programs for B2B service companies.",
			Expertise:  []string{"marketing", "seo", "content"},
			Languages:  []string{"en", "es"},
			HourlyRate: 160,
			Currency:   "EUR",
			Active:     true,
		},
		{
			ID:         "con-4",
			Name:       "Greta Lindqvist",
			Title:      "Organizational Change",
			Bio:        "Former partner, now advising on reorganizations. Currently on sabbatical.",
			Expertise:  []string{"change-management", "leadership"},
			Languages:  []string{"en", "sv"},
			HourlyRate: 260,
			Currency:   "EUR",
			Active:     false,
		},
	}

	docs := make([]interface{}, 0, len(roster))
	for _, c := range roster {
		docs = append(docs, c)
	}
	res, err := consultantColl.InsertMany(ctx, docs)
	if err != nil {
		log.Fatalf("Failed to seed consultants: %v", err)
	}
	fmt.Printf("Seeded %d consultants\n", len(res.InsertedIDs))
}
