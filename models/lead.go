package models

import "time"

// Lead is a marketing lead captured from a webinar or whitepaper form.
type Lead struct {
	ID        string    `bson:"id" json:"id"`
	FirstName string    `bson:"first_name" json:"firstName" validate:"required,max=100"`
	LastName  string    `bson:"last_name" json:"lastName" validate:"required,max=100"`
	Email     string    `bson:"email" json:"email" validate:"required,email"`
	Company   string    `bson:"company,omitempty" json:"company,omitempty" validate:"max=200"`
	Source    string    `bson:"source" json:"source" validate:"required,oneof=webinar whitepaper newsletter contact"`
	Resource  string    `bson:"resource,omitempty" json:"resource,omitempty"` // which webinar/whitepaper
	Consent   bool      `bson:"consent" json:"consent" validate:"eq=true"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
