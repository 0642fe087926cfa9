package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type User struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string        `json:"name" bson:"name"`
	Email        string        `json:"email" bson:"email"`
	PasswordHash string        `json:"-" bson:"passwordHash"`
	Phone        string        `json:"phone" bson:"phone"`
	IsAdmin      bool          `json:"isAdmin" bson:"isAdmin"`
	Street       string        `json:"street" bson:"street"`
	Apartment    string        `json:"apartment" bson:"apartment"`
	Zip          string        `json:"zip" bson:"zip"`
	City         string        `json:"city" bson:"city"`
	Country      string        `json:"country" bson:"country"`
	CreatedAt    time.Time     `json:"createdAt" bson:"createdAt"`
}

type UserRegistration struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Phone     string `json:"phone" validate:"required"`
	IsAdmin   bool   `json:"isAdmin"`
	Street    string `json:"street"`
	Apartment string `json:"apartment"`
	Zip       string `json:"zip"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
