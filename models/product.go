package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Product struct {
	ID              bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string        `json:"name" bson:"name"`
	Description     string        `json:"description" bson:"description"`
	RichDescription string        `json:"richDescription" bson:"richDescription"`
	Image           string        `json:"image" bson:"image"`
	Images          []string      `json:"images" bson:"images"`
	Brand           string        `json:"brand" bson:"brand"`
	Price           float64       `json:"price" bson:"price"`
	Category        bson.ObjectID `json:"category" bson:"category"`
	CountInStock    int           `json:"countInStock" bson:"countInStock"`
	Rating          float64       `json:"rating" bson:"rating"`
	NumReviews      int           `json:"numReviews" bson:"numReviews"`
	IsFeatured      bool          `json:"isFeatured" bson:"isFeatured"`
	DateCreated     time.Time     `json:"dateCreated" bson:"dateCreated"`
}

// ProductView is a product with its category document populated. Its
// category field shadows Product.Category in JSON.
type ProductView struct {
	Product      `bson:",inline"`
	CategoryInfo *Category `json:"category" bson:"categoryInfo,omitempty"`
}

// ProductInput is the body of product create and update requests. Create
// binds it from multipart form fields, update from JSON.
type ProductInput struct {
	Name            string  `json:"name" form:"name" validate:"required"`
	Description     string  `json:"description" form:"description" validate:"required"`
	RichDescription string  `json:"richDescription" form:"richDescription"`
	Image           string  `json:"image" form:"-"`
	Brand           string  `json:"brand" form:"brand"`
	Price           float64 `json:"price" form:"price" validate:"gte=0"`
	Category        string  `json:"category" form:"category" validate:"required"`
	CountInStock    int     `json:"countInStock" form:"countInStock" validate:"gte=0,lte=255"`
	Rating          float64 `json:"rating" form:"rating" validate:"gte=0"`
	NumReviews      int     `json:"numReviews" form:"numReviews" validate:"gte=0"`
	IsFeatured      bool    `json:"isFeatured" form:"isFeatured"`
}

// Apply copies the input onto p. Category is resolved by the caller.
func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.RichDescription = in.RichDescription
	p.Image = in.Image
	p.Brand = in.Brand
	p.Price = in.Price
	p.CountInStock = in.CountInStock
	p.Rating = in.Rating
	p.NumReviews = in.NumReviews
	p.IsFeatured = in.IsFeatured
}
