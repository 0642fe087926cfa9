package database

import (
	"context"
	"fmt"
	"time"

	"eshop/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(productsCollection)}
}

// populate joins the category document of every matched product.
func populate(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: categoriesCollection},
			{Key: "localField", Value: "category"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "categoryInfo"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$categoryInfo"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (s *ProductStore) aggregate(ctx context.Context, match bson.M) ([]models.ProductView, error) {
	cursor, err := s.coll.Aggregate(ctx, populate(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.ProductView{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// List returns all products, or only those in one of categoryIDs when given.
func (s *ProductStore) List(ctx context.Context, categoryIDs []bson.ObjectID) ([]models.ProductView, error) {
	match := bson.M{}
	if len(categoryIDs) > 0 {
		match["category"] = bson.M{"$in": categoryIDs}
	}
	return s.aggregate(ctx, match)
}

func (s *ProductStore) Get(ctx context.Context, id bson.ObjectID) (*models.ProductView, error) {
	products, err := s.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}

func (s *ProductStore) Create(ctx context.Context, p *models.Product) error {
	p.ID = bson.NewObjectID()
	p.DateCreated = time.Now().UTC()
	if p.Images == nil {
		p.Images = []string{}
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update replaces the editable fields of a product. Gallery images and the
// creation date are kept.
func (s *ProductStore) Update(ctx context.Context, id bson.ObjectID, p *models.Product) (*models.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":            p.Name,
		"description":     p.Description,
		"richDescription": p.RichDescription,
		"image":           p.Image,
		"brand":           p.Brand,
		"price":           p.Price,
		"category":        p.Category,
		"countInStock":    p.CountInStock,
		"rating":          p.Rating,
		"numReviews":      p.NumReviews,
		"isFeatured":      p.IsFeatured,
	}}
	return s.findOneAndUpdate(ctx, id, update)
}

func (s *ProductStore) SetGallery(ctx context.Context, id bson.ObjectID, images []string) (*models.Product, error) {
	return s.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M{"images": images}})
}

func (s *ProductStore) findOneAndUpdate(ctx context.Context, id bson.ObjectID, update bson.M) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Product
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return nil, notFound(err)
	}
	return &updated, nil
}

func (s *ProductStore) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

// Featured returns up to limit featured products; limit 0 means no limit.
func (s *ProductStore) Featured(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateCreated", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, bson.M{"isFeatured": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find featured products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode featured products: %w", err)
	}
	return products, nil
}
