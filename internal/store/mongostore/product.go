package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"grocery-backend/internal/models"
	"grocery-backend/internal/pricing"
	"grocery-backend/internal/store"
)

type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(productsCollection)}
}

var notDeleted = bson.M{"$ne": true}

func (s *ProductStore) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var raw bson.M
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": notDeleted}).Decode(&raw)
	if err != nil {
		return models.Product{}, translate(err)
	}
	return normalizeProductDocument(raw)
}

func (s *ProductStore) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	cursor, err := s.coll.Find(ctx, bson.M{
		"_id":       bson.M{"$in": ids},
		"isDeleted": notDeleted,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	return decodeProducts(ctx, cursor)
}

func productFilter(filter models.ProductFilter) bson.M {
	query := bson.M{"isDeleted": notDeleted}

	if filter.ActiveOnly {
		query["isActive"] = bson.M{"$ne": false}
	} else if filter.IsActive != nil {
		query["isActive"] = *filter.IsActive
	}
	if filter.CampaignOnly {
		query["isCampaign"] = true
	}
	if filter.Category != "" {
		query["category"] = bson.M{"$in": []string{filter.Category}}
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = []bson.M{
			{"name": pattern},
			{"brand": pattern},
			{"description": pattern},
			{"barcode": pattern},
		}
	}
	return query
}

func (s *ProductStore) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error) {
	query := productFilter(filter)

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if skip, limit, ok := pageOptions(filter.Page, filter.Limit); ok {
		opts.SetSkip(skip).SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	products, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	res, err := s.coll.InsertOne(ctx, product)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	set := bson.M{
		"name":        product.Name,
		"price":       product.Price,
		"saleEnabled": product.SaleEnabled,
		"salePrice":   product.SalePrice,
		"category":    product.Category,
		"description": product.Description,
		"brand":       product.Brand,
		"imagePath":   product.ImagePath,
		"stock":       product.Stock,
		"isActive":    product.IsActive,
		"isCampaign":  product.IsCampaign,
		"updatedAt":   product.UpdatedAt,
	}
	update := bson.M{"$set": set}
	// barcode carries a partial unique index, so an empty value is unset
	// rather than stored.
	if product.Barcode == "" {
		update["$unset"] = bson.M{"barcode": ""}
	} else {
		set["barcode"] = product.Barcode
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": product.ID, "isDeleted": notDeleted}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProductStore) SoftDelete(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": notDeleted},
		bson.M{
			"$set":   bson.M{"isDeleted": true, "isActive": false, "deletedAt": now},
			"$unset": bson.M{"barcode": ""},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *ProductStore) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{
			"_id":       id,
			"isDeleted": notDeleted,
			"stock":     bson.M{"$gte": qty},
		},
		bson.M{"$inc": bson.M{"stock": -qty}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *ProductStore) IncrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"stock": qty}})
	return err
}

// normalizeProductDocument tolerates legacy documents whose category was a
// plain string, whose stock was stored as a float and whose isCampaign was
// stored as "true"/"false".
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if cat, ok := raw["category"].(string); ok {
		raw["category"] = []string{cat}
	}

	if val, ok := raw["isCampaign"]; ok {
		switch typed := val.(type) {
		case string:
			raw["isCampaign"] = typed == "true"
		case bool:
		default:
			raw["isCampaign"] = false
		}
	} else {
		raw["isCampaign"] = false
	}

	if val, ok := raw["stock"]; ok {
		switch typed := val.(type) {
		case int32:
			raw["stock"] = int(typed)
		case int64:
			raw["stock"] = int(typed)
		case float64:
			raw["stock"] = int(typed)
		case int:
			raw["stock"] = typed
		default:
			raw["stock"] = 0
		}
	} else {
		raw["stock"] = 0
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	p.InStock = p.Stock > 0
	p.IsOnSale = pricing.IsOnSale(p.Price, p.SaleEnabled, p.SalePrice)

	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
