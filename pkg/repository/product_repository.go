package repository

import (
	"context"
	"time"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongoProductRepository{collection: db.Collection(ProductCollection)}
}

func (r *mongoProductRepository) Insert(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, product)
	return mapWriteError(err, "insert product")
}

func (r *mongoProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var product models.Product
	if err := r.collection.FindOne(ctx, filter).Decode(&product); err != nil {
		return nil, mapFindError(err, "find product")
	}
	return &product, nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoProductRepository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoProductRepository) FindByPath(ctx context.Context, path string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"path": path})
}

func (r *mongoProductRepository) Find(ctx context.Context, f models.ProductFilter, page catalog.PageRequest) ([]models.Product, int64, error) {
	page = page.Normalize()
	filter := BuildProductFilter(f)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count products")
	}

	opts := options.Find().
		SetSort(BuildProductSort(f.SortBy, f.SortOrder)).
		SetSkip(page.Skip()).
		SetLimit(int64(page.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find products")
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, errors.Wrap(err, "decode products")
	}
	return products, total, nil
}

func (r *mongoProductRepository) SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error) {
	ok, err := exists(ctx, r.collection, slugOrPathFilter(slug, path, exclude))
	return ok, errors.Wrap(err, "check product slug")
}

func (r *mongoProductRepository) CountByBrand(ctx context.Context, brandID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"brandId": brandID})
	return n, errors.Wrap(err, "count products")
}

func (r *mongoProductRepository) RewritePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	return rewritePathPrefix(ctx, r.collection, oldPrefix, newPrefix, primitive.NewDateTimeFromTime(time.Now().UTC()))
}

func (r *mongoProductRepository) ReassignCategory(ctx context.Context, brandID, categoryID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"brandId": brandID, "categoryId": bson.M{"$ne": categoryID}},
		bson.M{
			"$set": bson.M{"categoryId": categoryID, "updatedAt": time.Now().UTC()},
			"$inc": bson.M{"__v": 1},
		},
	)
	if err != nil {
		return 0, mapWriteError(err, "reassign product category")
	}
	return res.ModifiedCount, nil
}

func (r *mongoProductRepository) Replace(ctx context.Context, product *models.Product) error {
	expected := product.Version
	product.Version = expected + 1
	product.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": product.ID, "__v": expected}, product)
	if err != nil {
		product.Version = expected
		return mapWriteError(err, "replace product")
	}
	if res.MatchedCount == 0 {
		product.Version = expected
		return ErrStale
	}
	return nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete product")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// updateGuarded applies update to the product when filter matches and returns
// the document as stored afterwards. A miss is reported as ErrStale.
func (r *mongoProductRepository) updateGuarded(ctx context.Context, filter, update bson.M, op string) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, mapWriteError(err, op)
	}
	return &product, nil
}

func (r *mongoProductRepository) ReplaceVariant(ctx context.Context, productID primitive.ObjectID, version int64, variant models.Variant) (*models.Product, error) {
	filter := bson.M{"_id": productID, "__v": version, "variants._id": variant.ID}
	update := bson.M{
		"$set": bson.M{"variants.$": variant, "updatedAt": time.Now().UTC()},
		"$inc": bson.M{"__v": 1},
	}
	return r.updateGuarded(ctx, filter, update, "replace variant")
}

func (r *mongoProductRepository) PushVariant(ctx context.Context, productID primitive.ObjectID, version int64, variant models.Variant) (*models.Product, error) {
	filter := bson.M{"_id": productID, "__v": version}
	update := bson.M{
		"$push": bson.M{"variants": variant},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
		"$inc":  bson.M{"__v": 1},
	}
	return r.updateGuarded(ctx, filter, update, "push variant")
}

func (r *mongoProductRepository) PullVariant(ctx context.Context, productID primitive.ObjectID, version int64, variantID primitive.ObjectID) (*models.Product, error) {
	filter := bson.M{"_id": productID, "__v": version, "variants._id": variantID}
	update := bson.M{
		"$pull": bson.M{"variants": bson.M{"_id": variantID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
		"$inc":  bson.M{"__v": 1},
	}
	return r.updateGuarded(ctx, filter, update, "pull variant")
}

func (r *mongoProductRepository) AppendVariantImages(ctx context.Context, productID, variantID primitive.ObjectID, urls []string) (*models.Product, error) {
	filter := bson.M{"_id": productID, "variants._id": variantID}
	update := bson.M{
		"$push": bson.M{"variants.$.images": bson.M{"$each": urls}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
		"$inc":  bson.M{"__v": 1},
	}
	product, err := r.updateGuarded(ctx, filter, update, "append variant images")
	if errors.Is(err, ErrStale) {
		return nil, ErrNotFound
	}
	return product, err
}
