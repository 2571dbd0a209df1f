package repository

import (
	"context"
	"time"

	"electron-shop/api/pkg/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoSubcategoryRepository struct {
	collection *mongo.Collection
}

func NewSubcategoryRepository(db *mongo.Database) SubcategoryRepository {
	return &mongoSubcategoryRepository{collection: db.Collection(SubcategoryCollection)}
}

func (r *mongoSubcategoryRepository) Insert(ctx context.Context, sub *models.Subcategory) error {
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, sub)
	return mapWriteError(err, "insert subcategory")
}

func (r *mongoSubcategoryRepository) findOne(ctx context.Context, filter bson.M) (*models.Subcategory, error) {
	var sub models.Subcategory
	if err := r.collection.FindOne(ctx, filter).Decode(&sub); err != nil {
		return nil, mapFindError(err, "find subcategory")
	}
	return &sub, nil
}

func (r *mongoSubcategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subcategory, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoSubcategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoSubcategoryRepository) FindByPath(ctx context.Context, path string) (*models.Subcategory, error) {
	return r.findOne(ctx, bson.M{"path": path})
}

func (r *mongoSubcategoryRepository) FindAll(ctx context.Context, categoryID *primitive.ObjectID) ([]models.Subcategory, error) {
	filter := bson.M{}
	if categoryID != nil {
		filter["categoryId"] = *categoryID
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "path", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list subcategories")
	}
	subs := []models.Subcategory{}
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, errors.Wrap(err, "decode subcategories")
	}
	return subs, nil
}

func (r *mongoSubcategoryRepository) NameExists(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	ok, err := exists(ctx, r.collection, exactNameFilter(name, exclude))
	return ok, errors.Wrap(err, "check subcategory name")
}

func (r *mongoSubcategoryRepository) SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error) {
	ok, err := exists(ctx, r.collection, slugOrPathFilter(slug, path, exclude))
	return ok, errors.Wrap(err, "check subcategory slug")
}

func (r *mongoSubcategoryRepository) CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"categoryId": categoryID})
	return n, errors.Wrap(err, "count subcategories")
}

func (r *mongoSubcategoryRepository) RewritePathPrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	return rewritePathPrefix(ctx, r.collection, oldPrefix, newPrefix, primitive.NewDateTimeFromTime(time.Now().UTC()))
}

func (r *mongoSubcategoryRepository) Replace(ctx context.Context, sub *models.Subcategory) error {
	expected := sub.Version
	sub.Version = expected + 1
	sub.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sub.ID, "__v": expected}, sub)
	if err != nil {
		sub.Version = expected
		return mapWriteError(err, "replace subcategory")
	}
	if res.MatchedCount == 0 {
		sub.Version = expected
		return ErrStale
	}
	return nil
}

func (r *mongoSubcategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete subcategory")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
