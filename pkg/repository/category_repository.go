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

type mongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &mongoCategoryRepository{collection: db.Collection(CategoryCollection)}
}

func (r *mongoCategoryRepository) Insert(ctx context.Context, category *models.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, category)
	return mapWriteError(err, "insert category")
}

func (r *mongoCategoryRepository) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	var category models.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, mapFindError(err, "find category")
	}
	return &category, nil
}

func (r *mongoCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCategoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoCategoryRepository) FindByPath(ctx context.Context, path string) (*models.Category, error) {
	return r.findOne(ctx, bson.M{"path": path})
}

func (r *mongoCategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "path", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, errors.Wrap(err, "decode categories")
	}
	return categories, nil
}

func (r *mongoCategoryRepository) NameExists(ctx context.Context, name string, exclude primitive.ObjectID) (bool, error) {
	ok, err := exists(ctx, r.collection, exactNameFilter(name, exclude))
	return ok, errors.Wrap(err, "check category name")
}

func (r *mongoCategoryRepository) SlugOrPathExists(ctx context.Context, slug, path string, exclude primitive.ObjectID) (bool, error) {
	ok, err := exists(ctx, r.collection, slugOrPathFilter(slug, path, exclude))
	return ok, errors.Wrap(err, "check category slug")
}

func (r *mongoCategoryRepository) Replace(ctx context.Context, category *models.Category) error {
	expected := category.Version
	category.Version = expected + 1
	category.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": category.ID, "__v": expected}, category)
	if err != nil {
		category.Version = expected
		return mapWriteError(err, "replace category")
	}
	if res.MatchedCount == 0 {
		category.Version = expected
		return ErrStale
	}
	return nil
}

func (r *mongoCategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete category")
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
