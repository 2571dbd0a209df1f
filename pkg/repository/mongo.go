package repository

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	CategoryCollection    = "categories"
	SubcategoryCollection = "subcategories"
	ProductCollection     = "products"
)

// mapWriteError folds driver errors into the package sentinels.
func mapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(ErrDuplicate, op)
	}
	return errors.Wrap(err, op)
}

func mapFindError(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errors.Wrap(ErrNotFound, op)
	}
	return errors.Wrap(err, op)
}

// exactNameFilter matches name case-insensitively as a literal string.
func exactNameFilter(name string, exclude primitive.ObjectID) bson.M {
	filter := bson.M{
		"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"},
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return filter
}

func slugOrPathFilter(slug, path string, exclude primitive.ObjectID) bson.M {
	filter := bson.M{"$or": []bson.M{{"slug": slug}, {"path": path}}}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	return filter
}

func exists(ctx context.Context, col *mongo.Collection, filter bson.M) (bool, error) {
	n, err := col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// descendantsFilter selects documents whose path lies strictly below prefix.
func descendantsFilter(prefix string) bson.M {
	return bson.M{"path": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix+"/")}}
}

// rebasePipeline swaps the leading oldPrefix of path for newPrefix.
func rebasePipeline(oldPrefix, newPrefix string, now primitive.DateTime) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"path": bson.M{"$concat": bson.A{
				newPrefix,
				bson.M{"$substrCP": bson.A{"$path", len([]rune(oldPrefix)), bson.M{"$strLenCP": "$path"}}},
			}},
			"updatedAt": now,
			"__v":       bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$__v", 0}}, 1}},
		}}},
	}
}

func rewritePathPrefix(ctx context.Context, col *mongo.Collection, oldPrefix, newPrefix string, now primitive.DateTime) (int64, error) {
	if oldPrefix == newPrefix {
		return 0, nil
	}
	res, err := col.UpdateMany(ctx, descendantsFilter(oldPrefix), rebasePipeline(oldPrefix, newPrefix, now))
	if err != nil {
		return 0, mapWriteError(err, "rewrite path prefix")
	}
	return res.ModifiedCount, nil
}

// EnsureIndexes creates the unique slug and path indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true).SetName(field + "_unique"),
		}
	}
	plain := func(field string, order int) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: field, Value: order}}}
	}

	indexes := map[string][]mongo.IndexModel{
		CategoryCollection: {unique("slug"), unique("path")},
		SubcategoryCollection: {
			unique("slug"), unique("path"), plain("categoryId", 1),
		},
		ProductCollection: {
			unique("slug"), unique("path"),
			plain("brandId", 1), plain("categoryId", 1), plain("createdAt", -1),
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", name)
		}
	}
	return nil
}

// MongoTransactor runs callbacks in a majority write concern transaction.
// It requires a replica set or sharded cluster.
type MongoTransactor struct {
	client *mongo.Client
}

func NewMongoTransactor(client *mongo.Client) *MongoTransactor {
	return &MongoTransactor{client: client}
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	wc := writeconcern.New(writeconcern.WMajority())
	txnOptions := options.Transaction().SetWriteConcern(wc)

	session, err := t.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOptions)
	return err
}
