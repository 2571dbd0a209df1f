package repository

import (
	"regexp"
	"sort"
	"strconv"

	"electron-shop/api/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSortFields maps public sort keys to document fields.
var ProductSortFields = map[string]string{
	"createdAt":     "createdAt",
	"updatedAt":     "updatedAt",
	"name":          "name",
	"price":         "variants.price",
	"discountPrice": "variants.discountPrice",
	"stock":         "variants.stock",
}

var specKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidSpecKey reports whether key can be used as a variants.specs field name.
func ValidSpecKey(key string) bool {
	return specKeyPattern.MatchString(key)
}

func containsInsensitive(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// BuildProductFilter translates f into a product query. Spec keys must have
// been checked with ValidSpecKey.
func BuildProductFilter(f models.ProductFilter) bson.M {
	filter := bson.M{}
	var and []bson.M

	if f.Name != "" {
		filter["name"] = containsInsensitive(f.Name)
	}
	if f.Slug != "" {
		filter["slug"] = containsInsensitive(f.Slug)
	}

	if f.CategoryID != nil {
		filter["categoryId"] = *f.CategoryID
	}
	if f.BrandID != nil {
		filter["brandId"] = *f.BrandID
	}
	if f.ExcludeID != nil {
		filter["_id"] = bson.M{"$ne": *f.ExcludeID}
	}
	if f.IsActive != nil {
		filter["variants.isActive"] = *f.IsActive
	}
	if f.HasDiscount != nil {
		if *f.HasDiscount {
			filter["variants.discount"] = bson.M{"$gt": 0}
		} else {
			and = append(and, bson.M{"variants": bson.M{"$not": bson.M{"$elemMatch": bson.M{"discount": bson.M{"$gt": 0}}}}})
		}
	}

	price := bson.M{}
	if f.MinPrice != nil {
		price["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		price["$lte"] = *f.MaxPrice
	}
	if len(price) > 0 {
		and = append(and, bson.M{"variants": bson.M{"$elemMatch": bson.M{"price": price}}})
	}

	keys := make([]string, 0, len(f.Specs))
	for key := range f.Specs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values := bson.M{"$in": SpecValues(f.Specs[key])}
		and = append(and, bson.M{"$or": []bson.M{
			{"baseSpecs." + key: values},
			{"variants.specs." + key: values},
		}})
	}

	if len(and) > 0 {
		filter["$and"] = and
	}
	return filter
}

// SpecValues lists the stored forms a query string value may match. Specs
// are decoded from JSON, so "16" also matches the number 16 and "true" the
// boolean.
func SpecValues(raw string) []interface{} {
	values := []interface{}{raw}
	switch raw {
	case "true":
		return append(values, true)
	case "false":
		return append(values, false)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		values = append(values, n)
	}
	return values
}

// BuildProductSort returns the sort document, newest first by default.
func BuildProductSort(sortBy, sortOrder string) bson.D {
	field, ok := ProductSortFields[sortBy]
	if !ok {
		field = "createdAt"
	}
	order := -1
	if sortOrder == "asc" {
		order = 1
	}
	return bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}}
}
