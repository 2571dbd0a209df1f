package catalog

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IdentifierKind int

const (
	ByID IdentifierKind = iota + 1
	BySlug
)

// Identifier is either a database id or a slug, never both.
type Identifier struct {
	Kind IdentifierKind
	ID   primitive.ObjectID
	Slug string
}

func (i Identifier) String() string {
	if i.Kind == ByID {
		return i.ID.Hex()
	}
	return i.Slug
}

// ParseIdentifier classifies raw. Anything in ObjectID hex form is an id and is
// never retried as a slug.
func ParseIdentifier(raw string) (Identifier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identifier{}, Validation("identifier is required")
	}
	if id, err := primitive.ObjectIDFromHex(raw); err == nil {
		return Identifier{Kind: ByID, ID: id}, nil
	}
	return Identifier{Kind: BySlug, Slug: strings.ToLower(raw)}, nil
}

// ParseID parses a path parameter that must be an ObjectID.
func ParseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, Validation("invalid "+field, field+" must be a 24 character hex id")
	}
	return id, nil
}
