package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Image struct {
	URL     string `bson:"url" json:"url"`
	AltText string `bson:"altText" json:"altText"`
}

// Subcategory is also called a brand; products hang off it.
type Subcategory struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CategoryID     primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Name           string             `bson:"name" json:"name"`
	Slug           string             `bson:"slug" json:"slug"`
	Path           string             `bson:"path" json:"path"`
	Image          *Image             `bson:"image,omitempty" json:"image,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	SeoTitle       string             `bson:"seoTitle,omitempty" json:"seoTitle,omitempty"`
	SeoDescription string             `bson:"seoDescription,omitempty" json:"seoDescription,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version        int64              `bson:"__v" json:"__v"`
}

// ImageURL returns the cover URL or "" when there is none.
func (s *Subcategory) ImageURL() string {
	if s.Image == nil {
		return ""
	}
	return s.Image.URL
}

type CreateSubcategoryRequest struct {
	CategoryID     string `json:"categoryId" form:"categoryId" validate:"required"`
	Name           string `json:"name" form:"name" validate:"required,max=50"`
	Description    string `json:"description" form:"description" validate:"max=200"`
	IsActive       *bool  `json:"isActive" form:"isActive"`
	SeoTitle       string `json:"seoTitle" form:"seoTitle" validate:"max=60"`
	SeoDescription string `json:"seoDescription" form:"seoDescription" validate:"max=160"`
}

type UpdateSubcategoryRequest struct {
	CategoryID     *string `json:"categoryId" form:"categoryId"`
	Name           *string `json:"name" form:"name" validate:"omitempty,max=50"`
	Description    *string `json:"description" form:"description" validate:"omitempty,max=200"`
	IsActive       *bool   `json:"isActive" form:"isActive"`
	SeoTitle       *string `json:"seoTitle" form:"seoTitle" validate:"omitempty,max=60"`
	SeoDescription *string `json:"seoDescription" form:"seoDescription" validate:"omitempty,max=160"`
}
