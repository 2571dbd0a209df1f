package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID             primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	Name           string                 `bson:"name" json:"name"`
	BrandID        primitive.ObjectID     `bson:"brandId" json:"brandId"`
	CategoryID     primitive.ObjectID     `bson:"categoryId" json:"categoryId"`
	BaseSpecs      map[string]interface{} `bson:"baseSpecs,omitempty" json:"baseSpecs,omitempty"`
	Description    string                 `bson:"description,omitempty" json:"description,omitempty"`
	Slug           string                 `bson:"slug" json:"slug"`
	Path           string                 `bson:"path" json:"path"`
	Seo            string                 `bson:"seo,omitempty" json:"seo,omitempty"`
	SeoDescription string                 `bson:"seoDescription,omitempty" json:"seoDescription,omitempty"`
	Variants       []Variant              `bson:"variants" json:"variants"`
	CreatedAt      time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time              `bson:"updatedAt" json:"updatedAt"`
	Version        int64                  `bson:"__v" json:"__v"`
}

// Variant finds an embedded variant by id.
func (p *Product) Variant(id primitive.ObjectID) (*Variant, int) {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], i
		}
	}
	return nil, -1
}

// ImageURLs lists every image referenced by any variant of the product.
func (p *Product) ImageURLs() []string {
	var urls []string
	for _, v := range p.Variants {
		urls = append(urls, v.Images...)
	}
	return urls
}

type Variant struct {
	ID            primitive.ObjectID     `bson:"_id" json:"_id"`
	Color         string                 `bson:"color" json:"color"`
	Images        []string               `bson:"images" json:"images"`
	Specs         map[string]interface{} `bson:"specs,omitempty" json:"specs,omitempty"`
	Stock         int                    `bson:"stock" json:"stock"`
	Price         float64                `bson:"price" json:"price"`
	Discount      float64                `bson:"discount" json:"discount"`
	DiscountPrice float64                `bson:"discountPrice" json:"discountPrice"`
	DiscountStart *time.Time             `bson:"discountStart,omitempty" json:"discountStart,omitempty"`
	DiscountEnd   *time.Time             `bson:"discountEnd,omitempty" json:"discountEnd,omitempty"`
	IsActive      bool                   `bson:"isActive" json:"isActive"`
	Label         string                 `bson:"label,omitempty" json:"label,omitempty"`
}

// DiscountActive reports whether the discount applies at now.
func (v Variant) DiscountActive(now time.Time) bool {
	if v.Discount <= 0 {
		return false
	}
	if v.DiscountStart != nil && now.Before(*v.DiscountStart) {
		return false
	}
	if v.DiscountEnd != nil && now.After(*v.DiscountEnd) {
		return false
	}
	return true
}

// EffectivePrice is the price a customer pays at now.
func (v Variant) EffectivePrice(now time.Time) float64 {
	if v.DiscountActive(now) {
		return v.DiscountPrice
	}
	return v.Price
}

func (v Variant) MarshalJSON() ([]byte, error) {
	type plain Variant
	return json.Marshal(struct {
		plain
		EffectivePrice float64 `json:"effectivePrice"`
	}{plain(v), v.EffectivePrice(time.Now())})
}

type VariantInput struct {
	Color         string                 `json:"color" validate:"required,max=50"`
	Images        []string               `json:"images" validate:"omitempty,dive,url"`
	Specs         map[string]interface{} `json:"specs"`
	Stock         int                    `json:"stock" validate:"gte=0"`
	Price         *float64               `json:"price" validate:"required,gte=0"`
	Discount      float64                `json:"discount" validate:"gte=0,lte=100"`
	DiscountStart *time.Time             `json:"discountStart"`
	DiscountEnd   *time.Time             `json:"discountEnd"`
	IsActive      *bool                  `json:"isActive"`
	Label         string                 `json:"label" validate:"max=50"`
}

type CreateProductRequest struct {
	Name           string                 `json:"name" validate:"required,max=120"`
	BrandID        string                 `json:"brandId" validate:"required"`
	CategoryID     string                 `json:"categoryId" validate:"required"`
	BaseSpecs      map[string]interface{} `json:"baseSpecs"`
	Description    string                 `json:"description" validate:"max=1000"`
	Seo            string                 `json:"seo" validate:"max=60"`
	SeoDescription string                 `json:"seoDescription" validate:"max=160"`
	Variants       []VariantInput         `json:"variants" validate:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	Name           *string                `json:"name" validate:"omitempty,max=120"`
	BrandID        *string                `json:"brandId"`
	CategoryID     *string                `json:"categoryId"`
	BaseSpecs      map[string]interface{} `json:"baseSpecs"`
	Description    *string                `json:"description" validate:"omitempty,max=1000"`
	Seo            *string                `json:"seo" validate:"omitempty,max=60"`
	SeoDescription *string                `json:"seoDescription" validate:"omitempty,max=160"`
}

type UpdateVariantRequest struct {
	Color         *string                `json:"color" validate:"omitempty,max=50"`
	Specs         map[string]interface{} `json:"specs"`
	Stock         *int                   `json:"stock" validate:"omitempty,gte=0"`
	Price         *float64               `json:"price" validate:"omitempty,gte=0"`
	Discount      *float64               `json:"discount" validate:"omitempty,gte=0,lte=100"`
	DiscountStart *time.Time             `json:"discountStart"`
	DiscountEnd   *time.Time             `json:"discountEnd"`
	IsActive      *bool                  `json:"isActive"`
	Label         *string                `json:"label" validate:"omitempty,max=50"`
}

// ProductFilter carries the product search parameters.
type ProductFilter struct {
	Name        string
	Slug        string
	CategoryID  *primitive.ObjectID
	BrandID     *primitive.ObjectID
	IsActive    *bool
	HasDiscount *bool
	MinPrice    *float64
	MaxPrice    *float64
	Specs       map[string]string
	SortBy      string
	SortOrder   string
	ExcludeID   *primitive.ObjectID
}
