package helpers

import (
	"encoding/json"
	"strconv"
	"strings"

	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetPageRequest extracts pagination parameters from HTTP request
func GetPageRequest(c *gin.Context) catalog.PageRequest {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(catalog.DefaultPageLimit)))
	return catalog.PageRequest{Page: page, Limit: limit}.Normalize()
}

// ParamID parses the :id style path parameter name.
func ParamID(c *gin.Context, name string) (primitive.ObjectID, error) {
	return catalog.ParseID(name, c.Param(name))
}

func optionalBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, catalog.Validation("invalid query parameter", key+" must be true or false")
	}
	return &v, nil
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, catalog.Validation("invalid query parameter", key+" must be a number")
	}
	return &v, nil
}

func optionalID(c *gin.Context, key string) (*primitive.ObjectID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := catalog.ParseID(key, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GetProductFilter reads the product search query. Spec filters are passed
// as specs[key]=value or as a JSON object in specs. Only active products
// match unless isActive is given.
func GetProductFilter(c *gin.Context) (models.ProductFilter, error) {
	f := models.ProductFilter{
		Name:      strings.TrimSpace(c.Query("name")),
		Slug:      strings.TrimSpace(c.Query("slug")),
		SortBy:    strings.TrimSpace(c.Query("sortBy")),
		SortOrder: strings.ToLower(strings.TrimSpace(c.Query("sortOrder"))),
	}

	var err error
	if f.CategoryID, err = optionalID(c, "categoryId"); err != nil {
		return f, err
	}
	if f.BrandID, err = optionalID(c, "brandId"); err != nil {
		return f, err
	}
	if f.IsActive, err = optionalBool(c, "isActive"); err != nil {
		return f, err
	}
	if f.IsActive == nil {
		active := true
		f.IsActive = &active
	}
	if f.HasDiscount, err = optionalBool(c, "hasDiscount"); err != nil {
		return f, err
	}
	if f.MinPrice, err = optionalFloat(c, "minPrice"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optionalFloat(c, "maxPrice"); err != nil {
		return f, err
	}
	if f.Specs, err = specQuery(c); err != nil {
		return f, err
	}
	return f, nil
}

func specQuery(c *gin.Context) (map[string]string, error) {
	specs, _ := c.GetQueryMap("specs")
	if raw := strings.TrimSpace(c.Query("specs")); raw != "" {
		var doc map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, catalog.Validation("invalid query parameter", "specs must be a JSON object")
		}
		if specs == nil {
			specs = map[string]string{}
		}
		for key, value := range doc {
			switch v := value.(type) {
			case string:
				specs[key] = v
			case float64:
				specs[key] = strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				specs[key] = strconv.FormatBool(v)
			default:
				return nil, catalog.Validation("invalid query parameter", "specs."+key+" must be a string, number or boolean")
			}
		}
	}
	if len(specs) == 0 {
		return nil, nil
	}
	return specs, nil
}

// GetImageRef reads the index and optional url guard of an image operation.
func GetImageRef(c *gin.Context) (int, string, error) {
	raw := c.Param("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "", catalog.Validation("invalid image index", raw+" is not an integer")
	}
	return index, strings.TrimSpace(c.Query("url")), nil
}
