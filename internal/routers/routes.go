package routers

import (
	"electron-shop/api/internal/common"
	"electron-shop/api/internal/container"
	"electron-shop/api/internal/middleware"
	"electron-shop/api/pkg/controllers"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Options configures the router.
type Options struct {
	JWTSecret string
	// Redis backs the rate limiter. Nil falls back to an in-memory store.
	Redis     *redis.Client
	RateLimit int
	// UploadDir is served under /uploads when set.
	UploadDir string
	Checks    map[string]controllers.HealthCheck
}

// InitRoute creates the catalog router
func InitRoute(serviceContainer *container.ServiceContainer, opts Options) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = common.MAX_MULTIPART_MEMORY
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CorsMiddleware())

	router.GET("/health", controllers.Health(opts.Checks))
	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}

	api := router.Group("/api/v1", middleware.CatalogRateLimiter(opts.Redis, opts.RateLimit))
	{
		admin := middleware.AdminOnly(opts.JWTSecret)

		categoryRoutes(api, serviceContainer.CategoryController, admin)
		subcategoryRoutes(api, serviceContainer.SubcategoryController, admin)
		productRoutes(api, serviceContainer.ProductController, admin)
	}

	return router
}

func categoryRoutes(api *gin.RouterGroup, cc *controllers.CategoryController, admin gin.HandlerFunc) {
	category := api.Group("/categories")

	category.GET("", cc.GetAllCategories())
	category.GET("/path", cc.GetCategoryByPath())
	category.GET("/slug/:slug", cc.GetCategoryBySlug())
	category.GET("/:id", cc.GetCategory())

	{
		secured := category.Group("").Use(admin)
		secured.POST("", cc.CreateCategory())
		secured.PUT("/:id", cc.UpdateCategory())
		secured.DELETE("/:id", cc.DeleteCategory())
	}
}

func subcategoryRoutes(api *gin.RouterGroup, sc *controllers.SubcategoryController, admin gin.HandlerFunc) {
	subcategory := api.Group("/subcategories")

	subcategory.GET("", sc.GetAllSubcategories())
	subcategory.GET("/path", sc.GetSubcategoryByPath())
	subcategory.GET("/slug/:slug", sc.GetSubcategoryBySlug())
	subcategory.GET("/category/:categoryId", sc.GetSubcategoriesByCategory())
	subcategory.GET("/:id", sc.GetSubcategory())

	{
		secured := subcategory.Group("").Use(admin)
		secured.POST("", sc.CreateSubcategory())
		secured.PUT("/:id", sc.UpdateSubcategory())
		secured.DELETE("/:id", sc.DeleteSubcategory())
	}
}

func productRoutes(api *gin.RouterGroup, pc *controllers.ProductController, admin gin.HandlerFunc) {
	product := api.Group("/products")

	product.GET("", pc.GetProducts())
	product.GET("/filter", pc.FilterProducts())
	product.GET("/path", pc.GetProductByPath())
	product.GET("/slug/:slug", pc.GetProductBySlug())
	product.GET("/:id", pc.GetProduct())
	product.GET("/:id/related", pc.GetRelatedProducts())

	{
		secured := product.Group("").Use(admin)
		secured.POST("", pc.CreateProduct())
		secured.PUT("/:id", pc.UpdateProduct())
		secured.DELETE("/:id", pc.DeleteProduct())

		// Variants
		secured.POST("/:id/variants", pc.AddVariant())
		secured.PUT("/:id/variants/:variantId", pc.UpdateVariant())
		secured.DELETE("/:id/variants/:variantId", pc.DeleteVariant())

		// Variant images
		secured.POST("/:id/variants/:variantId/images", pc.AddVariantImages())
		secured.PUT("/:id/variants/:variantId/images/:index", pc.ReplaceVariantImage())
		secured.DELETE("/:id/variants/:variantId/images/:index", pc.RemoveVariantImage())
		secured.DELETE("/:id/variants/:variantId/images", pc.RemoveAllVariantImages())
	}
}
