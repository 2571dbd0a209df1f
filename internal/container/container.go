package container

import (
	"electron-shop/api/pkg/controllers"
	"electron-shop/api/pkg/services"
)

type ServiceContainer struct {
	CategoryService    services.CategoryService
	SubcategoryService services.SubcategoryService
	ProductService     services.ProductService

	CategoryController    *controllers.CategoryController
	SubcategoryController *controllers.SubcategoryController
	ProductController     *controllers.ProductController
}

func NewServiceContainer(deps services.Dependencies) *ServiceContainer {
	categoryService := services.NewCategoryService(deps)
	subcategoryService := services.NewSubcategoryService(deps)
	productService := services.NewProductService(deps)

	return &ServiceContainer{
		CategoryService:    categoryService,
		SubcategoryService: subcategoryService,
		ProductService:     productService,

		CategoryController:    controllers.InitCategoryController(categoryService),
		SubcategoryController: controllers.InitSubcategoryController(subcategoryService),
		ProductController:     controllers.InitProductController(productService),
	}
}
