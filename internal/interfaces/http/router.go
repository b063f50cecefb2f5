package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Tienda-api/internal/application/auth"
	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/application/usecase"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC     *usecase.ProductUseCase
	AuthUC        *auth.AuthUseCase
	CatalogSvc    *catalog.Service
	CategoryCache *categories.Cache
	Store         store.Store
	PageSize      int
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/login", authHandler.Login)

	// Vitrina compartida (público)
	catalogGroup := api.Group("/catalog")
	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	catalogGroup.Get("/", catalogHandler.Get)
	catalogGroup.Put("/filters", catalogHandler.SetFilters)
	catalogGroup.Post("/more", catalogHandler.LoadMore)
	catalogGroup.Post("/reset", catalogHandler.Reset)
	catalogGroup.Post("/reload", catalogHandler.Reload)
	catalogGroup.Post("/bestsellers/refresh", catalogHandler.RefreshBestSellers)

	// Categorías: lectura pública, escritura admin
	categoryHandler := NewCategoryHandler(deps.CategoryCache)
	categoriesGroup := api.Group("/categories")
	categoriesGroup.Get("/", categoryHandler.List)
	categoriesGroup.Get("/stream", categoryHandler.Stream)
	categoriesGroup.Get("/:id", categoryHandler.GetByID)

	// Productos: lectura pública, escritura admin
	productHandler := NewProductHandler(deps.ProductUC, deps.CatalogSvc, deps.Store, deps.PageSize)
	productsGroup := api.Group("/products")
	productsGroup.Get("/", productHandler.List)
	productsGroup.Get("/bestsellers", productHandler.BestSellers)
	productsGroup.Get("/:id", productHandler.GetByID)

	// Rutas protegidas (requieren Bearer Token con rol admin)
	admin := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireAdmin())

	adminCategories := admin.Group("/categories")
	adminCategories.Post("/", categoryHandler.Create)
	adminCategories.Put("/:id", categoryHandler.Update)
	adminCategories.Delete("/:id", categoryHandler.Deactivate)
	adminCategories.Delete("/:id/permanent", categoryHandler.DeletePermanently)

	adminProducts := admin.Group("/products")
	adminProducts.Post("/", productHandler.Create)
	adminProducts.Put("/:id", productHandler.Update)
	adminProducts.Delete("/:id", productHandler.Delete)
}
