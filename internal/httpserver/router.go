package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	mwauth "github.com/crafthaus/shop-api/internal/middleware/auth"
)

type Deps struct {
	Auth        *AuthHTTP
	Cart        *CartHTTP
	Products    *ProductHTTP
	Collections *CollectionHTTP
	Admin       *AdminHTTP
	Gate        *mwauth.Middleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	api := e.Group("/api")

	api.POST("/user/register", d.Auth.Register)
	api.POST("/user/login", d.Auth.Login)
	api.POST("/user/refresh", d.Auth.Refresh)

	user := api.Group("/user", d.Gate.RequireAuth)
	user.POST("/logout", d.Auth.Logout)
	user.GET("/me", d.Auth.Me)
	user.PATCH("/me", d.Auth.UpdateMe)

	products := api.Group("/products")
	products.GET("", d.Products.GetProducts)
	products.GET("/search", d.Products.Search)
	products.GET("/:id", d.Products.GetProduct)

	collections := api.Group("/collections")
	collections.GET("", d.Collections.GetCollections)
	collections.GET("/:id", d.Collections.GetCollection)
	collections.GET("/:id/products", d.Collections.GetCollectionProducts)

	cart := api.Group("/cart", d.Gate.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddItem)
	cart.PATCH("/:productId", d.Cart.UpdateItem)
	cart.DELETE("/:productId", d.Cart.RemoveItem)
	cart.DELETE("", d.Cart.ClearCart)

	adm := api.Group("/admin", d.Gate.RequireAdmin)
	adm.GET("/stats", d.Admin.GetStats)
	adm.GET("/users", d.Admin.GetUsers)
	adm.PATCH("/users/:userId/role", d.Admin.UpdateUserRole)
	adm.DELETE("/users/:userId", d.Admin.DeleteUser)
	adm.POST("/products", d.Products.CreateProduct)
	adm.PATCH("/products/:id", d.Products.UpdateProduct)
	adm.DELETE("/products/:id", d.Products.DeleteProduct)
	adm.POST("/collections", d.Collections.CreateCollection)
	adm.PATCH("/collections/:id", d.Collections.UpdateCollection)
	adm.DELETE("/collections/:id", d.Collections.DeleteCollection)
}
