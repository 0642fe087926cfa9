package route

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"eshop/controller"
	"eshop/logger"
	mw "eshop/middlewares"
	"eshop/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	APIURL string
	// UploadDir is served at storage.PublicPath without the gate. Empty disables it.
	UploadDir   string
	Origins     []string
	RateLimiter *mw.RateLimiter
	Logger      *slog.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization", "Accept", mw.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Authorization", mw.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = origins
	} else {
		cfg.AllowOriginFunc = func(origin string) bool {
			return strings.HasPrefix(origin, "http://") || strings.HasPrefix(origin, "https://localhost:")
		}
	}
	return cfg
}

// New builds the engine. Every API route, and every unknown path, passes
// through the gate.
func New(h *controller.Handler, gate *mw.Gate, opts Options) *gin.Engine {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), mw.RequestID(), logger.Middleware(l), cors.New(corsConfig(opts.Origins)))
	if opts.RateLimiter != nil {
		router.Use(opts.RateLimiter.Middleware())
	}

	if opts.UploadDir != "" {
		router.Static(storage.PublicPath, opts.UploadDir)
	}

	guard := gate.Middleware()
	router.NoRoute(guard, func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	})

	api := router.Group(opts.APIURL, guard)

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.GET("/:id", h.GetProduct)
	products.GET("/get/count", h.CountProducts)
	products.GET("/get/featured/:count", h.FeaturedProducts)
	products.POST("", h.CreateProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.PUT("/gallery-images/:id", h.UpdateGallery)
	products.DELETE("/:id", h.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.GET("/:id", h.GetCategory)
	categories.POST("", h.CreateCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)

	users := api.Group("/users")
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("", h.CreateUser)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.GET("/get/count", h.CountUsers)
	users.DELETE("/:id", h.DeleteUser)

	return router
}
