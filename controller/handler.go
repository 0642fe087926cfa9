package controller

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"eshop/database"
	"eshop/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const requestTimeout = 10 * time.Second

var validate = validator.New()

type ProductStore interface {
	List(ctx context.Context, categoryIDs []bson.ObjectID) ([]models.ProductView, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.ProductView, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id bson.ObjectID, p *models.Product) (*models.Product, error)
	SetGallery(ctx context.Context, id bson.ObjectID, images []string) (*models.Product, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
	Featured(ctx context.Context, limit int64) ([]models.Product, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, id bson.ObjectID, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id bson.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ImageStore persists an uploaded image and returns the URL clients fetch it
// from. Remove takes a URL returned by Save.
type ImageStore interface {
	Save(ctx context.Context, file *multipart.FileHeader, baseURL string) (string, error)
	Remove(ctx context.Context, url string) error
}

// UserForgetter drops cached state about a deleted user.
type UserForgetter interface {
	Forget(ctx context.Context, id string) error
}

type Handler struct {
	Products   ProductStore
	Categories CategoryStore
	Users      UserStore
	Images     ImageStore
	// Forgetter is optional.
	Forgetter UserForgetter

	Secret   string
	TokenTTL time.Duration
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// parseID reads the :id path parameter. It writes the 400 response itself.
func parseID(c *gin.Context, invalidMessage string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, invalidMessage)
		return bson.ObjectID{}, false
	}
	return id, true
}

// storeError maps store failures onto responses.
func storeError(c *gin.Context, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		fail(c, http.StatusNotFound, notFoundMessage)
	default:
		slog.ErrorContext(c.Request.Context(), "store failure",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// baseURL is the scheme and host the client used to reach us.
func baseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(c.GetHeader("X-Forwarded-Proto")); proto {
	case "http", "https":
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
