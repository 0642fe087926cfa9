package controller

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"eshop/database"
	"eshop/models"
	"eshop/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const maxGalleryImages = 10

func (h *Handler) ListProducts(c *gin.Context) {
	var categoryIDs []bson.ObjectID
	if raw := c.Query("categories"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			id, err := bson.ObjectIDFromHex(strings.TrimSpace(s))
			if err != nil {
				fail(c, http.StatusBadRequest, "Invalid Category Id")
				return
			}
			categoryIDs = append(categoryIDs, id)
		}
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.Products.List(ctx, categoryIDs)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseID(c, "Invalid Product Id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := h.Products.Get(ctx, id)
	if err != nil {
		storeError(c, err, "The product with the given ID was not found.")
		return
	}
	c.JSON(http.StatusOK, product)
}

// categoryFor resolves the category named by a product payload, answering
// 400 when it does not exist.
func (h *Handler) categoryFor(c *gin.Context, category string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(category)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid Category")
		return bson.ObjectID{}, false
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Categories.Get(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusBadRequest, "Invalid Category")
		} else {
			storeError(c, err, "")
		}
		return bson.ObjectID{}, false
	}
	return id, true
}

// saveImage stores one upload, answering 400 for unsupported types.
func (h *Handler) saveImage(c *gin.Context, file *multipart.FileHeader) (string, bool) {
	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := h.Images.Save(ctx, file, baseURL(c))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImageType) {
			fail(c, http.StatusBadRequest, "invalid image type")
		} else {
			storeError(c, err, "")
		}
		return "", false
	}
	return url, true
}

// discardImages removes images saved for a request that then failed.
func (h *Handler) discardImages(c *gin.Context, urls ...string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	for _, url := range urls {
		if err := h.Images.Remove(ctx, url); err != nil {
			slog.Warn("remove orphaned image", "url", url, "error", err)
		}
	}
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBind(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid Request Body")
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation Failed", "details": err.Error()})
		return
	}

	categoryID, ok := h.categoryFor(c, input.Category)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "No image in the request")
		return
	}
	if input.Image, ok = h.saveImage(c, file); !ok {
		return
	}

	product := &models.Product{Category: categoryID}
	input.Apply(product)

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Products.Create(ctx, product); err != nil {
		h.discardImages(c, product.Image)
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "Invalid Product Id")
	if !ok {
		return
	}

	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid Request Body")
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation Failed", "details": err.Error()})
		return
	}

	categoryID, ok := h.categoryFor(c, input.Category)
	if !ok {
		return
	}

	product := &models.Product{Category: categoryID}
	input.Apply(product)

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.Products.Update(ctx, id, product)
	if err != nil {
		storeError(c, err, "the product cannot be updated!")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "Invalid Product Id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		storeError(c, err, "product not found!")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "the product is deleted!"})
}

func (h *Handler) CountProducts(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := h.Products.Count(ctx)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"productCount": count})
}

func (h *Handler) FeaturedProducts(c *gin.Context) {
	var limit int64
	if raw := c.Param("count"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			fail(c, http.StatusBadRequest, "Invalid count")
			return
		}
		limit = n
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	products, err := h.Products.Featured(ctx, limit)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// UpdateGallery replaces a product's gallery with the uploaded images.
func (h *Handler) UpdateGallery(c *gin.Context) {
	id, ok := parseID(c, "Invalid Product Id")
	if !ok {
		return
	}

	var files []*multipart.FileHeader
	if form, err := c.MultipartForm(); err == nil {
		files = form.File["images"]
	}
	if len(files) > maxGalleryImages {
		fail(c, http.StatusBadRequest, "Too many images, at most 10 allowed")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.Products.Get(ctx, id); err != nil {
		storeError(c, err, "the gallery cannot be updated!")
		return
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		url, ok := h.saveImage(c, file)
		if !ok {
			h.discardImages(c, paths...)
			return
		}
		paths = append(paths, url)
	}

	product, err := h.Products.SetGallery(ctx, id, paths)
	if err != nil {
		h.discardImages(c, paths...)
		storeError(c, err, "the gallery cannot be updated!")
		return
	}
	c.JSON(http.StatusOK, product)
}
