package controller

import (
	"net/http"

	"eshop/models"

	"github.com/gin-gonic/gin"
)

const categoryNotFound = "The category with the given ID was not found."

func (h *Handler) ListCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	categories, err := h.Categories.List(ctx)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := parseID(c, "Invalid Category Id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	category, err := h.Categories.Get(ctx, id)
	if err != nil {
		storeError(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, category)
}

func bindCategory(c *gin.Context) (*models.Category, bool) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		fail(c, http.StatusBadRequest, "Invalid Request Body")
		return nil, false
	}
	if err := validate.Struct(category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation Failed", "details": err.Error()})
		return nil, false
	}
	return &category, true
}

func (h *Handler) CreateCategory(c *gin.Context) {
	category, ok := bindCategory(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Categories.Create(ctx, category); err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "Invalid Category Id")
	if !ok {
		return
	}
	category, ok := bindCategory(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	updated, err := h.Categories.Update(ctx, id, category)
	if err != nil {
		storeError(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "Invalid Category Id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Categories.Delete(ctx, id); err != nil {
		storeError(c, err, "category not found!")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "the category is deleted!"})
}
