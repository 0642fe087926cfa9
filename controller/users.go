package controller

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eshop/database"
	"eshop/models"
	"eshop/utils"

	"github.com/gin-gonic/gin"
)

const userNotFound = "The user with the given ID was not found."

// Register creates a customer account. The isAdmin field is ignored.
func (h *Handler) Register(c *gin.Context) {
	h.createUser(c, false)
}

// CreateUser is the admin variant of Register and honours isAdmin.
func (h *Handler) CreateUser(c *gin.Context) {
	h.createUser(c, true)
}

func (h *Handler) createUser(c *gin.Context, allowAdmin bool) {
	var input models.UserRegistration
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid Request Body")
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Validation Failed", "details": err.Error()})
		return
	}

	hash, err := utils.HashPass(input.Password)
	if err != nil {
		slog.Error("hash password", "error", err)
		fail(c, http.StatusInternalServerError, "Error Hashing Password")
		return
	}

	user := &models.User{
		Name:         input.Name,
		Email:        strings.ToLower(input.Email),
		PasswordHash: hash,
		Phone:        input.Phone,
		IsAdmin:      allowAdmin && input.IsAdmin,
		Street:       input.Street,
		Apartment:    input.Apartment,
		Zip:          input.Zip,
		City:         input.City,
		Country:      input.Country,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			fail(c, http.StatusConflict, "User already exist")
			return
		}
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(c *gin.Context) {
	var input models.UserLogin
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid Request Body")
		return
	}
	if err := validate.Struct(input); err != nil {
		fail(c, http.StatusBadRequest, "Both email and password are required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		storeError(c, err, "")
		return
	}

	if err := utils.ComparePass(input.Password, user.PasswordHash); err != nil {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := utils.SignToken(h.Secret, user.ID.Hex(), user.IsAdmin, h.TokenTTL)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Error signing token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Email, "token": token})
}

func (h *Handler) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "Invalid User Id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.Users.Get(ctx, id)
	if err != nil {
		storeError(c, err, userNotFound)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) CountUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := h.Users.Count(ctx)
	if err != nil {
		storeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"userCount": count})
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "Invalid User Id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		storeError(c, err, "user not found!")
		return
	}
	if h.Forgetter != nil {
		if err := h.Forgetter.Forget(ctx, id.Hex()); err != nil {
			slog.Warn("forget deleted user", "user_id", id.Hex(), "error", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "the user is deleted!"})
}
