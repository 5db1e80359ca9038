package handlers

import (
	"context"

	"expense-tracker-backend/apperr"
	"expense-tracker-backend/models"
	"expense-tracker-backend/utils"

	"github.com/gin-gonic/gin"
)

// Directory is the read side of users and categories.
type Directory interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	UpdateFCMToken(ctx context.Context, userID uint, token string) error
}

type UpdateFCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type DirectoryHandler struct {
	directory Directory
	errors    *ErrorRenderer
}

func NewDirectoryHandler(directory Directory, errors *ErrorRenderer) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, errors: errors}
}

// GET /api/users
func (h *DirectoryHandler) GetUsers(c *gin.Context) {
	users, err := h.directory.ListUsers(c.Request.Context())
	if err != nil {
		h.errors.Render(c, h.errors.Language(c), err)
		return
	}

	response := make([]models.UserResponse, 0, len(users))
	for i := range users {
		response = append(response, users[i].ToResponse())
	}
	utils.OK(c, response)
}

// PUT /api/users/:id/fcm-token
func (h *DirectoryHandler) UpdateFCMToken(c *gin.Context) {
	lang := h.errors.Language(c)

	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		h.errors.Render(c, lang, apperr.ErrInvalidID.Wrap(err))
		return
	}

	var req UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errors.Render(c, lang, err)
		return
	}

	if err := h.directory.UpdateFCMToken(c.Request.Context(), id, req.Token); err != nil {
		h.errors.Render(c, lang, err)
		return
	}

	utils.Message(c, h.errors.translator.T(lang, "USER.FCM_TOKEN_UPDATED", nil))
}

// GET /api/categories
func (h *DirectoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.directory.ListCategories(c.Request.Context())
	if err != nil {
		h.errors.Render(c, h.errors.Language(c), err)
		return
	}
	utils.OK(c, categories)
}
