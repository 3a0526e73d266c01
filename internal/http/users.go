package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/query"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/security"
)

// ListUsers godoc
// @Summary List users (admin)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} query.Result
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	h.runList(c, h.Store.Users(), repo.UserSchema, query.Options{})
}

// GetUser godoc
// @Summary Get a user (admin)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} map[string]any
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	u, err := h.Store.FindUserByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// CreateUser godoc
// @Summary Create a user (admin)
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.UserInput true "user"
// @Success 201 {object} map[string]any
// @Router /api/v1/users [post]
func (h *Handler) CreateUser(c *gin.Context) {
	var in domain.UserInput
	if !bind(c, &in) {
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := domain.Validate(in); err != nil {
		fail(c, err)
		return
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		fail(c, apperr.Internal(err, "hash password"))
		return
	}
	u := in.User(hash)
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// UpdateUser godoc
// @Summary Update a user (admin)
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Param payload body domain.UserPatch true "fields to change"
// @Success 200 {object} map[string]any
// @Router /api/v1/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	var in domain.UserPatch
	if !bind(c, &in) {
		return
	}
	if err := domain.Validate(in); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Store.UpdateUser(c.Request.Context(), id, in.Set())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// DeleteUser godoc
// @Summary Delete a user (admin)
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} map[string]any
// @Router /api/v1/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	if err := h.Store.DeleteUser(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
