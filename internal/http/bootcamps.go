package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	"github.com/tazhibayda/bootcamp-service/internal/query"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
)

// runList parses the query string against s and writes the paged result.
func (h *Handler) runList(c *gin.Context, coll query.Collection, s query.Schema, opts query.Options) {
	q, err := query.Parse(c.Request.URL.Query(), s)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := query.Run(c.Request.Context(), coll, s, q, opts)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := repo.ParseID(c.Param(name))
	if err != nil {
		fail(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// ownedBootcamp loads the :id bootcamp and checks the principal may modify it.
func (h *Handler) ownedBootcamp(c *gin.Context, action string) (*domain.Bootcamp, bool) {
	id, okID := pathID(c, "id")
	if !okID {
		return nil, false
	}
	b, err := h.Store.FindBootcamp(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	u := principal(c)
	if !canModify(u, b.User) {
		fail(c, forbidOwner(u, action+" bootcamp", b.ID))
		return nil, false
	}
	return b, true
}

// ListBootcamps godoc
// @Summary List bootcamps
// @Description Supports field filters with [gt|gte|lt|lte|in], select, sort, page and limit.
// @Tags bootcamps
// @Produce json
// @Success 200 {object} query.Result
// @Failure 400 {object} map[string]any
// @Router /api/v1/bootcamps [get]
func (h *Handler) ListBootcamps(c *gin.Context) {
	h.runList(c, h.Store.Bootcamps(), repo.BootcampSchema, query.Options{Populate: &repo.BootcampCourses})
}

// GetBootcamp godoc
// @Summary Get a bootcamp with its courses
// @Tags bootcamps
// @Produce json
// @Param id path string true "bootcamp id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/bootcamps/{id} [get]
func (h *Handler) GetBootcamp(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	b, err := h.Store.FindBootcampView(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, b)
}

// CreateBootcamp godoc
// @Summary Create a bootcamp
// @Description Publishers may own one bootcamp; admins any number.
// @Tags bootcamps
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.BootcampInput true "bootcamp"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/v1/bootcamps [post]
func (h *Handler) CreateBootcamp(c *gin.Context) {
	var in domain.BootcampInput
	if !bind(c, &in) {
		return
	}
	ctx := c.Request.Context()
	u := principal(c)
	if u.Role != domain.RoleAdmin {
		n, err := h.Store.CountBootcampsByUser(ctx, u.ID)
		if err != nil {
			fail(c, err)
			return
		}
		if n > 0 {
			fail(c, apperr.Validation("The user with ID %s has already published a bootcamp", u.ID.Hex()))
			return
		}
	}
	b, err := h.Svc.CreateBootcamp(ctx, in, u.ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, b)
}

// UpdateBootcamp godoc
// @Summary Update a bootcamp
// @Tags bootcamps
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "bootcamp id"
// @Param payload body domain.BootcampPatch true "fields to change"
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/bootcamps/{id} [put]
func (h *Handler) UpdateBootcamp(c *gin.Context) {
	b, okB := h.ownedBootcamp(c, "update")
	if !okB {
		return
	}
	var in domain.BootcampPatch
	if !bind(c, &in) {
		return
	}
	out, err := h.Svc.UpdateBootcamp(c.Request.Context(), b.ID, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteBootcamp godoc
// @Summary Delete a bootcamp with its courses and reviews
// @Tags bootcamps
// @Security BearerAuth
// @Produce json
// @Param id path string true "bootcamp id"
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/bootcamps/{id} [delete]
func (h *Handler) DeleteBootcamp(c *gin.Context) {
	b, okB := h.ownedBootcamp(c, "delete")
	if !okB {
		return
	}
	if err := h.Svc.DeleteBootcamp(c.Request.Context(), b.ID); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

// BootcampsInRadius godoc
// @Summary Bootcamps within a distance of a zipcode
// @Tags bootcamps
// @Produce json
// @Param zipcode path string true "zipcode"
// @Param distance path number true "distance in miles"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/v1/bootcamps/radius/{zipcode}/{distance} [get]
func (h *Handler) BootcampsInRadius(c *gin.Context) {
	miles, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil || miles < 0 {
		fail(c, apperr.Validation("Distance must be a non-negative number of miles"))
		return
	}
	ctx := c.Request.Context()
	loc, err := h.Geo.Geocode(ctx, c.Param("zipcode"))
	if err != nil {
		if errors.Is(err, geocode.ErrNoMatch) {
			fail(c, apperr.NotFound("No location found for zipcode %s", c.Param("zipcode")))
			return
		}
		fail(c, apperr.Internal(err, "geocode"))
		return
	}
	bs, err := h.Store.FindBootcampsWithin(ctx, loc.Coordinates[0], loc.Coordinates[1], miles)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, bs, len(bs))
}
