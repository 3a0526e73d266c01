package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/query"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
)

func (h *Handler) ownedReview(c *gin.Context, action string) (*domain.Review, bool) {
	id, okID := pathID(c, "id")
	if !okID {
		return nil, false
	}
	r, err := h.Store.FindReview(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	u := principal(c)
	if !canModify(u, r.User) {
		fail(c, forbidOwner(u, action+" review", r.ID))
		return nil, false
	}
	return r, true
}

// ListReviews godoc
// @Summary List reviews with their bootcamp
// @Tags reviews
// @Produce json
// @Success 200 {object} query.Result
// @Router /api/v1/reviews [get]
func (h *Handler) ListReviews(c *gin.Context) {
	h.runList(c, h.Store.Reviews(), repo.ReviewSchema, query.Options{Populate: &repo.ReviewBootcamp})
}

// ListBootcampReviews godoc
// @Summary Reviews of one bootcamp
// @Tags reviews
// @Produce json
// @Param id path string true "bootcamp id"
// @Success 200 {object} map[string]any
// @Router /api/v1/bootcamps/{id}/reviews [get]
func (h *Handler) ListBootcampReviews(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	rs, err := h.Store.ListReviewsByBootcamp(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, rs, len(rs))
}

// GetReview godoc
// @Summary Get a review with its bootcamp
// @Tags reviews
// @Produce json
// @Param id path string true "review id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/reviews/{id} [get]
func (h *Handler) GetReview(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	r, err := h.Store.FindReviewView(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// AddReview godoc
// @Summary Review a bootcamp
// @Description One review per user and bootcamp.
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "bootcamp id"
// @Param payload body domain.ReviewInput true "review"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/v1/bootcamps/{id}/reviews [post]
func (h *Handler) AddReview(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	var in domain.ReviewInput
	if !bind(c, &in) {
		return
	}
	r, err := h.Svc.CreateReview(c.Request.Context(), id, in, principal(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, r)
}

// UpdateReview godoc
// @Summary Update a review
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "review id"
// @Param payload body domain.ReviewPatch true "fields to change"
// @Success 200 {object} map[string]any
// @Router /api/v1/reviews/{id} [put]
func (h *Handler) UpdateReview(c *gin.Context) {
	r, okR := h.ownedReview(c, "update")
	if !okR {
		return
	}
	var in domain.ReviewPatch
	if !bind(c, &in) {
		return
	}
	out, err := h.Svc.UpdateReview(c.Request.Context(), r, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteReview godoc
// @Summary Delete a review
// @Tags reviews
// @Security BearerAuth
// @Produce json
// @Param id path string true "review id"
// @Success 200 {object} map[string]any
// @Router /api/v1/reviews/{id} [delete]
func (h *Handler) DeleteReview(c *gin.Context) {
	r, okR := h.ownedReview(c, "delete")
	if !okR {
		return
	}
	if err := h.Svc.DeleteReview(c.Request.Context(), r); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
