package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/query"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
)

func (h *Handler) ownedCourse(c *gin.Context, action string) (*domain.Course, bool) {
	id, okID := pathID(c, "id")
	if !okID {
		return nil, false
	}
	co, err := h.Store.FindCourse(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	u := principal(c)
	if !canModify(u, co.User) {
		fail(c, forbidOwner(u, action+" course", co.ID))
		return nil, false
	}
	return co, true
}

// ListCourses godoc
// @Summary List courses with their bootcamp
// @Tags courses
// @Produce json
// @Success 200 {object} query.Result
// @Router /api/v1/courses [get]
func (h *Handler) ListCourses(c *gin.Context) {
	h.runList(c, h.Store.Courses(), repo.CourseSchema, query.Options{Populate: &repo.CourseBootcamp})
}

// ListBootcampCourses godoc
// @Summary Courses of one bootcamp
// @Tags courses
// @Produce json
// @Param id path string true "bootcamp id"
// @Success 200 {object} map[string]any
// @Router /api/v1/bootcamps/{id}/courses [get]
func (h *Handler) ListBootcampCourses(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	cs, err := h.Store.ListCoursesByBootcamp(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	list(c, cs, len(cs))
}

// GetCourse godoc
// @Summary Get a course with its bootcamp
// @Tags courses
// @Produce json
// @Param id path string true "course id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/courses/{id} [get]
func (h *Handler) GetCourse(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		return
	}
	co, err := h.Store.FindCourseView(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, co)
}

// AddCourse godoc
// @Summary Add a course to a bootcamp
// @Tags courses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "bootcamp id"
// @Param payload body domain.CourseInput true "course"
// @Success 201 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Router /api/v1/bootcamps/{id}/courses [post]
func (h *Handler) AddCourse(c *gin.Context) {
	b, okB := h.ownedBootcamp(c, "add a course to")
	if !okB {
		return
	}
	var in domain.CourseInput
	if !bind(c, &in) {
		return
	}
	co, err := h.Svc.CreateCourse(c.Request.Context(), b.ID, in, principal(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, co)
}

// UpdateCourse godoc
// @Summary Update a course
// @Tags courses
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "course id"
// @Param payload body domain.CoursePatch true "fields to change"
// @Success 200 {object} map[string]any
// @Router /api/v1/courses/{id} [put]
func (h *Handler) UpdateCourse(c *gin.Context) {
	co, okC := h.ownedCourse(c, "update")
	if !okC {
		return
	}
	var in domain.CoursePatch
	if !bind(c, &in) {
		return
	}
	out, err := h.Svc.UpdateCourse(c.Request.Context(), co, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Tags courses
// @Security BearerAuth
// @Produce json
// @Param id path string true "course id"
// @Success 200 {object} map[string]any
// @Router /api/v1/courses/{id} [delete]
func (h *Handler) DeleteCourse(c *gin.Context) {
	co, okC := h.ownedCourse(c, "delete")
	if !okC {
		return
	}
	if err := h.Svc.DeleteCourse(c.Request.Context(), co); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
