package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

// UploadPhoto godoc
// @Summary Upload a bootcamp photo
// @Tags bootcamps
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "bootcamp id"
// @Param file formData file true "image"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/v1/bootcamps/{id}/photo [put]
func (h *Handler) UploadPhoto(c *gin.Context) {
	b, okB := h.ownedBootcamp(c, "update")
	if !okB {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, apperr.Upload("Please upload a file"))
		return
	}
	if fh.Size > h.Opts.MaxUpload {
		fail(c, apperr.Upload("Please upload an image less than %d bytes", h.Opts.MaxUpload))
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, apperr.Internal(err, "open upload"))
		return
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		fail(c, apperr.Internal(err, "sniff upload"))
		return
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		fail(c, apperr.Upload("Please upload an image file"))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		fail(c, apperr.Internal(err, "rewind upload"))
		return
	}

	// extension follows the sniffed type, not the client's filename
	name := fmt.Sprintf("photo_%s%s", b.ID.Hex(), mt.Extension())
	if err := save(f, filepath.Join(h.Opts.UploadPath, name)); err != nil {
		fail(c, apperr.Internal(err, "Problem with file upload"))
		return
	}

	if _, err := h.Svc.SetPhoto(c.Request.Context(), b.ID, name); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, name)
}

func save(src io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}
