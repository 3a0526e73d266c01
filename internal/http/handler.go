package http

import (
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	"github.com/tazhibayda/bootcamp-service/internal/mail"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
	"github.com/tazhibayda/bootcamp-service/internal/ratelimit"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/security"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

// Options are the HTTP-facing settings taken from config.
type Options struct {
	CookieExpireDays int
	SecureCookie     bool
	UploadPath       string
	MaxUpload        int64
	CORSOrigins      []string
	// TrustedProxies may set X-Forwarded-For; empty means the socket peer is
	// the client.
	TrustedProxies []string
}

type Handler struct {
	Store   *repo.Store
	Svc     *service.Service
	Tokens  *security.Tokens
	Geo     geocode.Geocoder
	Mail    mail.Sender
	Events  queue.Publisher
	Limiter ratelimit.Counter
	Log     *zap.Logger
	Clock   clock.Clock
	Opts    Options
}

func NewHandler(
	store *repo.Store,
	svc *service.Service,
	tokens *security.Tokens,
	geo geocode.Geocoder,
	sender mail.Sender,
	events queue.Publisher,
	limiter ratelimit.Counter,
	log *zap.Logger,
	opts Options,
) *Handler {
	if events == nil {
		events = queue.NewNoop()
	}
	if limiter == nil {
		limiter = ratelimit.NewMemory(nil)
	}
	if sender == nil {
		sender = mail.LogSender{Log: log}
	}
	return &Handler{
		Store:   store,
		Svc:     svc,
		Tokens:  tokens,
		Geo:     geo,
		Mail:    sender,
		Events:  events,
		Limiter: limiter,
		Log:     log,
		Clock:   tokens.Clock,
		Opts:    opts,
	}
}

// fail hands err to ErrorHandler.
func fail(c *gin.Context, err error) { _ = c.Error(err) }

// bind decodes the JSON body into v; a malformed body is a validation error.
func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		fail(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func list(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count, "data": data})
}

// Healthz godoc
// @Summary Liveness and store connectivity
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.Store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
