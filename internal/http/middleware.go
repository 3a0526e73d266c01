package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/log"
	"github.com/tazhibayda/bootcamp-service/internal/security"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "X-Request-ID"
	principalKey    = "principal"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(service.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func requestID(c *gin.Context) string { return c.GetString(requestIDKey) }

// Logger logs one line per request.
func Logger(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("req_id", requestID(c)),
		}
		lg := log.WithDD(c.Request.Context(), l)
		switch s := c.Writer.Status(); {
		case s >= 500:
			lg.Error("request", fields...)
		case s >= 400:
			lg.Warn("request", fields...)
		default:
			lg.Info("request", fields...)
		}
	}
}

// ErrorHandler renders the last error attached to the context as
// {success:false, error}. Errors that are not apperr values are logged and
// rendered as a generic 500.
func ErrorHandler(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, msg := http.StatusInternalServerError, "Server Error"
		if ae, ok := apperr.As(err); ok && ae.Kind != apperr.KindInternal {
			status, msg = ae.Status(), ae.Message
		} else {
			log.WithDD(c.Request.Context(), l).Error("unhandled error",
				zap.String("req_id", requestID(c)),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
		}
		c.JSON(status, gin.H{"success": false, "error": msg})
	}
}

// Recovery turns a panic into the generic 500 response.
func Recovery(l *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		l.Error("panic", zap.Any("panic", rec), zap.String("req_id", requestID(c)))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Server Error"})
	})
}

// Sanitize drops query keys that address store operators ("$where", "a.$gt")
// before any handler sees them.
func Sanitize() gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		changed := false
		for k := range q {
			if strings.Contains(k, "$") {
				q.Del(k)
				changed = true
			}
		}
		if changed {
			c.Request.URL.RawQuery = q.Encode()
		}
		c.Next()
	}
}

// UserFinder resolves a token subject to a user.
type UserFinder interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

var errNotAuthorized = apperr.Unauthorized("Not authorized to access this route")

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Protect requires a valid bearer token naming an existing user and stores
// that user as the request principal.
func Protect(tokens *security.Tokens, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
			abort(c, errNotAuthorized)
			return
		}
		raw := strings.TrimSpace(h[7:])
		if raw == "" {
			abort(c, errNotAuthorized)
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			abort(c, errNotAuthorized)
			return
		}
		uid, err := primitive.ObjectIDFromHex(claims.ID)
		if err != nil {
			abort(c, errNotAuthorized)
			return
		}
		u, err := users.FindUserByID(c.Request.Context(), uid)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				abort(c, errNotAuthorized)
				return
			}
			abort(c, err)
			return
		}
		c.Set(principalKey, u)
		c.Next()
	}
}

// Authorize admits principals whose role is one of roles.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := principal(c)
		if u == nil {
			abort(c, errNotAuthorized)
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		abort(c, apperr.Forbidden("%s role is not authorized to access this route", u.Role))
	}
}

func principal(c *gin.Context) *domain.User {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

// canModify reports whether u owns the resource or is an admin.
func canModify(u *domain.User, owner primitive.ObjectID) bool {
	return u != nil && (u.Role == domain.RoleAdmin || u.ID == owner)
}

func forbidOwner(u *domain.User, what string, id primitive.ObjectID) error {
	return apperr.Forbidden("User %s is not authorized to %s %s", u.ID.Hex(), what, id.Hex())
}
