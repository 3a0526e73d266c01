package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/log"
	"github.com/tazhibayda/bootcamp-service/internal/mail"
	"github.com/tazhibayda/bootcamp-service/internal/metrics"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
	"github.com/tazhibayda/bootcamp-service/internal/security"
)

const tokenCookie = "token"

type tokenResp struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// sendToken signs a session token for u and returns it in the body and,
// when cookies are enabled, an httpOnly cookie.
func (h *Handler) sendToken(c *gin.Context, u *domain.User, status int) {
	tok, err := h.Tokens.Sign(u.ID.Hex())
	if err != nil {
		fail(c, apperr.Internal(err, "sign token"))
		return
	}
	if h.Opts.CookieExpireDays > 0 {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     tokenCookie,
			Value:    tok,
			Path:     "/",
			Expires:  h.Clock.Now().Add(time.Duration(h.Opts.CookieExpireDays) * 24 * time.Hour),
			HttpOnly: true,
			Secure:   h.Opts.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	c.JSON(status, tokenResp{Success: true, Token: tok})
}

// Register godoc
// @Summary Register user
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body domain.RegisterInput true "register"
// @Success 200 {object} tokenResp
// @Failure 400 {object} map[string]any
// @Router /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var in domain.RegisterInput
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

	if err := h.Events.Publish(c.Request.Context(), queue.KeyUserRegistered,
		queue.UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)},
		requestID(c)); err != nil {
		h.Log.Warn("publish user.registered", zap.Error(err))
	}
	h.sendToken(c, u, http.StatusOK)
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body domain.LoginInput true "login"
// @Success 200 {object} tokenResp
// @Failure 400 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var in domain.LoginInput
	if !bind(c, &in) {
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		fail(c, apperr.Validation("Please provide an email and password"))
		return
	}
	u, err := h.Store.FindUserWithPassword(c.Request.Context(), in.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			fail(c, apperr.Unauthorized("Invalid credentials"))
			return
		}
		fail(c, err)
		return
	}
	if !security.CheckPassword(u.Password, in.Password) {
		h.Log.Info("login failed", log.Email("email_hash", u.Email))
		fail(c, apperr.Unauthorized("Invalid credentials"))
		return
	}
	h.sendToken(c, u, http.StatusOK)
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/auth/logout [get]
func (h *Handler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     tokenCookie,
		Value:    "none",
		Path:     "/",
		Expires:  h.Clock.Now().Add(10 * time.Second),
		HttpOnly: true,
		Secure:   h.Opts.SecureCookie,
	})
	ok(c, http.StatusOK, gin.H{})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 401 {object} map[string]any
// @Router /api/v1/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	ok(c, http.StatusOK, principal(c))
}

// UpdateDetails godoc
// @Summary Update name and email of the current user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.DetailsPatch true "details"
// @Success 200 {object} map[string]any
// @Router /api/v1/auth/updatedetails [put]
func (h *Handler) UpdateDetails(c *gin.Context) {
	var in domain.DetailsPatch
	if !bind(c, &in) {
		return
	}
	if err := domain.Validate(in); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Store.UpdateUser(c.Request.Context(), principal(c).ID, in.Set())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdatePassword godoc
// @Summary Change the current user's password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.PasswordChange true "passwords"
// @Success 200 {object} tokenResp
// @Failure 401 {object} map[string]any
// @Router /api/v1/auth/updatepassword [put]
func (h *Handler) UpdatePassword(c *gin.Context) {
	var in domain.PasswordChange
	if !bind(c, &in) {
		return
	}
	if err := domain.Validate(in); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	u, err := h.Store.FindUserByIDWithPassword(ctx, principal(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	if !security.CheckPassword(u.Password, in.CurrentPassword) {
		fail(c, apperr.Unauthorized("Password is incorrect"))
		return
	}
	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		fail(c, apperr.Internal(err, "hash password"))
		return
	}
	if err := h.Store.SetPassword(ctx, u.ID, hash); err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, u, http.StatusOK)
}

func resetURL(c *gin.Context, token string) string {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/v1/auth/resetpassword/%s", scheme, c.Request.Host, token)
}

// ForgotPassword godoc
// @Summary Email a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body domain.ForgotPassword true "email"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/v1/auth/forgetpassword [post]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var in domain.ForgotPassword
	if !bind(c, &in) {
		return
	}
	if err := domain.Validate(in); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	u, err := h.Store.FindUserByEmail(ctx, in.Email)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			fail(c, apperr.NotFound("There is no user with that email"))
			return
		}
		fail(c, err)
		return
	}

	plain, hash, err := security.NewResetToken()
	if err != nil {
		fail(c, apperr.Internal(err, "reset token"))
		return
	}
	if err := h.Store.SetResetToken(ctx, u.ID, hash, h.Clock.Now().Add(security.ResetTokenTTL)); err != nil {
		fail(c, err)
		return
	}

	msg := mail.Message{
		To:      u.Email,
		Subject: "Password reset token",
		Text: "You are receiving this email because you (or someone else) has requested the reset of a password. " +
			"Please make a PUT request to: \n\n " + resetURL(c, plain),
	}
	err = h.Mail.Send(ctx, msg)
	metrics.MailTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		h.Log.Error("reset mail failed", log.Email("email_hash", u.Email), zap.Error(err))
		if cerr := h.Store.ClearResetToken(ctx, u.ID); cerr != nil {
			h.Log.Error("clear reset token", zap.Error(cerr))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Email could not be sent"})
		return
	}
	ok(c, http.StatusOK, "Email sent")
}

// ResetPassword godoc
// @Summary Set a new password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param resetToken path string true "token from the reset email"
// @Param payload body domain.PasswordReset true "new password"
// @Success 200 {object} tokenResp
// @Failure 400 {object} map[string]any
// @Router /api/v1/auth/resetpassword/{resetToken} [put]
func (h *Handler) ResetPassword(c *gin.Context) {
	var in domain.PasswordReset
	if !bind(c, &in) {
		return
	}
	if err := domain.Validate(in); err != nil {
		fail(c, err)
		return
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		fail(c, apperr.Internal(err, "hash password"))
		return
	}
	tokenHash := security.HashResetToken(c.Param("resetToken"))
	u, err := h.Store.ResetPassword(c.Request.Context(), tokenHash, hash, h.Clock.Now())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			err = apperr.Validation("Invalid token")
		}
		fail(c, err)
		return
	}
	h.sendToken(c, u, http.StatusOK)
}
