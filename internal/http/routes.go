package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tazhibayda/bootcamp-service/docs"
	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/metrics"
	"github.com/tazhibayda/bootcamp-service/internal/ratelimit"
)

const serviceName = "bootcamp-service"

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(h.Opts.TrustedProxies); err != nil {
		h.Log.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", h.Opts.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(Recovery(h.Log))
	r.Use(RequestID())
	r.Use(Tracing(serviceName))
	r.Use(Logger(h.Log))
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(h.Opts.CORSOrigins)))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(ErrorHandler(h.Log))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if h.Opts.UploadPath != "" {
		r.Static("/uploads", h.Opts.UploadPath)
	}

	protect := Protect(h.Tokens, h.Store)
	publishers := Authorize(domain.RolePublisher, domain.RoleAdmin)
	reviewers := Authorize(domain.RoleUser, domain.RoleAdmin)

	api := r.Group("/api/v1", ratelimit.Middleware(h.Limiter, ratelimit.General, h.Log), Sanitize())

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/logout", h.Logout)
		auth.GET("/me", protect, h.Me)
		auth.PUT("/updatedetails", protect, h.UpdateDetails)
		auth.PUT("/updatepassword", protect, h.UpdatePassword)
		auth.POST("/forgetpassword", ratelimit.Middleware(h.Limiter, ratelimit.ForgotPassword, h.Log), h.ForgotPassword)
		auth.PUT("/resetpassword/:resetToken", h.ResetPassword)
	}

	bootcamps := api.Group("/bootcamps")
	{
		bootcamps.GET("", h.ListBootcamps)
		bootcamps.POST("", protect, publishers, h.CreateBootcamp)
		bootcamps.GET("/radius/:zipcode/:distance", h.BootcampsInRadius)
		bootcamps.GET("/:id", h.GetBootcamp)
		bootcamps.PUT("/:id", protect, publishers, h.UpdateBootcamp)
		bootcamps.DELETE("/:id", protect, publishers, h.DeleteBootcamp)
		bootcamps.PUT("/:id/photo", protect, publishers, h.UploadPhoto)

		bootcamps.GET("/:id/courses", h.ListBootcampCourses)
		bootcamps.POST("/:id/courses", protect, publishers, h.AddCourse)
		bootcamps.GET("/:id/reviews", h.ListBootcampReviews)
		bootcamps.POST("/:id/reviews", protect, reviewers, h.AddReview)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", h.ListCourses)
		courses.GET("/:id", h.GetCourse)
		courses.PUT("/:id", protect, publishers, h.UpdateCourse)
		courses.DELETE("/:id", protect, publishers, h.DeleteCourse)
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("", h.ListReviews)
		reviews.GET("/:id", h.GetReview)
		reviews.PUT("/:id", protect, reviewers, h.UpdateReview)
		reviews.DELETE("/:id", protect, reviewers, h.DeleteReview)
	}

	users := api.Group("/users", protect, Authorize(domain.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	return r
}
