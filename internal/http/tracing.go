package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/ext"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// Tracing starts a span per request so store spans and log lines share a trace.
func Tracing(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		span, ctx := tracer.StartSpanFromContext(c.Request.Context(), "http.request",
			tracer.ServiceName(service),
			tracer.SpanType(ext.SpanTypeWeb),
			tracer.Tag(ext.HTTPMethod, c.Request.Method),
			tracer.Tag(ext.HTTPURL, c.Request.URL.Path),
		)
		defer span.Finish()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		span.SetTag(ext.ResourceName, c.Request.Method+" "+route)
		span.SetTag(ext.HTTPCode, strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.SetTag(ext.Error, c.Errors.Last().Err)
		}
	}
}
