package logger

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LogError logs err with request context (when ctx is a *gin.Context) and
// any extra metadata. Stack traces are attached outside production.
func LogError(ctx context.Context, err error, message string, metadata map[string]interface{}) {
	fields := errorFields(ctx, err, metadata)
	if !isProduction() {
		fields = append(fields, zap.String("stack_trace", getStackTrace(3)))
	}

	GetLogger().Desugar().Error(message, fields...)
}

// LogHTTPError logs a failed request together with the status it is about to
// be answered with. Client errors (4xx) go to Warn without a stack trace.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	metadata := map[string]interface{}{
		"status_code": statusCode,
		"headers":     filterSensitiveHeaders(c.Request.Header),
	}
	if c.Request.UserAgent() != "" {
		metadata["user_agent"] = c.Request.UserAgent()
	}

	if statusCode < http.StatusInternalServerError {
		GetLogger().Desugar().Warn(message, errorFields(c, err, metadata)...)
		return
	}
	LogError(c, err, message, metadata)
}

func errorFields(ctx context.Context, err error, metadata map[string]interface{}) []zap.Field {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("error_type", getErrorType(err)),
	}

	if ginCtx, ok := ctx.(*gin.Context); ok && ginCtx.Request != nil {
		if requestID := ginCtx.GetString("request_id"); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		fields = append(fields,
			zap.String("path", ginCtx.Request.URL.Path),
			zap.String("method", ginCtx.Request.Method),
			zap.String("ip_address", ginCtx.ClientIP()),
		)
	}

	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}
	return fields
}

func getErrorType(err error) string {
	if err == nil {
		return ""
	}
	name := fmt.Sprintf("%T", err)
	if idx := strings.LastIndex(name, "."); idx != -1 {
		return name[idx+1:]
	}
	return name
}

func getStackTrace(skip int) string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			builder.WriteString(frame.Function)
			builder.WriteString("\n\t")
			builder.WriteString(frame.File)
			builder.WriteString(":")
			builder.WriteString(strconv.Itoa(frame.Line))
			builder.WriteString("\n")
		}
		if !more {
			break
		}
	}

	return builder.String()
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string)

	for name, values := range headers {
		lower := strings.ToLower(name)
		if strings.EqualFold(name, "Authorization") ||
			strings.EqualFold(name, "Cookie") ||
			strings.Contains(lower, "token") ||
			strings.Contains(lower, "key") ||
			strings.Contains(lower, "secret") {
			filtered[name] = "[REDACTED]"
			continue
		}

		if len(values) > 0 {
			filtered[name] = values[0]
		}
	}

	return filtered
}
