package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NomadCrew/nomad-feedback-backend/errors"
	"github.com/NomadCrew/nomad-feedback-backend/logger"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error pushed with c.Error as a JSON body of
// shape types.ErrorResponse. Details of 5xx errors are logged, never sent.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		last := c.Errors.Last()
		err := last.Err

		var appError *errors.AppError
		if stderrors.As(err, &appError) {
			statusCode := appError.GetHTTPStatus()
			logger.LogHTTPError(c, err, statusCode, fmt.Sprintf("%s error", appError.Type))

			response := types.ErrorResponse{
				Error: appError.Message,
				Type:  string(appError.Type),
				Code:  strconv.Itoa(statusCode),
			}
			if appError.Detail != "" && !appError.IsInternal() {
				response.Details = appError.Detail
			}

			c.JSON(statusCode, response)
			return
		}

		// Handle Gin binding errors
		if last.Type == gin.ErrorTypeBind {
			logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")

			response := types.ErrorResponse{
				Error: "Failed to bind request",
				Type:  string(errors.ValidationError),
				Code:  "400",
			}
			if gin.IsDebugging() {
				response.Details = err.Error()
			}

			c.JSON(http.StatusBadRequest, response)
			return
		}

		// Handle unknown errors
		logger.LogHTTPError(c, err, http.StatusInternalServerError, "Unexpected server error")

		c.JSON(http.StatusInternalServerError, types.ErrorResponse{
			Error: "Internal Server Error",
			Type:  string(errors.ServerError),
			Code:  "500",
		})
	}
}
