package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/NomadCrew/nomad-feedback-backend/errors"
	"github.com/NomadCrew/nomad-feedback-backend/internal/store"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
)

const (
	msgAllFieldsRequired = "All fields are required"
	msgFeedbackNotFound  = "Feedback not found"
	msgInvalidBody       = "Invalid request body"
	msgReadFailed        = "Failed to read feedback data"
	msgSaveFailed        = "Failed to save feedback"
	msgUpdateFailed      = "Failed to update feedback"
	msgDeleteFailed      = "Failed to delete feedback"
)

// FeedbackHandler handles the feedback collection endpoints.
type FeedbackHandler struct {
	feedbackService FeedbackServiceInterface
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(feedbackService FeedbackServiceInterface) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// ListFeedback godoc
// @Summary      List feedback
// @Description  Returns every feedback entry in creation order
// @Tags         feedback
// @Produce      json
// @Success      200  {array}   types.Feedback
// @Failure      500  {object}  types.ErrorResponse
// @Router       /feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	items, err := h.feedbackService.ListFeedback(c.Request.Context())
	if err != nil {
		_ = c.Error(mapStoreError(err, "", msgReadFailed))
		return
	}
	if items == nil {
		items = []types.Feedback{}
	}

	c.JSON(http.StatusOK, items)
}

// CreateFeedback godoc
// @Summary      Submit feedback
// @Description  Stores a new entry with status "pending"; id and createdAt are assigned by the server
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        body  body      types.FeedbackCreate  true  "Feedback payload"
// @Success      201   {object}  types.Feedback
// @Failure      400   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /feedback [post]
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req types.FeedbackCreate
	if !bindJSONOrError(c, &req) {
		return
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		_ = c.Error(apperrors.ValidationFailed(msgAllFieldsRequired, "missing: "+strings.Join(missing, ", ")))
		return
	}
	if !req.Type.IsValid() {
		_ = c.Error(apperrors.ValidationFailed("Invalid feedback type", "type must be one of: general, bug, feature, complaint"))
		return
	}

	created, err := h.feedbackService.CreateFeedback(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(mapStoreError(err, "", msgSaveFailed))
		return
	}

	c.JSON(http.StatusCreated, created)
}

// UpdateFeedbackStatus godoc
// @Summary      Update feedback status
// @Description  Sets the review status of one entry; every other field is left unchanged
// @Tags         feedback
// @Accept       json
// @Produce      json
// @Param        id    path      string                      true  "Feedback ID"
// @Param        body  body      types.FeedbackStatusUpdate  true  "New status"
// @Success      200   {object}  types.Feedback
// @Failure      400   {object}  types.ErrorResponse
// @Failure      404   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /feedback/{id} [put]
func (h *FeedbackHandler) UpdateFeedbackStatus(c *gin.Context) {
	id := c.Param("id")

	var req types.FeedbackStatusUpdate
	if !bindJSONOrError(c, &req) {
		return
	}

	// the store checks the id before the status, so an unknown id is a 404
	// whatever the body says
	updated, err := h.feedbackService.UpdateFeedbackStatus(c.Request.Context(), id, req.Status)
	switch {
	case errors.Is(err, store.ErrInvalidStatus) && strings.TrimSpace(string(req.Status)) == "":
		_ = c.Error(apperrors.ValidationFailed("Status is required", "missing: status"))
		return
	case errors.Is(err, store.ErrInvalidStatus):
		_ = c.Error(apperrors.ValidationFailed("Invalid status", "status must be one of: pending, reviewed, resolved"))
		return
	case err != nil:
		_ = c.Error(mapStoreError(err, id, msgUpdateFailed))
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteFeedback godoc
// @Summary      Delete feedback
// @Description  Removes one entry
// @Tags         feedback
// @Produce      json
// @Param        id   path      string  true  "Feedback ID"
// @Success      200  {object}  types.SuccessResponse
// @Failure      404  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /feedback/{id} [delete]
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	id := c.Param("id")

	if err := h.feedbackService.DeleteFeedback(c.Request.Context(), id); err != nil {
		_ = c.Error(mapStoreError(err, id, msgDeleteFailed))
		return
	}

	c.JSON(http.StatusOK, types.SuccessResponse{Success: true})
}

// mapStoreError turns store sentinels into AppErrors. Anything else is a
// storage failure answered with failureMessage.
func mapStoreError(err error, id string, failureMessage string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFound(msgFeedbackNotFound, id)
	case errors.Is(err, store.ErrValidation):
		return apperrors.ValidationFailed(msgAllFieldsRequired, err.Error())
	default:
		return apperrors.NewStorageError(err, failureMessage)
	}
}

// bindJSONOrError binds the request body into obj. An empty body binds as an
// empty object so field checks report what is missing.
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(apperrors.ValidationFailed(msgInvalidBody, err.Error()))
		return false
	}
	return true
}
