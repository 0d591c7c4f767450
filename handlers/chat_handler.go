package handlers

import (
	"net/http"

	apperrors "github.com/NomadCrew/nomad-feedback-backend/errors"
	"github.com/NomadCrew/nomad-feedback-backend/types"
	"github.com/gin-gonic/gin"
)

// ChatHandler forwards single messages to the configured text-generation provider.
type ChatHandler struct {
	chatService ChatServiceInterface
}

func NewChatHandler(chatService ChatServiceInterface) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat godoc
// @Summary      Chat with the assistant
// @Description  Sends one message as a fresh conversation and returns the first text of the reply, or "No response"
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        body  body      types.ChatRequest  true  "Message"
// @Success      200   {object}  types.ChatResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      500   {object}  types.ErrorResponse
// @Router       /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if !bindJSONOrError(c, &req) {
		return
	}

	message, ok := req.Text()
	if !ok {
		_ = c.Error(apperrors.ValidationFailed("Message must be a string", ""))
		return
	}

	reply, err := h.chatService.Reply(c.Request.Context(), message)
	if err != nil {
		// The provider's reason is logged by the error handler, not returned.
		_ = c.Error(apperrors.NewRemoteProviderError(err, "Internal Server Error"))
		return
	}

	c.JSON(http.StatusOK, types.ChatResponse{Response: reply})
}
