package controller

import (
	"io"
	"net/http"
	"time"

	"github.com/Scalingo/github-profile-mcp/model"
	"github.com/gin-gonic/gin"
)

// APIController exposes the tool facade over HTTP
type APIController interface {
	Health(c *gin.Context)
	ListTools(c *gin.Context)
	CallTool(c *gin.Context)
}

type apiController struct {
	toolController ToolController
}

func NewAPIController(toolController ToolController) APIController {
	return apiController{
		toolController: toolController,
	}
}

func (s apiController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s apiController) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, s.toolController.Tools())
}

// CallTool reads the argument object from the JSON body, an empty body means no arguments
func (s apiController) CallTool(c *gin.Context) {
	args := map[string]any{}

	if err := c.ShouldBindJSON(&args); err != nil && err != io.EOF {
		envelope := model.NewFailureEnvelope(model.InvalidArgument("request body must be a JSON object: %v", err), time.Now())
		c.JSON(http.StatusBadRequest, envelope)
		return
	}

	envelope := s.toolController.Call(c.Request.Context(), c.Param("name"), args)
	c.JSON(StatusCode(envelope), envelope)
}

// StatusCode maps an envelope to the HTTP status of the mirror
func StatusCode(envelope model.Envelope) int {
	if envelope.Success || envelope.Error == nil {
		return http.StatusOK
	}

	switch model.ErrorKind(envelope.Error.Code) {
	case model.KindInvalidArgument:
		return http.StatusBadRequest
	case model.KindAuthentication:
		return http.StatusUnauthorized
	case model.KindNotFound, model.KindUnknownTool:
		return http.StatusNotFound
	case model.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
