package v1

import (
	"io"
	"net/http"

	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/navigation"
	"iisa-recruitment-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// NeighborsEvent is the SSE event name for navigation updates.
const NeighborsEvent = "neighbors"

type NavigationHandler struct {
	registry *navigation.Registry
}

type SetCurrentRequest struct {
	// Empty clears the pointer
	ID string `json:"id"`
}

func NewNavigationHandler(r *gin.RouterGroup, deps RouterDeps) {
	handler := &NavigationHandler{registry: deps.Registry}

	nav := r.Group("/navigation")
	{
		nav.GET("/neighbors", handler.Neighbors)
		nav.PUT("/current", handler.SetCurrent)
		nav.GET("/stream", handler.Stream)
	}
}

func (h *NavigationHandler) index(c *gin.Context) *navigation.Index {
	return h.registry.For(c.GetString(string(domain.KeyAdminID)))
}

// Neighbors godoc
// @Summary      Previous/next candidate around the current one
// @Tags         navigation
// @Produce      json
// @Success      200  {object}  response.Response{data=navigation.Neighbors}
// @Router       /navigation/neighbors [get]
// @Security     BearerAuth
func (h *NavigationHandler) Neighbors(c *gin.Context) {
	response.Success(c, http.StatusOK, "Neighbors", h.index(c).Neighbors())
}

// SetCurrent godoc
// @Summary      Move the navigation pointer
// @Tags         navigation
// @Accept       json
// @Produce      json
// @Param        body  body      SetCurrentRequest  true  "Current candidate"
// @Success      200   {object}  response.Response{data=navigation.Neighbors}
// @Router       /navigation/current [put]
// @Security     BearerAuth
func (h *NavigationHandler) SetCurrent(c *gin.Context) {
	var req SetCurrentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	idx := h.index(c)
	idx.SetCurrentID(req.ID)
	response.Success(c, http.StatusOK, "Neighbors", idx.Neighbors())
}

// Stream godoc
// @Summary      Live navigation updates
// @Description  Server-sent events; one "neighbors" event now and after every list or pointer change.
// @Tags         navigation
// @Produce      text/event-stream
// @Success      200  {object}  navigation.Neighbors
// @Router       /navigation/stream [get]
// @Security     BearerAuth
func (h *NavigationHandler) Stream(c *gin.Context) {
	updates, cancel := h.index(c).Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case n, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent(NeighborsEvent, n)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
