package v1

import (
	"net/http"

	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardUC domain.DashboardUsecase
}

func NewDashboardHandler(r *gin.RouterGroup, deps RouterDeps) {
	handler := &DashboardHandler{dashboardUC: deps.DashboardUC}

	r.GET("/dashboard/stats", handler.Stats)
	r.GET("/dashboard/map", handler.Map)
	r.GET("/geocode", handler.Geocode)
}

// Stats godoc
// @Summary      Dashboard charts
// @Description  Age buckets, top cities and visit-to-registration conversion.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DashboardStats}
// @Router       /dashboard/stats [get]
// @Security     BearerAuth
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardUC.Stats(c)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Dashboard stats", stats)
}

// Map godoc
// @Summary      Candidate cities on the map
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.MapMarker}
// @Router       /dashboard/map [get]
// @Security     BearerAuth
func (h *DashboardHandler) Map(c *gin.Context) {
	markers, err := h.dashboardUC.MapMarkers(c)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Map markers", markers)
}

// Geocode godoc
// @Summary      Resolve an address to coordinates
// @Tags         dashboard
// @Produce      json
// @Param        address  query     string  true  "Free-text address"
// @Success      200      {object}  response.Response{data=domain.LatLng}
// @Failure      400      {object}  response.Response
// @Router       /geocode [get]
// @Security     BearerAuth
func (h *DashboardHandler) Geocode(c *gin.Context) {
	pos, err := h.dashboardUC.Geocode(c, c.Query("address"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Coordinates", pos)
}
