package v1

import (
	"net/http"

	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/navigation"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CandidateHandler struct {
	candidateUC domain.CandidateUsecase
	dashboardUC domain.DashboardUsecase
	registry    *navigation.Registry
}

// CandidateDetails is a candidate plus its place in the dashboard list.
type CandidateDetails struct {
	Candidate *domain.Candidate    `json:"candidate"`
	Neighbors navigation.Neighbors `json:"neighbors"`
}

func NewCandidateHandler(r *gin.RouterGroup, deps RouterDeps) {
	handler := &CandidateHandler{
		candidateUC: deps.CandidateUC,
		dashboardUC: deps.DashboardUC,
		registry:    deps.Registry,
	}

	candidates := r.Group("/candidates")
	{
		candidates.GET("", handler.List)
		candidates.POST("", handler.Create)
		candidates.GET("/export", handler.Export)
		candidates.GET("/:id", handler.Get)
		candidates.GET("/:id/edit", handler.GetForEdit)
		candidates.PUT("/:id", handler.Update)
		candidates.DELETE("/:id", handler.Delete)
	}
}

// List godoc
// @Summary      List candidates
// @Description  Newest registrations first. q matches name, email, phone, city, hobbies and reason.
// @Tags         candidates
// @Produce      json
// @Param        q         query  string  false  "Free-text filter"
// @Param        page      query  int     false  "Page (default 1)"
// @Param        pageSize  query  int     false  "Page size (default 20, max 100)"
// @Success      200  {object}  response.Response{data=domain.PaginatedResult[domain.Candidate]}
// @Router       /candidates [get]
// @Security     BearerAuth
func (h *CandidateHandler) List(c *gin.Context) {
	var filter domain.CandidateFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	result, err := h.candidateUC.List(c, filter)
	if err != nil {
		c.Error(err)
		return
	}

	h.reloadIndex(c)
	response.Success(c, http.StatusOK, "Candidates", result)
}

// Create godoc
// @Summary      Add a candidate from the dashboard
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        profileImage  formData  file  false  "Profile photo (optional from the dashboard)"
// @Success      201  {object}  response.Response{data=domain.Candidate}
// @Failure      400  {object}  response.Response
// @Router       /candidates [post]
// @Security     BearerAuth
func (h *CandidateHandler) Create(c *gin.Context) {
	in, img, err := bindCandidate(c)
	if err != nil {
		c.Error(err)
		return
	}

	candidate, err := h.candidateUC.Create(c, in, img)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Candidate created", candidate)
}

// Export godoc
// @Summary      Export all candidates to Excel
// @Tags         candidates
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200  {file}  file
// @Router       /candidates/export [get]
// @Security     BearerAuth
func (h *CandidateHandler) Export(c *gin.Context) {
	data, filename, err := h.dashboardUC.ExportCandidates(c)
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Get godoc
// @Summary      Candidate details
// @Description  Also moves the caller's navigation pointer to this candidate.
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=CandidateDetails}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [get]
// @Security     BearerAuth
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidateUC.Get(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	idx := h.registry.For(c.GetString(string(domain.KeyAdminID)))
	if len(idx.IDs()) == 0 {
		h.reloadIndex(c)
	}
	idx.SetCurrentID(candidate.ID)

	response.Success(c, http.StatusOK, "Candidate", CandidateDetails{
		Candidate: candidate,
		Neighbors: idx.Neighbors(),
	})
}

// GetForEdit godoc
// @Summary      Candidate with its edit window state
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response{data=domain.EditView}
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id}/edit [get]
// @Security     BearerAuth
func (h *CandidateHandler) GetForEdit(c *gin.Context) {
	view, err := h.candidateUC.GetForEdit(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate", view)
}

// Update godoc
// @Summary      Edit a candidate
// @Description  Only changed fields are written. Refused once the edit window has closed.
// @Tags         candidates
// @Accept       multipart/form-data
// @Produce      json
// @Param        id            path      string  true   "Candidate ID"
// @Param        profileImage  formData  file    false  "Replacement photo"
// @Success      200  {object}  response.Response{data=domain.UpdateResult}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [put]
// @Security     BearerAuth
func (h *CandidateHandler) Update(c *gin.Context) {
	in, img, err := bindCandidate(c)
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.candidateUC.Update(c, c.Param("id"), in, img)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, updateMessage(result), result)
}

// Delete godoc
// @Summary      Delete a candidate
// @Tags         candidates
// @Produce      json
// @Param        id   path      string  true  "Candidate ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /candidates/{id} [delete]
// @Security     BearerAuth
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateUC.Delete(c, c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate deleted", nil)
}

// reloadIndex refreshes the caller's navigation list in display order.
func (h *CandidateHandler) reloadIndex(c *gin.Context) {
	ids, err := h.candidateUC.ListIDs(c)
	if err != nil {
		logger.Log.Warn("Failed to load candidate ids for navigation",
			"request_id", c.GetString(response.RequestIDKey),
			"error", err)
		return
	}
	h.registry.For(c.GetString(string(domain.KeyAdminID))).SetList(ids)
}
