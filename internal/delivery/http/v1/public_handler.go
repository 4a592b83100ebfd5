package v1

import (
	"net/http"
	"time"

	"iisa-recruitment-backend/internal/delivery/http/middleware"
	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/reedit"
	"iisa-recruitment-backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	candidateUC  domain.CandidateUsecase
	dashboardUC  domain.DashboardUsecase
	window       domain.EditWindow
	clock        domain.Clock
	cookieSecure bool
}

// RegistrationResponse is what the landing page keeps after submitting.
type RegistrationResponse struct {
	ID           string    `json:"id"`
	EditDeadline time.Time `json:"editDeadline"`
	EditToken    string    `json:"editToken,omitempty"`
}

func NewPublicHandler(r *gin.RouterGroup, deps RouterDeps, submitLimit gin.HandlerFunc) {
	handler := &PublicHandler{
		candidateUC:  deps.CandidateUC,
		dashboardUC:  deps.DashboardUC,
		window:       deps.Window,
		clock:        deps.Clock,
		cookieSecure: deps.Config.CookieSecure,
	}

	public := r.Group("/public")
	{
		public.POST("/visits", handler.TrackVisit)
		public.POST("/candidates", submitLimit, handler.Register)
		public.GET("/re-edit", handler.ReEditStatus)

		self := public.Group("/candidates/:id",
			middleware.CSRFMiddleware(deps.Config.CookieSecure, reedit.KeyEditToken),
			middleware.EditTicketMiddleware(deps.Tokens))
		self.GET("", handler.GetOwn)
		self.PUT("", submitLimit, handler.UpdateOwn)
	}
}

// TrackVisit godoc
// @Summary      Count a landing page visit
// @Tags         public
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /public/visits [post]
func (h *PublicHandler) TrackVisit(c *gin.Context) {
	if err := h.dashboardUC.TrackVisit(c); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Visit recorded", nil)
}

// Register godoc
// @Summary      Register as a candidate
// @Description  Multipart form with the candidate fields and a profileImage file (PNG/JPEG, max 5 MB).
// @Tags         public
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName                formData  string  true   "Full name"
// @Param        email                   formData  string  true   "Email"
// @Param        phone                   formData  string  true   "Israeli mobile number"
// @Param        age                     formData  int     true   "Age (18-100)"
// @Param        city                    formData  string  true   "City"
// @Param        hobbies                 formData  string  false  "Hobbies"
// @Param        perfectCandidateReason  formData  string  true   "Why you are the perfect candidate"
// @Param        profileImage            formData  file    true   "Profile photo"
// @Success      201  {object}  response.Response{data=RegistrationResponse}
// @Failure      400  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /public/candidates [post]
func (h *PublicHandler) Register(c *gin.Context) {
	in, img, err := bindCandidate(c)
	if err != nil {
		c.Error(err)
		return
	}

	reg, err := h.candidateUC.Register(c, in, img)
	if err != nil {
		c.Error(err)
		return
	}

	registeredAt := h.clock.Now()
	if reg.Candidate.RegistrationDate != nil {
		registeredAt = *reg.Candidate.RegistrationDate
	}
	// The cookies live as long as the ticket so a late visit still sees the deadline.
	store := reedit.NewCookieStore(c, auth.EditTicketExpiry(reg.EditDeadline).Sub(h.clock.Now()), h.cookieSecure)
	reedit.Remember(store, reg.Candidate.ID, registeredAt, reg.EditToken)

	response.Success(c, http.StatusCreated, "Registration received", RegistrationResponse{
		ID:           reg.Candidate.ID,
		EditDeadline: reg.EditDeadline,
		EditToken:    reg.EditToken,
	})
}

// ReEditStatus godoc
// @Summary      Whether this browser may still amend its registration
// @Tags         public
// @Produce      json
// @Success      200  {object}  response.Response{data=reedit.Eligibility}
// @Router       /public/re-edit [get]
func (h *PublicHandler) ReEditStatus(c *gin.Context) {
	store := reedit.NewCookieStore(c, 0, h.cookieSecure)
	response.Success(c, http.StatusOK, "Re-edit status", reedit.Check(store, h.window, h.clock.Now()))
}

// GetOwn godoc
// @Summary      Load the applicant's own record for editing
// @Tags         public
// @Produce      json
// @Param        id            path    string  true   "Candidate ID"
// @Param        X-Edit-Token  header  string  false  "Edit ticket (or the iisa_edit_token cookie)"
// @Success      200  {object}  response.Response{data=domain.EditView}
// @Failure      401  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /public/candidates/{id} [get]
func (h *PublicHandler) GetOwn(c *gin.Context) {
	view, err := h.candidateUC.GetForEdit(c, c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Candidate", view)
}

// UpdateOwn godoc
// @Summary      Amend the applicant's own record within the edit window
// @Tags         public
// @Accept       multipart/form-data
// @Produce      json
// @Param        id            path      string  true   "Candidate ID"
// @Param        X-Edit-Token  header    string  false  "Edit ticket (or the iisa_edit_token cookie)"
// @Param        profileImage  formData  file    false  "Replacement photo"
// @Success      200  {object}  response.Response{data=domain.UpdateResult}
// @Failure      400  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /public/candidates/{id} [put]
func (h *PublicHandler) UpdateOwn(c *gin.Context) {
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

func updateMessage(result *domain.UpdateResult) string {
	if !result.Applied {
		return "No changes to save"
	}
	return "Candidate updated"
}
