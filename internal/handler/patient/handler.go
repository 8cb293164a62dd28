package patient

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/service/patient"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authenticate gin.HandlerFunc) {
	patients := r.Group("/patients", authenticate, middleware.RequireRoles(model.RolePatient))
	{
		patients.GET("/profile", h.GetProfile)
		patients.PUT("/profile", h.UpdateProfile)
		patients.GET("/appointments", h.ListAppointments)
		patients.GET("/medical-history", h.MedicalHistory)
		patients.GET("/prescriptions", h.ListPrescriptions)
		patients.GET("/prescriptions/:id/pdf", h.DownloadPrescription)
	}
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.service.Profile(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdatePatientProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	p, err := h.service.UpdateProfile(c.Request.Context(), handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Profile updated successfully", p))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	apts, err := h.service.Appointments(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apts))
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	records, err := h.service.MedicalHistory(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	rxs, err := h.service.Prescriptions(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rxs))
}

func (h *Handler) DownloadPrescription(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "prescription")
	if !ok {
		return
	}

	doc, err := h.service.PrescriptionPDF(c.Request.Context(), handler.CurrentUser(c).ID, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="prescription-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", doc)
}
