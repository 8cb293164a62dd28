package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/service/doctor"
)

type Handler struct {
	service doctor.DoctorService
}

func NewHandler(service doctor.DoctorService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public directory behind cache and the doctor's
// own endpoints behind authenticate.
func (h *Handler) RegisterRoutes(r gin.IRouter, authenticate, cache gin.HandlerFunc) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", cache, h.ListDoctors)
		doctors.GET("/:id", cache, h.GetDoctor)

		own := doctors.Group("", authenticate, middleware.RequireRoles(model.RoleDoctor))
		own.GET("/me/profile", h.GetProfile)
		own.PUT("/me/profile", h.UpdateProfile)
		own.GET("/me/appointments", h.ListAppointments)
		own.GET("/me/availability", h.ListAvailability)
		own.POST("/me/availability", h.AddAvailability)
		own.DELETE("/me/availability/:id", h.DeleteAvailability)
		own.GET("/patient-history/:patientId", h.PatientHistory)
	}
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var filter model.DoctorFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	doctors, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "doctor")
	if !ok {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

func (h *Handler) GetProfile(c *gin.Context) {
	doc, err := h.service.Profile(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doc))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	doc, err := h.service.UpdateProfile(c.Request.Context(), handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Profile updated successfully", doc))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.Appointments(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListAvailability(c *gin.Context) {
	slots, err := h.service.Availability(c.Request.Context(), handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) AddAvailability(c *gin.Context) {
	var req model.CreateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	slot, err := h.service.AddAvailability(c.Request.Context(), handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(slot))
}

func (h *Handler) DeleteAvailability(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "slot")
	if !ok {
		return
	}

	if err := h.service.DeleteAvailability(c.Request.Context(), handler.CurrentUser(c).ID, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Availability slot deleted", nil))
}

func (h *Handler) PatientHistory(c *gin.Context) {
	patientID, ok := handler.ParamUUID(c, "patientId", "patient")
	if !ok {
		return
	}

	records, err := h.service.PatientHistory(c.Request.Context(), handler.CurrentUser(c).ID, patientID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}
