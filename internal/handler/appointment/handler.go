package appointment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/service/appointment"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authenticate gin.HandlerFunc) {
	appointments := r.Group("/appointments", authenticate)
	{
		participant := middleware.RequireRoles(model.RolePatient, model.RoleDoctor)
		patient := middleware.RequireRoles(model.RolePatient)
		doctor := middleware.RequireRoles(model.RoleDoctor)

		appointments.POST("", patient, h.BookAppointment)
		appointments.GET("/:id", participant, h.GetAppointment)
		appointments.PATCH("/:id/status", participant, h.UpdateStatus)
		appointments.POST("/:id/cancel", participant, h.CancelAppointment)
		appointments.POST("/:id/reschedule", patient, h.RescheduleAppointment)
		appointments.POST("/:id/medical-record", doctor, h.AddMedicalRecord)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	apt, err := h.service.Book(c.Request.Context(), handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse("Appointment booked successfully", apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "appointment")
	if !ok {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id, handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.UpdateAppointmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, handler.CurrentUser(c).ID, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment status updated", apt))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "appointment")
	if !ok {
		return
	}

	// The body is optional.
	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		handler.RespondBindError(c, err)
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), id, handler.CurrentUser(c).ID, req.Reason)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment cancelled successfully", apt))
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Appointment rescheduled successfully", apt))
}

func (h *Handler) AddMedicalRecord(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	result, err := h.service.AddMedicalRecord(c.Request.Context(), id, handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse("Medical record added successfully", result))
}
