package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medtrack/internal/model"
	"medtrack/internal/store"
)

type bookRequest struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason"`
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	if callerRole(c) != model.RolePatient {
		fail(c, http.StatusForbidden, "only patients can book appointments")
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DoctorID == "" || req.Date == "" || req.Time == "" {
		fail(c, http.StatusBadRequest, "doctor, date and time are required")
		return
	}

	apt := &model.Appointment{
		ID:        uuid.New().String(),
		PatientID: callerID(c),
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    model.StatusScheduled,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateAppointment(c.Request.Context(), apt); err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"appointment": apt})
}

func (h *Handler) ListAppointments(c *gin.Context) {
	apts, err := h.store.ListAppointments(c.Request.Context(), callerID(c), callerRole(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	if apts == nil {
		apts = []model.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": apts})
}

type statusRequest struct {
	Status model.Status `json:"status"`
}

func (h *Handler) UpdateAppointmentStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	apt, err := h.store.AppointmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "appointment not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	// only the assigned doctor may transition; everyone else gets the
	// same 404 as a missing row so existence is not revealed
	if callerRole(c) != model.RoleDoctor || apt.DoctorID != callerID(c) {
		fail(c, http.StatusNotFound, "appointment not found")
		return
	}

	if !req.Status.Terminal() {
		fail(c, http.StatusConflict, "invalid status transition")
		return
	}
	if apt.Status.Terminal() {
		fail(c, http.StatusConflict, "appointment is already "+string(apt.Status))
		return
	}

	if err := h.store.SetAppointmentStatus(c.Request.Context(), apt.ID, req.Status); err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	apt.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"appointment": apt})
}
