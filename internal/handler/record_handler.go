package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medtrack/internal/model"
)

type recordRequest struct {
	PatientID   string   `json:"patient_id"`
	Diagnosis   string   `json:"diagnosis"`
	Treatment   string   `json:"treatment"`
	Medications []string `json:"medications"`
	Notes       string   `json:"notes"`
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	doctorID := ""
	switch callerRole(c) {
	case model.RoleDoctor:
		doctorID = callerID(c)
	case model.RolePatient:
		if !h.patientRecords {
			fail(c, http.StatusForbidden, "patients cannot create medical records")
			return
		}
		if req.PatientID != callerID(c) {
			fail(c, http.StatusForbidden, "patients can only file their own records")
			return
		}
	}

	if req.PatientID == "" {
		fail(c, http.StatusBadRequest, "patient_id is required")
		return
	}
	if strings.TrimSpace(req.Diagnosis) == "" {
		fail(c, http.StatusBadRequest, "diagnosis is required")
		return
	}

	meds := req.Medications
	if meds == nil {
		meds = []string{}
	}

	rec := &model.MedicalRecord{
		ID:          uuid.New().String(),
		PatientID:   req.PatientID,
		DoctorID:    doctorID,
		Diagnosis:   req.Diagnosis,
		Treatment:   req.Treatment,
		Medications: meds,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateRecord(c.Request.Context(), rec); err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": rec})
}

func (h *Handler) ListRecords(c *gin.Context) {
	patientID := c.Param("patient_id")

	switch callerRole(c) {
	case model.RolePatient:
		if callerID(c) != patientID {
			fail(c, http.StatusForbidden, "access denied")
			return
		}
	case model.RoleDoctor:
		ok, err := h.store.HasRelationship(c.Request.Context(), callerID(c), patientID)
		if err != nil {
			fail(c, http.StatusInternalServerError, "internal error")
			return
		}
		if !ok {
			fail(c, http.StatusForbidden, "no treatment relationship with this patient")
			return
		}
	}

	recs, err := h.store.ListRecords(c.Request.Context(), patientID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}
