package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medtrack/internal/model"
	"medtrack/internal/store"
)

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.store.ListDoctors(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	if doctors == nil {
		doctors = []model.Doctor{}
	}
	c.JSON(http.StatusOK, gin.H{"doctors": doctors})
}

func (h *Handler) Profile(c *gin.Context) {
	u, err := h.store.UserByID(c.Request.Context(), callerID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fail(c, http.StatusNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, u)
}
