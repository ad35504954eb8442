package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medtrack/internal/middleware"
	"medtrack/internal/model"
	"medtrack/internal/store"
)

type Handler struct {
	store          store.Store
	secret         string
	patientRecords bool
}

type Config struct {
	Store  store.Store
	Secret string

	// PatientRecords lets patients file their own medical records.
	PatientRecords bool
}

func New(cfg Config) *Handler {
	return &Handler{
		store:          cfg.Store,
		secret:         cfg.Secret,
		patientRecords: cfg.PatientRecords,
	}
}

// Router mounts the wire protocol under /api. authLimit applies to the
// auth routes only and may be nil (tests). Extra middleware (CORS) goes
// in front of everything.
func (h *Handler) Router(authLimit *middleware.RateLimiter, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw...)

	api := r.Group("/api")
	api.GET("/health", h.Health)

	authGrp := api.Group("/auth")
	if authLimit != nil {
		authGrp.Use(middleware.RateLimit(authLimit))
	}
	authGrp.POST("/register", h.Register)
	authGrp.POST("/login", h.Login)

	priv := api.Group("", middleware.Auth(h.secret))
	priv.GET("/appointments", h.ListAppointments)
	priv.POST("/appointments", h.CreateAppointment)
	priv.PUT("/appointments/:id", h.UpdateAppointmentStatus)
	priv.GET("/medical-records/:patient_id", h.ListRecords)
	priv.POST("/medical-records", h.CreateRecord)
	priv.GET("/users/doctors", h.ListDoctors)
	priv.GET("/users/profile", h.Profile)

	return r
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func callerID(c *gin.Context) string {
	return c.GetString(middleware.UserIDKey)
}

func callerRole(c *gin.Context) model.Role {
	role, _ := c.MustGet(middleware.RoleKey).(model.Role)
	return role
}
