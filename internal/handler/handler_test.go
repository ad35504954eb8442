package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtrack/internal/handler"
	"medtrack/internal/middleware"
	"medtrack/internal/model"
	"medtrack/internal/store"
)

func newRouter(t *testing.T, patientRecords bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := handler.New(handler.Config{
		Store:          store.NewMemory(),
		Secret:         "test-secret",
		PatientRecords: patientRecords,
	})
	return h.Router(nil)
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	resp := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	}
	return w, resp
}

// register creates an account and returns its token and user id.
func register(t *testing.T, r *gin.Engine, email string, role model.Role) (token, id string) {
	t.Helper()
	w, resp := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": email, "password": "longenough", "name": "Test " + email, "role": role,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := resp["user"].(map[string]any)
	return resp["access_token"].(string), user["id"].(string)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, false)
	w, resp := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
}

func TestRegisterValidation(t *testing.T) {
	r := newRouter(t, false)
	tests := []struct {
		name string
		body gin.H
	}{
		{"empty email", gin.H{"email": "", "password": "longenough", "name": "X"}},
		{"empty password", gin.H{"email": "a@b.com", "password": "", "name": "X"}},
		{"short password", gin.H{"email": "a@b.com", "password": "short", "name": "X"}},
		{"empty name", gin.H{"email": "a@b.com", "password": "longenough", "name": ""}},
		{"bad role", gin.H{"email": "a@b.com", "password": "longenough", "name": "X", "role": "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, r, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestRegisterDefaultsToPatient(t *testing.T) {
	r := newRouter(t, false)
	w, resp := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "a@b.com", "password": "longenough", "name": "X",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	user := resp["user"].(map[string]any)
	assert.Equal(t, "patient", user["role"])
	assert.NotEmpty(t, resp["access_token"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	r := newRouter(t, false)
	register(t, r, "dup@test.com", model.RolePatient)
	w, resp := do(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "dup@test.com", "password": "longenough", "name": "Again",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user already exists", resp["error"])
}

func TestLogin(t *testing.T) {
	r := newRouter(t, false)
	register(t, r, "pat@test.com", model.RolePatient)

	t.Run("success", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "pat@test.com", "password": "longenough",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, resp["access_token"])
		assert.Equal(t, "pat@test.com", resp["user"].(map[string]any)["email"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "pat@test.com", "password": "wrongwrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "invalid credentials", resp["error"])
	})

	t.Run("unknown email", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": "nobody@test.com", "password": "longenough",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		// unknown email and wrong password are indistinguishable
		assert.Equal(t, "invalid credentials", resp["error"])
	})
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	r := newRouter(t, false)
	for _, path := range []string{"/api/appointments", "/api/users/doctors", "/api/users/profile"} {
		w, _ := do(t, r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w, _ := do(t, r, http.MethodGet, "/api/appointments", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAppointment(t *testing.T) {
	r := newRouter(t, false)
	patTok, patID := register(t, r, "pat@test.com", model.RolePatient)
	docTok, docID := register(t, r, "doc@test.com", model.RoleDoctor)

	t.Run("doctor cannot book", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/appointments", docTok, gin.H{
			"doctor_id": docID, "date": "2024-02-15", "time": "09:00",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.NotEmpty(t, resp["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/appointments", patTok, gin.H{
			"doctor_id": "", "date": "2024-02-15", "time": "09:00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/appointments", patTok, gin.H{
			"doctor_id": docID, "date": "2024-02-15", "time": "09:00", "reason": "checkup",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		apt := resp["appointment"].(map[string]any)
		assert.Equal(t, "scheduled", apt["status"])
		assert.Equal(t, patID, apt["patient_id"])
		assert.Equal(t, docID, apt["doctor_id"])
		assert.NotEmpty(t, apt["id"])
	})
}

func TestListAppointmentsVisibility(t *testing.T) {
	r := newRouter(t, false)
	patTok, patID := register(t, r, "pat@test.com", model.RolePatient)
	otherTok, _ := register(t, r, "other@test.com", model.RolePatient)
	docTok, docID := register(t, r, "doc@test.com", model.RoleDoctor)

	w, _ := do(t, r, http.MethodPost, "/api/appointments", patTok, gin.H{
		"doctor_id": docID, "date": "2024-02-15", "time": "09:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := do(t, r, http.MethodGet, "/api/appointments", patTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	apts := resp["appointments"].([]any)
	require.Len(t, apts, 1)
	assert.Equal(t, patID, apts[0].(map[string]any)["patient_id"])

	w, resp = do(t, r, http.MethodGet, "/api/appointments", docTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["appointments"].([]any), 1)

	// a stranger sees an empty list, never someone else's rows
	w, resp = do(t, r, http.MethodGet, "/api/appointments", otherTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp["appointments"].([]any))
}

func bookOne(t *testing.T, r *gin.Engine, patTok, docID string) string {
	t.Helper()
	w, resp := do(t, r, http.MethodPost, "/api/appointments", patTok, gin.H{
		"doctor_id": docID, "date": "2024-02-15", "time": "09:00",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return resp["appointment"].(map[string]any)["id"].(string)
}

func TestUpdateAppointmentStatus(t *testing.T) {
	r := newRouter(t, false)
	patTok, _ := register(t, r, "pat@test.com", model.RolePatient)
	docTok, docID := register(t, r, "doc@test.com", model.RoleDoctor)
	otherDocTok, _ := register(t, r, "doc2@test.com", model.RoleDoctor)
	aptID := bookOne(t, r, patTok, docID)

	t.Run("patient gets 404", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPut, "/api/appointments/"+aptID, patTok, gin.H{"status": "cancelled"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("other doctor gets 404", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPut, "/api/appointments/"+aptID, otherDocTok, gin.H{"status": "cancelled"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPut, "/api/appointments/nope", docTok, gin.H{"status": "cancelled"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad target state", func(t *testing.T) {
		for _, target := range []string{"scheduled", "rescheduled", ""} {
			w, _ := do(t, r, http.MethodPut, "/api/appointments/"+aptID, docTok, gin.H{"status": target})
			assert.Equal(t, http.StatusConflict, w.Code, "target %q", target)
		}
	})

	t.Run("complete then locked", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPut, "/api/appointments/"+aptID, docTok, gin.H{"status": "completed"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "completed", resp["appointment"].(map[string]any)["status"])

		w, resp = do(t, r, http.MethodPut, "/api/appointments/"+aptID, docTok, gin.H{"status": "cancelled"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "appointment is already completed", resp["error"])
	})
}

func TestMedicalRecords(t *testing.T) {
	r := newRouter(t, false)
	patTok, patID := register(t, r, "pat@test.com", model.RolePatient)
	otherTok, _ := register(t, r, "other@test.com", model.RolePatient)
	docTok, docID := register(t, r, "doc@test.com", model.RoleDoctor)
	strangerDocTok, _ := register(t, r, "doc2@test.com", model.RoleDoctor)

	t.Run("blank diagnosis", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/medical-records", docTok, gin.H{
			"patient_id": patID, "diagnosis": "   ",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "diagnosis is required", resp["error"])
	})

	t.Run("patient cannot create by default", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/medical-records", patTok, gin.H{
			"patient_id": patID, "diagnosis": "Flu",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("doctor creates, medications default", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/medical-records", docTok, gin.H{
			"patient_id": patID, "diagnosis": "Flu", "treatment": "rest",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		rec := resp["record"].(map[string]any)
		assert.Equal(t, docID, rec["doctor_id"])
		meds, ok := rec["medications"].([]any)
		require.True(t, ok, "medications missing: %v", rec)
		assert.Empty(t, meds)
	})

	t.Run("patient reads own", func(t *testing.T) {
		w, resp := do(t, r, http.MethodGet, "/api/medical-records/"+patID, patTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		records := resp["records"].([]any)
		require.Len(t, records, 1)
		assert.Equal(t, "Flu", records[0].(map[string]any)["diagnosis"])
	})

	t.Run("other patient forbidden", func(t *testing.T) {
		w, _ := do(t, r, http.MethodGet, "/api/medical-records/"+patID, otherTok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unrelated doctor forbidden", func(t *testing.T) {
		w, resp := do(t, r, http.MethodGet, "/api/medical-records/"+patID, strangerDocTok, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "no treatment relationship with this patient", resp["error"])
	})

	t.Run("treating doctor allowed", func(t *testing.T) {
		w, resp := do(t, r, http.MethodGet, "/api/medical-records/"+patID, docTok, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, resp["records"].([]any), 1)
	})
}

func TestPatientRecordsPolicy(t *testing.T) {
	r := newRouter(t, true)
	patTok, patID := register(t, r, "pat@test.com", model.RolePatient)
	_, otherID := register(t, r, "other@test.com", model.RolePatient)

	t.Run("self-filing allowed", func(t *testing.T) {
		w, resp := do(t, r, http.MethodPost, "/api/medical-records", patTok, gin.H{
			"patient_id": patID, "diagnosis": "Headache",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		// no doctor involved in a self-filed entry
		rec := resp["record"].(map[string]any)
		assert.Nil(t, rec["doctor_id"])
	})

	t.Run("filing for others still forbidden", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/medical-records", patTok, gin.H{
			"patient_id": otherID, "diagnosis": "Headache",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestDoctorDirectoryAndProfile(t *testing.T) {
	r := newRouter(t, false)
	patTok, _ := register(t, r, "pat@test.com", model.RolePatient)
	_, docID := register(t, r, "doc@test.com", model.RoleDoctor)

	w, resp := do(t, r, http.MethodGet, "/api/users/doctors", patTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	doctors := resp["doctors"].([]any)
	require.Len(t, doctors, 1)
	assert.Equal(t, docID, doctors[0].(map[string]any)["id"])

	w, resp = do(t, r, http.MethodGet, "/api/users/profile", patTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pat@test.com", resp["email"])
	assert.Equal(t, "patient", resp["role"])
}

func TestAuthRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handler.New(handler.Config{Store: store.NewMemory(), Secret: "test-secret"})
	r := h.Router(middleware.NewRateLimiter(1, 2))

	codes := make([]int, 0, 4)
	for i := range 4 {
		w, _ := do(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
			"email": fmt.Sprintf("u%d@test.com", i), "password": "longenough",
		})
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, http.StatusTooManyRequests)
	// health never rate-limited
	w, _ := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
