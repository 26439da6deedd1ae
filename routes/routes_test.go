package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TeleClinic/config"
	"TeleClinic/metrics"
	"TeleClinic/repositories"
	"TeleClinic/routes"
	"TeleClinic/testutil"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testKey      = "0123456789abcdef0123456789abcdef"
	testPassword = "Secr3t!pass"
	adminEmail   = "admin@example.com"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t       *testing.T
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()

	cfg := &config.AppConfig{
		Env:            "test",
		CorsOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		Admin:          config.AdminSeed{Email: adminEmail, Password: testPassword, FullName: "Admin", Phone: "+15550000000"},
	}

	sessions, err := utils.NewSessionIssuer(testKey, utils.AccessTokenExpiry)
	require.NoError(t, err)

	m := metrics.New("test")
	svc := routes.NewServices(
		repositories.New(testutil.NewDB(t)),
		sessions,
		testutil.NewMemoryStore(),
		&testutil.RecordingMailer{},
		m,
	)
	require.NoError(t, svc.Auth.EnsureAdmin(context.Background(), cfg.Admin))

	return &api{t: t, handler: routes.SetupRoutes(cfg, zap.NewNop(), m, svc)}
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func (a *api) signIn(email string) string {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/signin", "", map[string]string{"email": email, "password": testPassword})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	decode(a.t, rec, &out)
	require.NotEmpty(a.t, out.AccessToken)
	return out.AccessToken
}

func signup(name string, n int) map[string]string {
	return map[string]string{
		"fullname":    name,
		"email":       fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", "."))),
		"password":    testPassword,
		"phonenumber": fmt.Sprintf("+1555100%04d", n),
	}
}

func TestClinicFlow(t *testing.T) {
	a := newAPI(t)

	adminToken := a.signIn(adminEmail)

	// Admin issues a doctor token; the doctor redeems it once.
	rec := a.do(http.MethodPost, "/admin/doctor-tokens", adminToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var issued struct {
		Token string `json:"token"`
	}
	decode(t, rec, &issued)

	doctorBody := signup("Greg House", 1)
	doctorBody["token"] = issued.Token
	rec = a.do(http.MethodPost, "/auth/signup/doctor", "", doctorBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var doctor struct {
		UserID int64 `json:"userId"`
	}
	decode(t, rec, &doctor)

	again := signup("Second Doctor", 2)
	again["token"] = issued.Token
	rec = a.do(http.MethodPost, "/auth/signup/doctor", "", again)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	doctorToken := a.signIn(doctorBody["email"])

	// A patient signs up and the doctor links with the patient token.
	patientBody := signup("Pat Patient", 3)
	rec = a.do(http.MethodPost, "/auth/signup/patient", "", patientBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var patient struct {
		UserID       int64  `json:"userId"`
		PatientID    int64  `json:"patientId"`
		PatientToken string `json:"patientToken"`
	}
	decode(t, rec, &patient)
	patientToken := a.signIn(patientBody["email"])

	rec = a.do(http.MethodPost, "/prescriptions", doctorToken, map[string]interface{}{
		"patientId":   patient.PatientID,
		"medications": []map[string]string{{"name": "Aspirin", "dosage": "100mg", "frequency": "daily"}},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, "unlinked doctors cannot prescribe")

	rec = a.do(http.MethodPost, "/doctor/links", doctorToken, map[string]string{"patientToken": patient.PatientToken})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPost, "/doctor/links", doctorToken, map[string]string{"patientToken": patient.PatientToken})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(http.MethodGet, "/doctor/patients", doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster []map[string]interface{}
	decode(t, rec, &roster)
	require.Len(t, roster, 1)

	// Prescriptions.
	rec = a.do(http.MethodPost, "/prescriptions", doctorToken, map[string]interface{}{
		"patientId": patient.PatientID,
		"medications": []map[string]string{
			{"name": "Aspirin", "dosage": "100mg", "frequency": "daily"},
			{"name": "Omeprazole", "dosage": "20mg", "frequency": "before breakfast"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		PrescriptionID int64 `json:"prescriptionId"`
	}
	decode(t, rec, &created)

	rec = a.do(http.MethodGet, fmt.Sprintf("/prescriptions/%d", created.PrescriptionID), patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var detail struct {
		DoctorName  string `json:"doctorName"`
		Medications []struct {
			Name string `json:"name"`
		} `json:"medications"`
	}
	decode(t, rec, &detail)
	assert.Equal(t, "Greg House", detail.DoctorName)
	require.Len(t, detail.Medications, 2)
	assert.Equal(t, "Aspirin", detail.Medications[0].Name)

	rec = a.do(http.MethodGet, "/me/prescriptions", patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var own []map[string]interface{}
	decode(t, rec, &own)
	assert.Len(t, own, 1)

	rec = a.do(http.MethodGet, fmt.Sprintf("/patients/%d/prescriptions", patient.PatientID), doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, "/prescriptions", patientToken, map[string]interface{}{"patientId": patient.PatientID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/prescriptions", doctorToken, map[string]interface{}{"patientId": patient.PatientID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Chat from both sides.
	rec = a.do(http.MethodPost, "/chat/messages", doctorToken, map[string]interface{}{"receiverId": patient.PatientID, "message": "How are you?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = a.do(http.MethodPost, "/chat/messages", patientToken, map[string]interface{}{"receiverId": doctor.UserID, "message": "Better"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodGet, fmt.Sprintf("/chat/history/%d", doctor.UserID), patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []struct {
		Message    string `json:"message"`
		SenderRole string `json:"senderRole"`
	}
	decode(t, rec, &history)
	require.Len(t, history, 2)
	assert.Equal(t, "Doctor", history[0].SenderRole)
	assert.Equal(t, "Better", history[1].Message)

	rec = a.do(http.MethodGet, "/chat/partners", doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Unlinking closes chat again.
	rec = a.do(http.MethodDelete, fmt.Sprintf("/doctor/patients/%d", patient.UserID), doctorToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.do(http.MethodPost, "/chat/messages", patientToken, map[string]interface{}{"receiverId": doctor.UserID, "message": "Hello?"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSignInFailuresLookTheSame(t *testing.T) {
	a := newAPI(t)

	wrongPassword := a.do(http.MethodPost, "/auth/signin", "", map[string]string{"email": adminEmail, "password": "Wr0ng!pass"})
	unknownEmail := a.do(http.MethodPost, "/auth/signin", "", map[string]string{"email": "ghost@example.com", "password": testPassword})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestSignOutRevokesSession(t *testing.T) {
	a := newAPI(t)
	token := a.signIn(adminEmail)

	rec := a.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, rec, &me)
	assert.Equal(t, adminEmail, me.Email)
	assert.Equal(t, "Admin", me.Role)

	rec = a.do(http.MethodPost, "/auth/signout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.do(http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleAndSessionGuards(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/doctor/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken := a.signIn(adminEmail)
	rec = a.do(http.MethodGet, "/doctor/patients", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	patientBody := signup("Pat Patient", 9)
	rec = a.do(http.MethodPost, "/auth/signup/patient", "", patientBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	patientToken := a.signIn(patientBody["email"])

	rec = a.do(http.MethodPost, "/admin/doctor-tokens", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPost, "/auth/signup/patient", "", patientBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	a.do(http.MethodGet, "/", "", nil)
	rec = a.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
