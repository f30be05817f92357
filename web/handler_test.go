package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aqua/auth"
	blobmem "aqua/blob/mem"
	dbt "aqua/db/db"
	dbmem "aqua/db/mem"
	"aqua/relay/goch"
	"aqua/water"
)

type webFixture struct {
	router   *gin.Engine
	service  *water.Service
	sessions *auth.Service
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbmem.NewInMemoryWaterDBWrapper(&dbt.Config{
		BottlePrice:   50,
		BottleCount:   10,
		CurrentMonth:  "Abril de 2026",
		IsMonthActive: true,
	})
	service := water.NewService(db, blobmem.NewStore(), goch.NewChannelReminderRelay(16), "https://agua.example.com")
	sessions := auth.NewService(auth.NewStaticVerifier("juan", "361045"), []byte("test-secret"), time.Hour)

	r := gin.New()
	r.Use(SessionMiddleware(sessions))
	setupRoutes(r, NewHandler(service, sessions))
	return &webFixture{router: r, service: service, sessions: sessions}
}

func (f *webFixture) request(t *testing.T, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *webFixture) jsonRequest(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	return f.request(t, method, path, token, &body, "application/json")
}

func (f *webFixture) login(t *testing.T) string {
	t.Helper()
	rec := f.jsonRequest(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "juan", "password": "361045"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func receiptForm(t *testing.T, fileName string, amount string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("receipt", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-image-bytes"))
	require.NoError(t, err)
	if amount != "" {
		require.NoError(t, writer.WriteField("amount", amount))
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestHealth(t *testing.T) {
	f := newWebFixture(t)
	rec := f.request(t, http.MethodGet, "/health", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newWebFixture(t)
	rec := f.jsonRequest(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "juan", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMemberLifecycleOverHTTP(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	// Anonymous writes are refused before any state changes.
	rec := f.jsonRequest(t, http.MethodPost, "/api/members", "", gin.H{"name": "Ana"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.jsonRequest(t, http.MethodPost, "/api/members", token, gin.H{"name": "Ana", "phone": "+54911"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dbt.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Ana", created.Name)

	rec = f.jsonRequest(t, http.MethodPut, "/api/members/"+created.ID.String(), token, gin.H{"name": "Anita"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/members", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var roster []dbt.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &roster))
	require.Len(t, roster, 1)
	assert.Equal(t, "Anita", roster[0].Name)

	rec = f.jsonRequest(t, http.MethodDelete, "/api/members/"+created.ID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReceiptPaymentOverHTTP(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	rec := f.jsonRequest(t, http.MethodPost, "/api/members", token, gin.H{"name": "Ana"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var member dbt.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &member))

	body, contentType := receiptForm(t, "proof.png", "")
	rec = f.request(t, http.MethodPost, "/api/members/"+member.ID.String()+"/payments", "", body, contentType)
	require.Equal(t, http.StatusCreated, rec.Code)
	var payment dbt.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
	assert.Equal(t, "Abril de 2026", payment.Month)
	assert.True(t, strings.HasSuffix(payment.Receipt, ".png"))

	// The override field is admin only.
	body, contentType = receiptForm(t, "proof.png", "250")
	rec = f.request(t, http.MethodPost, "/api/members/"+member.ID.String()+"/payments", "", body, contentType)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/stats", "", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats water.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.PaidCount)
}

func TestErrorMapping(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	rec := f.request(t, http.MethodGet, "/api/members/"+uuid.New().String(), "", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/members/not-a-uuid", "", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.jsonRequest(t, http.MethodPost, "/api/members/"+uuid.New().String()+"/payments/cash", token, gin.H{"amount": 100})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.request(t, http.MethodGet, "/api/members", "bogus-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	rec := f.jsonRequest(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.jsonRequest(t, http.MethodPost, "/api/members", token, gin.H{"name": "Ana"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
