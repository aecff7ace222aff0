package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"matrimony-server/internal/config"
	"matrimony-server/internal/models"
	"matrimony-server/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		FrontendURL:        "http://localhost:5173",
		UploadsDir:         "uploads",
		OTPExpiryMinutes:   5,
		FreeProfileLimit:   6,
		Stripe: config.StripeConfig{
			SecretKey:     "sk_test_dummy",
			WebhookSecret: "whsec_test_dummy",
		},
	}
}

// fakeMailer records outgoing codes instead of dialing SMTP.
type fakeMailer struct {
	LastTo   string
	LastCode string
	Sent     int
	Fail     bool
}

func (m *fakeMailer) SendOTP(to, subject, code string, validMinutes int) error {
	if m.Fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.LastTo = to
	m.LastCode = code
	m.Sent++
	return nil
}

// asUser injects the authenticated user id the way AuthMiddleware would.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func doRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) utils.ResponseData {
	t.Helper()
	var resp utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// createVerifiedUser seeds a verified user with a browsable profile.
func createVerifiedUser(t *testing.T, db *gorm.DB, email, firstName string, premium bool) *models.User {
	t.Helper()
	user := models.User{
		Email:      email,
		FirstName:  firstName,
		LastName:   "Test",
		Gender:     "female",
		IsVerified: true,
		IsPremium:  premium,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, db.Create(&user).Error)

	profile := models.Profile{
		UserID:    user.ID,
		Name:      firstName + " Test",
		Age:       28,
		Interests: "[]",
	}
	require.NoError(t, db.Create(&profile).Error)
	return &user
}
