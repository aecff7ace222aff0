package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"matrimony-server/internal/models"
)

func newPaymentRouter(db *gorm.DB) *gin.Engine {
	h := NewPaymentHandler(db, newTestConfig(), zap.NewNop())
	router := gin.New()
	router.POST("/api/payments/webhook", h.HandleWebhook)
	return router
}

// signedWebhookRequest builds a webhook call carrying a valid provider
// signature over the payload.
func signedWebhookRequest(payload []byte, secret string) *http.Request {
	now := time.Now()
	signature := webhook.ComputeSignature(now, payload, secret)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%x", now.Unix(), signature))
	return req
}

func checkoutCompletedPayload(userID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_test_1",
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_1",
				"object": "checkout.session",
				"metadata": {"userId": %q}
			}
		}
	}`, stripe.APIVersion, userID))
}

func TestWebhookUpgradesUserToPremium(t *testing.T) {
	db := newTestDB(t)
	user := createVerifiedUser(t, db, "payer@example.com", "Asha", false)
	require.NoError(t, db.Model(user).Update("profile_views", 4).Error)

	router := newPaymentRouter(db)
	secret := newTestConfig().Stripe.WebhookSecret

	w := doRequest(router, signedWebhookRequest(checkoutCompletedPayload(user.ID), secret))
	require.Equal(t, http.StatusOK, w.Code)

	var upgraded models.User
	require.NoError(t, db.First(&upgraded, "id = ?", user.ID).Error)
	assert.True(t, upgraded.IsPremium)
	assert.Equal(t, 0, upgraded.ProfileViews)
}

func TestWebhookRedeliveryConverges(t *testing.T) {
	db := newTestDB(t)
	user := createVerifiedUser(t, db, "payer@example.com", "Asha", false)

	router := newPaymentRouter(db)
	secret := newTestConfig().Stripe.WebhookSecret
	payload := checkoutCompletedPayload(user.ID)

	w := doRequest(router, signedWebhookRequest(payload, secret))
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, signedWebhookRequest(payload, secret))
	require.Equal(t, http.StatusOK, w.Code)

	var upgraded models.User
	require.NoError(t, db.First(&upgraded, "id = ?", user.ID).Error)
	assert.True(t, upgraded.IsPremium)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	user := createVerifiedUser(t, db, "payer@example.com", "Asha", false)

	router := newPaymentRouter(db)
	payload := checkoutCompletedPayload(user.ID)

	w := doRequest(router, signedWebhookRequest(payload, "whsec_wrong_secret"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.False(t, stored.IsPremium)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	db := newTestDB(t)
	user := createVerifiedUser(t, db, "payer@example.com", "Asha", false)

	router := newPaymentRouter(db)
	secret := newTestConfig().Stripe.WebhookSecret
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_test_2",
		"object": "event",
		"api_version": %q,
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_test_1", "object": "payment_intent"}}
	}`, stripe.APIVersion))

	w := doRequest(router, signedWebhookRequest(payload, secret))
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.False(t, stored.IsPremium)
}

func TestWebhookUnknownUserIsAcknowledged(t *testing.T) {
	db := newTestDB(t)
	router := newPaymentRouter(db)
	secret := newTestConfig().Stripe.WebhookSecret

	// Provider retries on non-2xx; an unattributable session is logged and
	// acknowledged, not bounced forever.
	w := doRequest(router, signedWebhookRequest(checkoutCompletedPayload("missing-user"), secret))
	assert.Equal(t, http.StatusOK, w.Code)
}
