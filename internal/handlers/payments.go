package handlers

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"matrimony-server/internal/config"
	"matrimony-server/internal/middleware"
	"matrimony-server/internal/models"
	"matrimony-server/internal/utils"
)

// PaymentHandler handles Stripe checkout and the webhook that flips the
// premium flag.
type PaymentHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
	Log *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler and sets the Stripe key.
func NewPaymentHandler(db *gorm.DB, cfg *config.Config, log *zap.Logger) *PaymentHandler {
	stripe.Key = cfg.Stripe.SecretKey
	return &PaymentHandler{DB: db, Cfg: cfg, Log: log}
}

// CreateCheckoutSession starts a one-time payment for the premium upgrade.
// The user id rides along in session metadata so the webhook can attribute
// the completed payment.
func (h *PaymentHandler) CreateCheckoutSession(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyINR)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String("Matrimony - Premium Membership"),
						Description: stripe.String("Unlock unlimited profile views and interactions."),
					},
					UnitAmount: stripe.Int64(200 * 100), // 200 INR in paise
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(h.Cfg.FrontendURL + "/dashboard?payment_success=true"),
		CancelURL:  stripe.String(h.Cfg.FrontendURL + "/profiles?payment_cancelled=true"),
	}
	params.AddMetadata("userId", userID)

	s, err := session.New(params)
	if err != nil {
		h.Log.Error("stripe session creation failed", zap.String("userId", userID), zap.Error(err))
		utils.InternalServerError(c, "Failed to create payment session")
		return
	}

	utils.Success(c, "Checkout session created", gin.H{"id": s.ID, "url": s.URL})
}

// HandleWebhook verifies the provider signature over the raw body and, on a
// completed checkout, upgrades the user. The update sets an absolute state,
// so a redelivered event converges to the same result.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.BadRequest(c, "Failed to read request body")
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.Cfg.Stripe.WebhookSecret)
	if err != nil {
		h.Log.Warn("webhook signature verification failed", zap.Error(err))
		utils.BadRequest(c, "Webhook signature verification failed")
		return
	}

	if event.Type == "checkout.session.completed" {
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			h.Log.Error("failed to decode checkout session", zap.Error(err))
			utils.BadRequest(c, "Malformed event payload")
			return
		}

		userID := s.Metadata["userId"]
		if userID != "" {
			if err := h.DB.Model(&models.User{}).Where("id = ?", userID).
				Updates(map[string]interface{}{
					"is_premium":    true,
					"profile_views": 0,
				}).Error; err != nil {
				// Logged for manual reconciliation; the provider will retry.
				h.Log.Error("premium upgrade failed after webhook",
					zap.String("userId", userID), zap.Error(err))
				utils.InternalServerError(c, "Failed to apply upgrade")
				return
			}
			h.Log.Info("user upgraded to premium", zap.String("userId", userID))
		}
	}

	utils.Success(c, "Webhook received", gin.H{"received": true})
}
