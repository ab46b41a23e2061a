package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"newera.app/reentry/internal/entity"
	"newera.app/reentry/internal/modules/notifier"
	"newera.app/reentry/internal/modules/referral/dto"
	referral "newera.app/reentry/internal/modules/referral/service"
	"newera.app/reentry/pkg/ratelimiter"
	"newera.app/reentry/pkg/response"
	"newera.app/reentry/pkg/validator"
)

const createReferralAction = "create_referral"

// ReferralNotifier delivers a saved referral to the client.
type ReferralNotifier interface {
	SendEmailNotification(ctx context.Context, referral *entity.Referral, token string) notifier.DeliveryResult
	SendSMSNotification(ctx context.Context, referral *entity.Referral, token string) notifier.DeliveryResult
}

type ReferralHandler struct {
	service  referral.ReferralService
	notifier ReferralNotifier
	limiter  *ratelimiter.Limiter
	window   time.Duration
	logger   *zap.Logger
}

func NewReferralHandler(service referral.ReferralService, n ReferralNotifier, limiter *ratelimiter.Limiter, window time.Duration, logger *zap.Logger) *ReferralHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferralHandler{
		service:  service,
		notifier: n,
		limiter:  limiter,
		window:   window,
		logger:   logger,
	}
}

// CreateReferral saves the referral, then emails and texts the client. Once the referral is
// saved the answer is 201 whatever happened to the deliveries.
func (h *ReferralHandler) CreateReferral(c *gin.Context) {
	var req dto.CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	ctx := c.Request.Context()
	subject := user.ID.String()

	allowed, err := h.limiter.Acquire(ctx, subject, createReferralAction, h.window)
	if err != nil {
		response.ResponseError(c, fmt.Errorf("failed to check rate limit: %w", err))
		return
	}
	if !allowed {
		ttl, _ := h.limiter.TTL(ctx, subject, createReferralAction)
		rateLimitErr := &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are sending referrals too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
		c.Header("Retry-After", fmt.Sprintf("%.0f", rateLimitErr.RetryAfter.Seconds()))
		response.ResponseError(c, rateLimitErr)
		return
	}

	saved, err := h.service.ComposeReferral(ctx, user, req.CaseUserID, req.ResourceIDs, req.Notes)
	if err != nil {
		_ = h.limiter.Release(ctx, subject, createReferralAction)
		response.ResponseError(c, err)
		return
	}

	// The referral is committed; deliveries must not be cut short by the client hanging up.
	sendCtx := context.WithoutCancel(ctx)
	token := referral.AccessKey(saved.ReferralDate)

	results := []notifier.DeliveryResult{
		h.notifier.SendEmailNotification(sendCtx, saved, token),
		h.notifier.SendSMSNotification(sendCtx, saved, token),
	}

	delivery := make([]dto.DeliveryStatus, 0, len(results))
	for _, r := range results {
		h.logDelivery(saved, r)
		delivery = append(delivery, deliveryStatus(r))
	}

	c.JSON(http.StatusCreated, dto.CreateReferralResponse{
		Referral: referral.ToResponse(saved),
		Delivery: delivery,
	})
}

func (h *ReferralHandler) logDelivery(saved *entity.Referral, r notifier.DeliveryResult) {
	fields := []zap.Field{
		zap.Uint("referral_id", saved.ID),
		zap.String("channel", string(r.Channel)),
		zap.String("recipient", r.Recipient),
	}
	switch {
	case r.Skipped:
		h.logger.Info("referral delivery skipped, no recipient on file", fields...)
	case r.Err != nil:
		h.logger.Error("referral delivery failed", append(fields, zap.Error(r.Err))...)
	default:
		h.logger.Info("referral delivered", fields...)
	}
}

func deliveryStatus(r notifier.DeliveryResult) dto.DeliveryStatus {
	status := "sent"
	switch {
	case r.Skipped:
		status = "skipped"
	case r.Err != nil:
		status = "failed"
	}
	return dto.DeliveryStatus{Channel: string(r.Channel), Status: status, Recipient: r.Recipient}
}

func (h *ReferralHandler) ListReferrals(c *gin.Context) {
	var filter dto.ReferralFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	referrals, meta, err := h.service.ListReferrals(c.Request.Context(), user, filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": referrals, "meta": meta})
}

func (h *ReferralHandler) GetReferral(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid referral id"})
		return
	}

	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetReferral(c.Request.Context(), user, uint(id))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ReferralHandler) ExportReferrals(c *gin.Context) {
	user, err := response.GetUser(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	data, err := h.service.ExportReferrals(c.Request.Context(), user)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	filename := fmt.Sprintf("referrals_%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
