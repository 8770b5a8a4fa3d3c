// Package webhook принимает подписанные уведомления платёжного провайдера
// и обновляет тариф пользователя.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/cardlink/internal/http/response"
	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/models"
	"github.com/magabrotheeeer/cardlink/internal/services/plan"
)

// SignatureHeader заголовок с подписью тела запроса.
const SignatureHeader = "X-Api-Signature"

const maxBodyBytes = 64 << 10

// Service применяет событие оплаты.
type Service interface {
	ApplyPayment(ctx context.Context, event models.PaymentEvent) error
}

// Handler обрабатывает вебхуки оплаты.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret []byte
}

// New создает Handler. Пустой secret отклоняет все запросы.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: []byte(secret),
	}
}

// Sign возвращает подпись тела: base64(HMAC-SHA256(secret, body)).
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (h *Handler) verifySignature(body []byte, signature string) bool {
	if len(h.webhookSecret) == 0 || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(h.webhookSecret, body)), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук оплаты
// @Description Успешная оплата продлевает платный тариф, возврат переводит на бесплатный.
// @Tags Payments
// @Accept json
// @Produce json
// @Param X-Api-Signature header string true "base64(HMAC-SHA256) тела"
// @Param request body models.PaymentEvent true "Событие оплаты"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректное событие"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Ошибка обработки"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if !h.verifySignature(body, r.Header.Get(SignatureHeader)) {
		log.Warn("invalid or missing webhook signature")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event models.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.ApplyPayment(r.Context(), event); err != nil {
		if errors.Is(err, plan.ErrInvalidPayment) {
			log.Warn("rejected payment event", slog.String("event", event.Event), sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid payment event"))
			return
		}
		log.Error("failed to apply payment", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not process payment event"))
		return
	}

	log.Info("webhook processed", slog.String("event", event.Event), slog.String("payment_id", event.Object.ID))
	render.JSON(w, r, response.OKWithData(nil))
}
