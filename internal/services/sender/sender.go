// Package sender превращает уведомления о бронях из очереди в письма владельцам карточек.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/cardlink/internal/lib/sl"
	"github.com/magabrotheeeer/cardlink/internal/lib/smtp"
	"github.com/magabrotheeeer/cardlink/internal/models"
)

// ErrNoRecipient у владельца карточки не указан адрес.
var ErrNoRecipient = errors.New("notification has no recipient")

// Service отправляет письма через SMTP транспорт.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendBookingNotification разбирает сообщение очереди и отправляет владельцу
// карточки письмо о новой брони. Сообщение без адреса отбрасывается.
func (s *Service) SendBookingNotification(ctx context.Context, body []byte) error {
	const op = "sender.SendBookingNotification"

	var msg models.BookingNotification
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: error unmarshalling message: %w", op, err)
	}
	if msg.OwnerEmail == "" {
		s.log.Warn("booking notification without owner email", slog.String("card_id", msg.CardID))
		return nil
	}

	subject := fmt.Sprintf("Новая запись на %s %s", msg.Date, msg.Time)
	if err := s.sendEmail(ctx, []string{msg.OwnerEmail}, subject, bookingText(msg)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func bookingText(msg models.BookingNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Здравствуйте!\n\nНа карточку «%s» записался новый клиент.\n\n", msg.CardTitle)
	fmt.Fprintf(&b, "Имя: %s\nТелефон: %s\n", msg.ClientName, msg.ClientPhone)
	if msg.Interest != "" {
		fmt.Fprintf(&b, "Интерес: %s\n", msg.Interest)
	}
	fmt.Fprintf(&b, "Дата и время: %s %s\n", msg.Date, msg.Time)
	if msg.MeetingLink != "" {
		fmt.Fprintf(&b, "Ссылка на встречу: %s\n", msg.MeetingLink)
	}
	return b.String()
}

func (s *Service) sendEmail(ctx context.Context, to []string, subject, bodyText string) error {
	if len(to) == 0 {
		return ErrNoRecipient
	}
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect(ctx)
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err := wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err := client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
