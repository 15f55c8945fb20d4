// Package services содержит рассылку email-уведомлений о смене статуса
// контракта, потребляемых из очередей брокера сообщений.
package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"log/slog"

	smtplib "github.com/magabrotheeeer/plan-connect/internal/lib/smtp"
	"github.com/magabrotheeeer/plan-connect/internal/lib/sl"
	"github.com/magabrotheeeer/plan-connect/internal/models"
)

// SenderService отправляет письма клиентам по уведомлениям из очередей.
type SenderService struct {
	transport smtplib.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtplib.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendContractApproved отправляет письмо об одобрении контракта.
func (s *SenderService) SendContractApproved(body []byte) error {
	var notification models.ContractNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Ваша заявка на тарифный план одобрена"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаша заявка на тарифный план %s одобрена консультантом.\nПлан активен до %s.",
		notification.CustomerName, notification.PlanName,
		notification.ExpiresAt.Format("02.01.2006 15:04"))

	return s.sendEmail([]string{notification.CustomerEmail}, subject, bodyText)
}

// SendContractExpired отправляет письмо об истечении срока контракта.
func (s *SenderService) SendContractExpired(body []byte) error {
	var notification models.ContractNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Срок действия тарифного плана истёк"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nСрок действия тарифного плана %s истёк.\nЧтобы продолжить пользоваться услугами, оформите новую заявку.",
		notification.CustomerName, notification.PlanName)

	return s.sendEmail([]string{notification.CustomerEmail}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
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
	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}
	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}
	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
