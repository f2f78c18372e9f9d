// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendUpcomingChargeReminder(toEmail, donorName string, amount float64, currency string, chargeDate time.Time) error
	SendPaymentFailed(toEmail, donorName string, amount float64, currency string, retryDate time.Time) error
	SendSubscriptionCancelled(toEmail, donorName, reason string) error
	SendReceipt(toEmail, donorName, receiptNumber string, amount float64, currency string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	orgName     string
}

func NewEmailService(host string, port int, username, password, senderEmail, orgName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		orgName:     orgName,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	return nil
}

func (s *emailService) SendUpcomingChargeReminder(toEmail, donorName string, amount float64, currency string, chargeDate time.Time) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Upcoming donation</h2>
			<p>Hi %s,</p>
			<p>Your recurring donation of <b>%.2f %s</b> to %s will be charged on %s.</p>
			<p>No action is needed. You can pause or cancel anytime from your donor page.</p>
		</div>
	`, donorName, amount, currency, s.orgName, chargeDate.Format("January 2, 2006"))

	return s.send(toEmail, "Reminder: upcoming recurring donation", body)
}

func (s *emailService) SendPaymentFailed(toEmail, donorName string, amount float64, currency string, retryDate time.Time) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment failed</h2>
			<p>Hi %s,</p>
			<p>We could not process your recurring donation of <b>%.2f %s</b>.</p>
			<p>We will retry on %s. Please check your payment method if the problem persists.</p>
		</div>
	`, donorName, amount, currency, retryDate.Format("January 2, 2006"))

	return s.send(toEmail, "Your recurring donation could not be processed", body)
}

func (s *emailService) SendSubscriptionCancelled(toEmail, donorName, reason string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Recurring donation cancelled</h2>
			<p>Hi %s,</p>
			<p>Your recurring donation has been cancelled (%s).</p>
			<p>Thank you for your past support of %s.</p>
		</div>
	`, donorName, reason, s.orgName)

	return s.send(toEmail, "Your recurring donation was cancelled", body)
}

func (s *emailService) SendReceipt(toEmail, donorName, receiptNumber string, amount float64, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Donation receipt</h2>
			<p>Hi %s,</p>
			<p>Thank you for your donation of <b>%.2f %s</b> to %s.</p>
			<p>Your tax receipt number is <b>%s</b>. Keep it for your records.</p>
		</div>
	`, donorName, amount, currency, s.orgName, receiptNumber)

	return s.send(toEmail, "Your donation receipt "+receiptNumber, body)
}
