package utils

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// SendPurchaseConfirmation emails a buyer after their minutes are credited.
// Failures here are log-worthy but must never fail the webhook: the credit
// has already been committed.
func SendPurchaseConfirmation(to string, minutes int, amount float64, currency string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return fmt.Errorf("SMTP not configured")
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}

	m := gomail.NewMessage()
	m.SetHeader("From", os.Getenv("SMTP_FROM"))
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your TarotSphere minutes are ready")

	body := fmt.Sprintf(`
		<h2>Thank you for your purchase!</h2>
		<p>We have added <strong>%d consultation minutes</strong> to your account.</p>
		<p>Amount paid: %.2f %s</p>
		<p>Your minutes are available right away. See you at the table!</p>
	`, minutes, amount, currency)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}
