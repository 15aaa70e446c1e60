// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"gorm.io/gorm"

	"github.com/adotepet/adotepet-backend/internal/config"
	"github.com/adotepet/adotepet-backend/internal/models"
)

type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Authentication notifications
func (s *NotificationService) SendWelcomeEmail(user *models.User) error {
	template := s.getEmailTemplate("welcome")

	data := map[string]interface{}{
		"Name":         user.Name,
		"PlatformName": "AdotePet",
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(user.Email, template.Subject, body)
}

// Adoption notifications
func (s *NotificationService) SendAdoptionApprovedNotification(request *models.AdoptionRequest) error {
	template := s.getEmailTemplate("adoption_approved")

	data := map[string]interface{}{
		"Name":       request.User.Name,
		"DogName":    request.Dog.Name,
		"RequestURL": fmt.Sprintf("%s/adoptions/%s", s.config.Frontend.BaseURL, request.ID),
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(request.User.Email, template.Subject, body)
}

func (s *NotificationService) SendAdoptionRejectedNotification(request *models.AdoptionRequest) error {
	template := s.getEmailTemplate("adoption_rejected")

	data := map[string]interface{}{
		"Name":    request.User.Name,
		"DogName": request.Dog.Name,
		"Reason":  request.RejectionReason,
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(request.User.Email, template.Subject, body)
}

func (s *NotificationService) SendPaymentConfirmedNotification(charge *models.PixCharge) error {
	template := s.getEmailTemplate("payment_confirmed")

	data := map[string]interface{}{
		"Name":   charge.User.Name,
		"Amount": fmt.Sprintf("R$ %.2f", charge.Amount),
		"TxID":   charge.TxID,
	}

	body, err := s.renderTemplate(template.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	return s.sendEmail(charge.User.Email, template.Subject, body)
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"welcome": {
			Subject: "Welcome to AdotePet",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Welcome {{.Name}}!</h2>
	<p>Thank you for joining {{.PlatformName}}. Browse the dogs waiting for a home and send your first adoption request.</p>
	<p>Best regards,<br>{{.PlatformName}} Team</p>
</body>
</html>`,
		},
		"adoption_approved": {
			Subject: "Your adoption request was approved!",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Great news, {{.Name}}!</h2>
	<p>Your request to adopt <strong>{{.DogName}}</strong> has been approved.</p>
	<p>The shelter will contact you to arrange the pickup.</p>
	<a href="{{.RequestURL}}">View your request</a>
	<p>Best regards,<br>AdotePet Team</p>
</body>
</html>`,
		},
		"adoption_rejected": {
			Subject: "Update on your adoption request",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Unfortunately your request to adopt <strong>{{.DogName}}</strong> was not approved.</p>
	<p>Reason: {{.Reason}}</p>
	<p>There are many other dogs waiting for a home. Keep looking!</p>
	<p>Best regards,<br>AdotePet Team</p>
</body>
</html>`,
		},
		"payment_confirmed": {
			Subject: "PIX payment confirmed",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Name}},</h2>
	<p>Your PIX payment of {{.Amount}} was confirmed (txid {{.TxID}}).</p>
	<p>Best regards,<br>AdotePet Team</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	return EmailTemplate{
		Subject: "AdotePet",
		Body:    "<html><body><p>{{.Name}}</p></body></html>",
	}
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email not configured, just log
		fmt.Printf("Email would be sent to %s: %s\n", to, subject)
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}
