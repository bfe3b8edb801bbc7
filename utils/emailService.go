package utils

import (
	"fmt"
	"log"

	"quizzer/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers one HTML mail through Sendgrid. A missing API key
// disables delivery instead of failing callers.
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig.SendgridApiKey == "" {
		log.Printf("Email disabled, skipping %q to %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail("Quizzer", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridApiKey)
	response, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if response.StatusCode >= 400 {
		log.Printf("Sendgrid rejected email to %s: %d %s", toEmail, response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid rejected email, code: %d", response.StatusCode)
	}
	return nil
}

func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif;">
				<h2>Welcome to Quizzer, %s!</h2>
				<p>Your account is ready. Create your first quiz or take a public one.</p>
			</body>
		</html>`, name)

	if err := SendEmail(email, name, "Welcome to Quizzer", body); err != nil {
		log.Printf("Error sending welcome email: %v", err)
	}
}

func SendAttemptEmail(ownerEmail, ownerName, quizTitle, takerName string) {
	body := fmt.Sprintf(`
		<html>
			<body style="font-family: Arial, sans-serif;">
				<h2>New attempt on your quiz</h2>
				<p><strong>%s</strong> just took <strong>%s</strong>. Visit the scores page to see the result.</p>
			</body>
		</html>`, takerName, quizTitle)

	if err := SendEmail(ownerEmail, ownerName, "New quiz attempt: "+quizTitle, body); err != nil {
		log.Printf("Error sending attempt email: %v", err)
	}
}
