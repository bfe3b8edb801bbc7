package utils

import (
	"encoding/json"
	"log"
	"time"

	"quizzer/config"
	"quizzer/models"

	"github.com/go-resty/resty/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const eventAttemptSubmitted = "quiz.attempt.submitted"

// NotifyAttempt tells the quiz owner about a freshly committed attempt:
// an email, and a webhook POST when the owner configured a URL. Every
// webhook post is recorded in the delivery log. Failures are logged, never
// propagated — the attempt is already committed.
func NotifyAttempt(db *gorm.DB, taken *models.QuizTaken, taker *models.User) {
	var quiz models.Quiz
	if err := db.Where("id = ?", taken.QuizID).First(&quiz).Error; err != nil {
		log.Printf("[NOTIFY] Error loading quiz %d: %v", taken.QuizID, err)
		return
	}

	var owner models.User
	if err := db.Where("id = ?", quiz.OwnerID).First(&owner).Error; err != nil {
		log.Printf("[NOTIFY] Error loading owner %d: %v", quiz.OwnerID, err)
		return
	}

	SendAttemptEmail(owner.Email, owner.Name, quiz.Title, taker.Name)

	if owner.WebhookURL == "" {
		return
	}

	payload := map[string]interface{}{
		"event":        eventAttemptSubmitted,
		"quiz_uuid":    quiz.UUID,
		"quiz_title":   quiz.Title,
		"user_uuid":    taker.UUID,
		"user_name":    taker.Name,
		"submitted_at": taken.CreatedAt,
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[NOTIFY] Error marshalling payload: %v", err)
		return
	}

	delivery := models.WebhookDelivery{
		UserID:  owner.ID,
		URL:     owner.WebhookURL,
		Event:   eventAttemptSubmitted,
		Payload: datatypes.JSON(payloadJSON),
	}

	client := resty.New().
		SetTimeout(time.Duration(config.AppConfig.WebhookTimeoutSec) * time.Second)

	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payloadJSON).
		Post(owner.WebhookURL)
	if err != nil {
		log.Printf("[NOTIFY] Webhook post to %s failed: %v", owner.WebhookURL, err)
		delivery.SendError = err.Error()
	} else {
		delivery.StatusCode = resp.StatusCode()
		if resp.StatusCode() >= 400 {
			log.Printf("[NOTIFY] Webhook %s answered %d", owner.WebhookURL, resp.StatusCode())
		}
	}

	if err := db.Create(&delivery).Error; err != nil {
		log.Printf("[NOTIFY] Error recording webhook delivery: %v", err)
	}
}
