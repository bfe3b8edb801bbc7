package quizController

import (
	"errors"
	"log"

	"quizzer/database"
	"quizzer/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// currentUser resolves the authenticated user row from the JWT-provided id.
func currentUser(c *fiber.Ctx) (*models.User, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, false
	}

	var user models.User
	if err := database.Database.Db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	parsed, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

// findQuizByUUID loads a quiz row. The bool is false both for a missing
// row and for storage errors; callers answer 404 either way.
func findQuizByUUID(db *gorm.DB, quizUUID uuid.UUID) (*models.Quiz, bool) {
	var quiz models.Quiz
	if err := db.Where("uuid = ?", quizUUID).First(&quiz).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error fetching quiz %s: %v", quizUUID, err)
		}
		return nil, false
	}
	return &quiz, true
}

// purgeAttemptRows removes the attempt records tied to a set of questions
// so the questions and their answers can be deleted without tripping
// foreign keys: selection join rows first, then the user answers. Runs
// inside the caller's delete transaction.
func purgeAttemptRows(tx *gorm.DB, questionIDs []uint) error {
	if len(questionIDs) == 0 {
		return nil
	}

	var userAnswerIDs []uint
	err := tx.Model(&models.UserAnswer{}).
		Where("question_id IN ?", questionIDs).
		Pluck("id", &userAnswerIDs).Error
	if err != nil {
		return err
	}
	if len(userAnswerIDs) > 0 {
		if err := tx.Exec("DELETE FROM user_answer_selections WHERE user_answer_id IN ?", userAnswerIDs).Error; err != nil {
			return err
		}
	}
	return tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.UserAnswer{}).Error
}

// answerPayload serializes an answer. Redacted views omit is_answer
// entirely rather than zeroing it, so a non-owner cannot tell correct
// options apart from wrong ones.
func answerPayload(answer models.Answer, redact bool) fiber.Map {
	payload := fiber.Map{
		"uuid": answer.UUID,
		"text": answer.Text,
	}
	if !redact {
		payload["is_answer"] = answer.IsAnswer
	}
	return payload
}

func questionPayload(question models.Question, redact bool) fiber.Map {
	answers := make([]fiber.Map, 0, len(question.Answers))
	for _, answer := range question.Answers {
		answers = append(answers, answerPayload(answer, redact))
	}
	return fiber.Map{
		"uuid":    question.UUID,
		"text":    question.Text,
		"answers": answers,
	}
}

func quizPayload(quiz models.Quiz, redact bool) fiber.Map {
	questions := make([]fiber.Map, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		questions = append(questions, questionPayload(question, redact))
	}
	return fiber.Map{
		"uuid":      quiz.UUID,
		"title":     quiz.Title,
		"public":    quiz.Public,
		"questions": questions,
	}
}
