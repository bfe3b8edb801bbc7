package quizController

import (
	"errors"
	"log"

	"quizzer/config"
	"quizzer/database"
	"quizzer/middleware"
	"quizzer/models"
	"quizzer/policy"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateQuestion adds a question, with its answers, to a quiz the caller
// owns. Enforces the per-quiz question limit and per-question answer limit.
func CreateQuestion(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	db := database.Database.Db

	quiz, found := findQuizByUUID(db, quizUUID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionWrite, policy.QuizResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	reqData := new(struct {
		Text    string `json:"text"`
		Answers []struct {
			Text     string `json:"text"`
			IsAnswer bool   `json:"is_answer"`
		} `json:"answers"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if len(reqData.Answers) > config.AppConfig.MaxAnswersPerQuestion {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answers must not be more than 5!", nil)
	}

	var questionCount int64
	if err := db.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Count(&questionCount).Error; err != nil {
		log.Printf("Error counting questions: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}
	if int(questionCount) >= config.AppConfig.MaxQuestionsPerQuiz {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Number of questions per quiz cannot be greater than 10!", nil)
	}

	question := models.Question{QuizID: quiz.ID, Text: reqData.Text}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		for _, answerData := range reqData.Answers {
			answer := models.Answer{
				QuestionID: question.ID,
				Text:       answerData.Text,
				IsAnswer:   answerData.IsAnswer,
			}
			if err := tx.Create(&answer).Error; err != nil {
				return err
			}
			question.Answers = append(question.Answers, answer)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answer texts must be unique within a question!", nil)
		}
		log.Printf("Error creating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question created!", questionPayload(question, false))
}

// ListQuestions returns every question of a quiz with its answers,
// redacted for non-owner readers of public quizzes.
func ListQuestions(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	db := database.Database.Db

	quiz, found := findQuizByUUID(db, quizUUID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionRead, policy.QuestionResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var questions []models.Question
	if err := db.Preload("Answers").Where("quiz_id = ?", quiz.ID).Find(&questions).Error; err != nil {
		log.Printf("Error listing questions: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}

	payload := make([]fiber.Map, 0, len(questions))
	for _, question := range questions {
		payload = append(payload, questionPayload(question, decision.RedactCorrectness))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched!", payload)
}

// GetQuestion returns one question with its answers, redacted for
// non-owner readers of public quizzes.
func GetQuestion(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, question, status := resolveQuestion(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionRead, policy.QuestionResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Question not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched!", questionPayload(*question, decision.RedactCorrectness))
}

// UpdateQuestion changes the question text. Owner only.
func UpdateQuestion(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, question, status := resolveQuestion(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionWrite, policy.QuestionResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	reqData := new(struct {
		Text string `json:"text"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	if err := database.Database.Db.Model(question).Update("text", reqData.Text).Error; err != nil {
		log.Printf("Error updating question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated!", questionPayload(*question, false))
}

// DeleteQuestion removes the question, its answers and any user answers
// recorded against it. Owner only.
func DeleteQuestion(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, question, status := resolveQuestion(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionDelete, policy.QuestionResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := purgeAttemptRows(tx, []uint{question.ID}); err != nil {
			return err
		}
		if err := tx.Unscoped().Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(question).Error
	})
	if err != nil {
		log.Printf("Error deleting question: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete question!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted!", nil)
}

func resolveFailureMessage(status int) string {
	if status == fiber.StatusBadRequest {
		return "Invalid id!"
	}
	return "Question not found!"
}

// resolveQuestion loads the quiz/question pair addressed by the route and
// verifies the question actually belongs to the addressed quiz.
func resolveQuestion(c *fiber.Ctx) (*models.Quiz, *models.Question, int) {
	quizUUID, ok := parseUUIDParam(c, "quiz_uuid")
	if !ok {
		return nil, nil, fiber.StatusBadRequest
	}
	questionUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return nil, nil, fiber.StatusBadRequest
	}

	db := database.Database.Db

	quiz, found := findQuizByUUID(db, quizUUID)
	if !found {
		return nil, nil, fiber.StatusNotFound
	}

	var question models.Question
	err := db.Preload("Answers").
		Where("uuid = ? AND quiz_id = ?", questionUUID, quiz.ID).
		First(&question).Error
	if err != nil {
		return nil, nil, fiber.StatusNotFound
	}

	return quiz, &question, fiber.StatusOK
}
