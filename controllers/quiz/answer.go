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

// CreateAnswer adds an answer option to a question the caller owns.
func CreateAnswer(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, question, status := resolveAnswerParent(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionWrite, policy.AnswerResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	reqData := new(struct {
		Text     string `json:"text"`
		IsAnswer bool   `json:"is_answer"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var answerCount int64
	if err := db.Model(&models.Answer{}).Where("question_id = ?", question.ID).Count(&answerCount).Error; err != nil {
		log.Printf("Error counting answers: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create answer!", nil)
	}
	if int(answerCount) >= config.AppConfig.MaxAnswersPerQuestion {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answers must not be more than 5!", nil)
	}

	answer := models.Answer{
		QuestionID: question.ID,
		Text:       reqData.Text,
		IsAnswer:   reqData.IsAnswer,
	}

	if err := db.Create(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answer texts must be unique within a question!", nil)
		}
		log.Printf("Error creating answer: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create answer!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Answer created!", answerPayload(answer, false))
}

// GetAnswer returns one answer, redacted for non-owner readers.
func GetAnswer(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, _, answer, status := resolveAnswer(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionRead, policy.AnswerResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Answer not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer fetched!", answerPayload(*answer, decision.RedactCorrectness))
}

// UpdateAnswer changes text/correctness. Owner only.
func UpdateAnswer(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, _, answer, status := resolveAnswer(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionWrite, policy.AnswerResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	reqData := new(struct {
		Text     *string `json:"text"`
		IsAnswer *bool   `json:"is_answer"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Text != nil {
		updates["text"] = *reqData.Text
	}
	if reqData.IsAnswer != nil {
		updates["is_answer"] = *reqData.IsAnswer
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(answer).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Answer texts must be unique within a question!", nil)
			}
			log.Printf("Error updating answer: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update answer!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer updated!", answerPayload(*answer, false))
}

// DeleteAnswer removes an answer option. Owner only.
func DeleteAnswer(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quiz, _, answer, status := resolveAnswer(c)
	if status != fiber.StatusOK {
		return middleware.JsonResponse(c, status, false, resolveFailureMessage(status), nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionDelete, policy.AnswerResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	// Selections referencing the answer go first; the submissions
	// themselves survive minus this pick.
	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM user_answer_selections WHERE answer_id = ?", answer.ID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(answer).Error
	})
	if err != nil {
		log.Printf("Error deleting answer: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete answer!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer deleted!", nil)
}

// resolveAnswerParent resolves the quiz/question addressed by the
// create-answer route.
func resolveAnswerParent(c *fiber.Ctx) (*models.Quiz, *models.Question, int) {
	quizUUID, ok := parseUUIDParam(c, "quiz_uuid")
	if !ok {
		return nil, nil, fiber.StatusBadRequest
	}
	questionUUID, ok := parseUUIDParam(c, "question_uuid")
	if !ok {
		return nil, nil, fiber.StatusBadRequest
	}

	db := database.Database.Db

	quiz, found := findQuizByUUID(db, quizUUID)
	if !found {
		return nil, nil, fiber.StatusNotFound
	}

	var question models.Question
	err := db.Where("uuid = ? AND quiz_id = ?", questionUUID, quiz.ID).First(&question).Error
	if err != nil {
		return nil, nil, fiber.StatusNotFound
	}

	return quiz, &question, fiber.StatusOK
}

func resolveAnswer(c *fiber.Ctx) (*models.Quiz, *models.Question, *models.Answer, int) {
	quiz, question, status := resolveAnswerParent(c)
	if status != fiber.StatusOK {
		return nil, nil, nil, status
	}

	answerUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return nil, nil, nil, fiber.StatusBadRequest
	}

	var answer models.Answer
	err := database.Database.Db.
		Where("uuid = ? AND question_id = ?", answerUUID, question.ID).
		First(&answer).Error
	if err != nil {
		return nil, nil, nil, fiber.StatusNotFound
	}

	return quiz, question, &answer, fiber.StatusOK
}
