package quizController

import (
	"log"

	"quizzer/database"
	"quizzer/middleware"
	"quizzer/models"
	"quizzer/policy"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CreateQuiz creates an empty quiz owned by the caller.
func CreateQuiz(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := new(struct {
		Title  string `json:"title"`
		Public bool   `json:"public"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	quiz := models.Quiz{
		OwnerID: user.ID,
		Title:   reqData.Title,
		Public:  reqData.Public,
	}

	if err := database.Database.Db.Create(&quiz).Error; err != nil {
		log.Printf("Error creating quiz: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created!", quizPayload(quiz, false))
}

// ListQuizzes lists public quizzes, paginated.
func ListQuizzes(c *fiber.Ctx) error {
	if _, ok := currentUser(c); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var quizzes []models.Quiz
	err := database.Database.Db.
		Where("public = ?", true).
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&quizzes).Error
	if err != nil {
		log.Printf("Error listing quizzes: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch quizzes!", nil)
	}

	payload := make([]fiber.Map, 0, len(quizzes))
	for _, quiz := range quizzes {
		payload = append(payload, fiber.Map{
			"uuid":   quiz.UUID,
			"title":  quiz.Title,
			"public": quiz.Public,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quizzes fetched!", payload)
}

// GetQuiz returns a quiz with its questions and answers. Owners see
// everything; other callers get a redacted view of public quizzes and a
// 404 for private ones.
func GetQuiz(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	var quiz models.Quiz
	err := database.Database.Db.
		Preload("Questions.Answers").
		Where("uuid = ?", quizUUID).
		First(&quiz).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionRead, policy.QuizResource{Quiz: &quiz})
	if !decision.Allow {
		// Addressed by id, so a denied read looks identical to a missing row.
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched!", quizPayload(quiz, decision.RedactCorrectness))
}

// UpdateQuiz changes title/public. Owner only.
func UpdateQuiz(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	quiz, found := findQuizByUUID(database.Database.Db, quizUUID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionWrite, policy.QuizResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	reqData := new(struct {
		Title  *string `json:"title"`
		Public *bool   `json:"public"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Public != nil {
		updates["public"] = *reqData.Public
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(quiz).Updates(updates).Error; err != nil {
			log.Printf("Error updating quiz: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update quiz!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated!", quizPayload(*quiz, false))
}

// DeleteQuiz removes the quiz and cascades to its questions, answers and
// every recorded attempt. Owner only.
func DeleteQuiz(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	quiz, found := findQuizByUUID(database.Database.Db, quizUUID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	decision := policy.Evaluate(user.ID, policy.ActionDelete, policy.QuizResource{Quiz: quiz})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You are not the owner of this quiz!", nil)
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&models.Question{}).Where("quiz_id = ?", quiz.ID).Pluck("id", &questionIDs).Error; err != nil {
			return err
		}
		if err := purgeAttemptRows(tx, questionIDs); err != nil {
			return err
		}
		if len(questionIDs) > 0 {
			if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("quiz_id = ?", quiz.ID).Delete(&models.QuizTaken{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(quiz).Error
	})
	if err != nil {
		log.Printf("Error deleting quiz: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted!", nil)
}
