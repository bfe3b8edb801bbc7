package quizController

import (
	"log"

	"quizzer/apperrors"
	"quizzer/config"
	"quizzer/database"
	"quizzer/middleware"
	"quizzer/models"
	"quizzer/policy"
	"quizzer/scoring"
	"quizzer/submission"
	"quizzer/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Engine is the shared scoring engine, wired from main.
var Engine *scoring.Engine

// Init injects the scoring engine used by the score endpoints.
func Init(engine *scoring.Engine) {
	Engine = engine
}

// TakeQuiz records the caller's one-time attempt at a quiz.
func TakeQuiz(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	var payload submission.Payload
	if err := c.BodyParser(&payload); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	taken, err := submission.Submit(db, user, quizUUID, payload, config.AppConfig.AllowEmptyAttempt)
	if err != nil {
		return middleware.DomainErrorResponse(c, err)
	}

	// Owner notifications are best effort and never block the response.
	go utils.NotifyAttempt(db, taken, user)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted!", fiber.Map{
		"uuid":      taken.UUID,
		"quiz_uuid": quizUUID,
		"user_uuid": user.UUID,
	})
}

// GetMyScore returns the caller's own score record for a quiz.
func GetMyScore(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	return scoreRecordResponse(c, user.ID, quizUUID, user)
}

// GetUserScore returns one user's score record for a quiz. Visible to that
// user and to the quiz owner only.
func GetUserScore(c *fiber.Ctx) error {
	caller, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}
	userUUID, ok := parseUUIDParam(c, "user_uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid user id!", nil)
	}

	var subject models.User
	if err := database.Database.Db.Where("uuid = ?", userUUID).First(&subject).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Score not found!", nil)
	}

	return scoreRecordResponse(c, caller.ID, quizUUID, &subject)
}

// ListScores lists every attempt on a quiz with its score. The query is
// filtered to quizzes the caller owns, so a non-owner gets an empty list
// rather than a denial.
func ListScores(c *fiber.Ctx) error {
	caller, ok := currentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	quizUUID, ok := parseUUIDParam(c, "uuid")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid quiz id!", nil)
	}

	db := database.Database.Db

	var attempts []models.QuizTaken
	err := db.
		Joins("JOIN quizzes ON quizzes.id = quiz_takens.quiz_id").
		Where("quizzes.uuid = ? AND quizzes.owner_id = ?", quizUUID, caller.ID).
		Preload("User").
		Find(&attempts).Error
	if err != nil {
		log.Printf("Error listing attempts: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch scores!", nil)
	}

	results := make([]fiber.Map, 0, len(attempts))
	for _, attempt := range attempts {
		score, err := Engine.QuizScore(&attempt.User, quizUUID)
		entry := fiber.Map{
			"user_uuid": attempt.User.UUID,
			"user_name": attempt.User.Name,
		}
		if err != nil {
			// An unanswered (empty) attempt has no computable score.
			entry["score"] = nil
		} else {
			entry["score"] = score
		}
		results = append(results, entry)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scores fetched!", results)
}

// scoreRecordResponse builds the per-question breakdown plus total for one
// user's attempt, enforcing attempt visibility.
func scoreRecordResponse(c *fiber.Ctx, callerID uint, quizUUID uuid.UUID, subject *models.User) error {
	db := database.Database.Db

	quiz, found := findQuizByUUID(db, quizUUID)
	if !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var taken models.QuizTaken
	if err := db.Where("quiz_id = ? AND user_id = ?", quiz.ID, subject.ID).First(&taken).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Score not found!", nil)
	}

	decision := policy.Evaluate(callerID, policy.ActionRead, policy.AttemptResource{
		AttemptUserID: taken.UserID,
		QuizOwnerID:   quiz.OwnerID,
	})
	if !decision.Allow {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You may not view this score!", nil)
	}

	var questions []models.Question
	if err := db.Where("quiz_id = ?", quiz.ID).Find(&questions).Error; err != nil {
		log.Printf("Error fetching questions: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch score!", nil)
	}

	breakdown := make([]fiber.Map, 0, len(questions))
	for _, question := range questions {
		questionScore, err := Engine.QuestionScore(subject, question.UUID)
		if apperrors.IsNotFound(err) {
			continue // question not answered in this attempt
		}
		if err != nil {
			return middleware.DomainErrorResponse(c, err)
		}
		breakdown = append(breakdown, fiber.Map{
			"question_uuid": question.UUID,
			"score":         questionScore,
		})
	}

	total, err := Engine.QuizScore(subject, quizUUID)
	if err != nil {
		return middleware.DomainErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Score fetched!", fiber.Map{
		"quiz_uuid": quiz.UUID,
		"user_uuid": subject.UUID,
		"score":     total,
		"questions": breakdown,
	})
}
