// Package submission implements the take-quiz workflow: one atomic
// transaction that validates every submitted question and answer against
// the quiz, records the selections, and commits the attempt.
package submission

import (
	"errors"

	"quizzer/apperrors"
	"quizzer/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerEntry struct {
	UUID uuid.UUID `json:"uuid"`
}

type QuestionEntry struct {
	UUID    uuid.UUID     `json:"uuid"`
	Answers []AnswerEntry `json:"answers"`
}

type Payload struct {
	Questions []QuestionEntry `json:"questions"`
}

// Submit records the user's attempt at the quiz. Everything happens inside
// one transaction: any validation failure or uniqueness violation rolls
// back all UserAnswer rows and the attempt itself.
//
// Duplicate detection leans on the storage-level unique indexes, not on a
// prior SELECT, so two concurrent submissions for the same (quiz, user)
// serialize at the constraint and exactly one succeeds.
func Submit(db *gorm.DB, user *models.User, quizUUID uuid.UUID, payload Payload, allowEmpty bool) (*models.QuizTaken, error) {
	var taken *models.QuizTaken

	err := db.Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.Where("uuid = ?", quizUUID).First(&quiz).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Quiz does not exist")
			}
			return err
		}

		if len(payload.Questions) == 0 && !allowEmpty {
			return apperrors.Validation("Attempt must answer at least one question")
		}

		for _, questionEntry := range payload.Questions {
			if err := submitQuestion(tx, user, &quiz, questionEntry); err != nil {
				return err
			}
		}

		record := models.QuizTaken{QuizID: quiz.ID, UserID: user.ID}
		if err := tx.Create(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("User has already taken this quiz", err)
			}
			return err
		}

		taken = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return taken, nil
}

func submitQuestion(tx *gorm.DB, user *models.User, quiz *models.Quiz, entry QuestionEntry) error {
	var question models.Question
	if err := tx.Where("uuid = ?", entry.UUID).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Validation("Question does not exist")
		}
		return err
	}
	if question.QuizID != quiz.ID {
		return apperrors.Validation("Question is not related to quiz")
	}

	if len(entry.Answers) == 0 {
		return apperrors.Validation("Question entry must select at least one answer")
	}

	userAnswer := models.UserAnswer{UserID: user.ID, QuestionID: question.ID}
	if err := tx.Create(&userAnswer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("User has already answered this question", err)
		}
		return err
	}

	for _, answerEntry := range entry.Answers {
		var answer models.Answer
		if err := tx.Where("uuid = ?", answerEntry.UUID).First(&answer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.Validation("Answer does not exist")
			}
			return err
		}
		if answer.QuestionID != question.ID {
			return apperrors.Validation("Answer is not related to question")
		}

		if err := tx.Model(&userAnswer).Association("Answers").Append(&answer); err != nil {
			return err
		}
	}

	return nil
}
