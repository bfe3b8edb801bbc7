// Package scoring computes weighted question scores and aggregate quiz
// scores for submitted attempts, writing results through the score cache.
package scoring

import (
	"errors"
	"math"

	"quizzer/apperrors"
	"quizzer/cache"
	"quizzer/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Engine reads quiz rows and user submissions; it never mutates them.
type Engine struct {
	db        *gorm.DB
	cache     cache.ScoreCache
	clampQuiz bool
}

// NewEngine wires the engine. clampQuiz caps QuizScore results to [0,1].
func NewEngine(db *gorm.DB, scoreCache cache.ScoreCache, clampQuiz bool) *Engine {
	return &Engine{db: db, cache: scoreCache, clampQuiz: clampQuiz}
}

// QuestionScore returns the user's weighted score for one question.
//
// With C correct and W wrong options, each selected correct option earns
// round(1/C, 2) and each selected wrong option costs round(1/W, 2), so a
// user selecting exactly the correct set scores 1.0 and a wrong pick costs
// as much as a right pick earns. The result can go negative.
func (e *Engine) QuestionScore(user *models.User, questionUUID uuid.UUID) (float64, error) {
	key := cache.AnswerKey(questionUUID, user.UUID)
	if score, ok := e.cache.Get(key); ok {
		return score, nil
	}

	var question models.Question
	if err := e.db.Where("uuid = ?", questionUUID).First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("Question does not exist")
		}
		return 0, err
	}

	var submission models.UserAnswer
	err := e.db.Preload("Answers").
		Where("question_id = ? AND user_id = ?", question.ID, user.ID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("User has not answered this question")
		}
		return 0, err
	}

	var answers []models.Answer
	if err := e.db.Where("question_id = ?", question.ID).Find(&answers).Error; err != nil {
		return 0, err
	}

	correct := 0
	for _, answer := range answers {
		if answer.IsAnswer {
			correct++
		}
	}
	wrong := len(answers) - correct

	var gain, loss float64
	if correct > 0 {
		gain = round2(1.0 / float64(correct))
	}
	if wrong > 0 {
		loss = round2(1.0 / float64(wrong))
	}

	score := 0.0
	for _, selected := range submission.Answers {
		if selected.IsAnswer {
			score += gain
		} else {
			score -= loss
		}
	}
	score = round2(score)

	e.cache.Set(key, score)
	return score, nil
}

// QuizScore averages QuestionScore over every question of the quiz the
// user answered. An attempt that answered zero questions cannot be scored
// and fails explicitly instead of dividing by zero.
func (e *Engine) QuizScore(user *models.User, quizUUID uuid.UUID) (float64, error) {
	key := cache.QuizKey(quizUUID, user.UUID)
	if score, ok := e.cache.Get(key); ok {
		return score, nil
	}

	var quiz models.Quiz
	if err := e.db.Where("uuid = ?", quizUUID).First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("Quiz does not exist")
		}
		return 0, err
	}

	var taken models.QuizTaken
	err := e.db.Where("quiz_id = ? AND user_id = ?", quiz.ID, user.ID).First(&taken).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.NotFound("User has not taken this quiz")
		}
		return 0, err
	}

	var questions []models.Question
	if err := e.db.Where("quiz_id = ?", quiz.ID).Find(&questions).Error; err != nil {
		return 0, err
	}

	total := 0.0
	answered := 0
	for _, question := range questions {
		questionScore, err := e.QuestionScore(user, question.UUID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return 0, err
		}
		total += questionScore
		answered++
	}

	if answered == 0 {
		return 0, apperrors.Validation("Attempt has no answered questions to score")
	}

	score := round2(total / float64(answered))
	if e.clampQuiz {
		score = clamp01(score)
	}

	e.cache.Set(key, score)
	return score, nil
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
