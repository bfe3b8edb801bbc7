package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizTaken is the commit record of a user's one and only attempt at a
// quiz. The (quiz_id, user_id) unique index is the authoritative guard
// against retakes, including concurrent submissions.
type QuizTaken struct {
	gorm.Model
	UUID   uuid.UUID `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	QuizID uint      `json:"quiz_id" gorm:"not null;uniqueIndex:idx_quiz_taken_quiz_user"`
	UserID uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_quiz_taken_quiz_user"`
	Quiz   Quiz      `json:"-"`
	User   User      `json:"-"`
}

// UserAnswer records which options a user selected for one question.
// Rows are written once during submission and never updated.
type UserAnswer struct {
	gorm.Model
	UUID       uuid.UUID `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	UserID     uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_user_answers_question_user"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_user_answers_question_user"`
	Answers    []Answer  `json:"answers,omitempty" gorm:"many2many:user_answer_selections"`
}

func (qt *QuizTaken) BeforeCreate(tx *gorm.DB) error {
	if qt.UUID == uuid.Nil {
		qt.UUID = uuid.New()
	}
	return nil
}

func (ua *UserAnswer) BeforeCreate(tx *gorm.DB) error {
	if ua.UUID == uuid.Nil {
		ua.UUID = uuid.New()
	}
	return nil
}
