package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quiz is owned by a single user. Non-owners may read it only when Public
// is true, and never see answer correctness.
type Quiz struct {
	gorm.Model
	UUID      uuid.UUID  `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	OwnerID   uint       `json:"owner_id" gorm:"index;not null"`
	Title     string     `json:"title" gorm:"size:128;not null"`
	Public    bool       `json:"public" gorm:"default:false"`
	Questions []Question `json:"questions,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

type Question struct {
	gorm.Model
	UUID    uuid.UUID `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	QuizID  uint      `json:"quiz_id" gorm:"index;not null"`
	Text    string    `json:"text" gorm:"size:200;not null"`
	Answers []Answer  `json:"answers,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// Answer text is unique within its question.
type Answer struct {
	gorm.Model
	UUID       uuid.UUID `json:"uuid" gorm:"type:uuid;uniqueIndex;not null"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answers_question_text"`
	Text       string    `json:"text" gorm:"size:128;not null;uniqueIndex:idx_answers_question_text"`
	IsAnswer   bool      `json:"is_answer" gorm:"default:false"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	return nil
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	return nil
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	return nil
}
