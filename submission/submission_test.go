package submission

import (
	"fmt"
	"strings"
	"testing"

	"quizzer/apperrors"
	"quizzer/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Answer{},
		&models.QuizTaken{},
		&models.UserAnswer{},
	))
	return db
}

type fixture struct {
	owner     *models.User
	taker     *models.User
	quiz      *models.Quiz
	questions []models.Question
	answers   map[uint][]models.Answer // by question id
}

// seedQuiz builds a quiz with two questions of two answers each, the
// first answer of each being correct.
func seedQuiz(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	owner := models.User{Name: "owner", Email: "owner@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	taker := models.User{Name: "taker", Email: "taker@example.com", Password: "x"}
	require.NoError(t, db.Create(&taker).Error)

	quiz := models.Quiz{OwnerID: owner.ID, Title: "geography", Public: true}
	require.NoError(t, db.Create(&quiz).Error)

	f := fixture{
		owner:   &owner,
		taker:   &taker,
		quiz:    &quiz,
		answers: make(map[uint][]models.Answer),
	}

	for i := 0; i < 2; i++ {
		question := models.Question{QuizID: quiz.ID, Text: fmt.Sprintf("question %d", i)}
		require.NoError(t, db.Create(&question).Error)
		f.questions = append(f.questions, question)

		correct := models.Answer{QuestionID: question.ID, Text: "right", IsAnswer: true}
		require.NoError(t, db.Create(&correct).Error)
		wrong := models.Answer{QuestionID: question.ID, Text: "wrong"}
		require.NoError(t, db.Create(&wrong).Error)
		f.answers[question.ID] = []models.Answer{correct, wrong}
	}
	return f
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}

func TestSubmitHappyPath(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	payload := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[0].UUID, Answers: []AnswerEntry{{UUID: f.answers[f.questions[0].ID][0].UUID}}},
		{UUID: f.questions[1].UUID, Answers: []AnswerEntry{{UUID: f.answers[f.questions[1].ID][1].UUID}}},
	}}

	taken, err := Submit(db, f.taker, f.quiz.UUID, payload, false)
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.Equal(t, f.quiz.ID, taken.QuizID)
	assert.Equal(t, f.taker.ID, taken.UserID)

	assert.EqualValues(t, 1, countRows(t, db, &models.QuizTaken{}))
	assert.EqualValues(t, 2, countRows(t, db, &models.UserAnswer{}))

	var stored models.UserAnswer
	require.NoError(t, db.Preload("Answers").
		Where("user_id = ? AND question_id = ?", f.taker.ID, f.questions[0].ID).
		First(&stored).Error)
	require.Len(t, stored.Answers, 1)
	assert.Equal(t, f.answers[f.questions[0].ID][0].UUID, stored.Answers[0].UUID)
}

func TestSubmitUnknownQuiz(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	_, err := Submit(db, f.taker, uuid.New(), Payload{}, false)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestSubmitSecondAttemptRejectedAndRolledBack(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	first := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[0].UUID, Answers: []AnswerEntry{{UUID: f.answers[f.questions[0].ID][0].UUID}}},
	}}
	_, err := Submit(db, f.taker, f.quiz.UUID, first, false)
	require.NoError(t, err)

	// Second attempt answers the other question, so it only trips the
	// (quiz, user) constraint at the very end — everything before must
	// still roll back.
	second := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[1].UUID, Answers: []AnswerEntry{{UUID: f.answers[f.questions[1].ID][0].UUID}}},
	}}
	_, err = Submit(db, f.taker, f.quiz.UUID, second, false)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "already taken")

	assert.EqualValues(t, 1, countRows(t, db, &models.QuizTaken{}))
	assert.EqualValues(t, 1, countRows(t, db, &models.UserAnswer{}))
}

func TestSubmitDuplicateQuestionAnswerRejected(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	payload := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[0].UUID, Answers: []AnswerEntry{{UUID: f.answers[f.questions[0].ID][0].UUID}}},
		{UUID: f.questions[0].UUID, Answers: []AnswerEntry{{UUID: f.answers[f.questions[0].ID][1].UUID}}},
	}}

	_, err := Submit(db, f.taker, f.quiz.UUID, payload, false)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "already answered")

	// Nothing survives the rollback.
	assert.EqualValues(t, 0, countRows(t, db, &models.QuizTaken{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.UserAnswer{}))
}

func TestSubmitQuestionFromAnotherQuiz(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	otherQuiz := models.Quiz{OwnerID: f.owner.ID, Title: "history", Public: true}
	require.NoError(t, db.Create(&otherQuiz).Error)
	foreign := models.Question{QuizID: otherQuiz.ID, Text: "foreign question"}
	require.NoError(t, db.Create(&foreign).Error)
	foreignAnswer := models.Answer{QuestionID: foreign.ID, Text: "any", IsAnswer: true}
	require.NoError(t, db.Create(&foreignAnswer).Error)

	payload := Payload{Questions: []QuestionEntry{
		{UUID: foreign.UUID, Answers: []AnswerEntry{{UUID: foreignAnswer.UUID}}},
	}}

	_, err := Submit(db, f.taker, f.quiz.UUID, payload, false)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "not related to quiz")

	assert.EqualValues(t, 0, countRows(t, db, &models.UserAnswer{}))
}

func TestSubmitAnswerFromAnotherQuestion(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	payload := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[0].UUID, Answers: []AnswerEntry{
			{UUID: f.answers[f.questions[1].ID][0].UUID},
		}},
	}}

	_, err := Submit(db, f.taker, f.quiz.UUID, payload, false)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "not related to question")

	// The UserAnswer created before the bad answer was hit must be gone.
	assert.EqualValues(t, 0, countRows(t, db, &models.UserAnswer{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.QuizTaken{}))
}

func TestSubmitUnknownAnswer(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	payload := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[0].UUID, Answers: []AnswerEntry{{UUID: uuid.New()}}},
	}}

	_, err := Submit(db, f.taker, f.quiz.UUID, payload, false)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "Answer does not exist")
}

func TestSubmitEmptyAttempt(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	_, err := Submit(db, f.taker, f.quiz.UUID, Payload{}, false)
	assert.True(t, apperrors.IsValidation(err))

	// With the permissive flag an empty attempt commits only the
	// QuizTaken row.
	taken, err := Submit(db, f.taker, f.quiz.UUID, Payload{}, true)
	require.NoError(t, err)
	require.NotNil(t, taken)
	assert.EqualValues(t, 1, countRows(t, db, &models.QuizTaken{}))
	assert.EqualValues(t, 0, countRows(t, db, &models.UserAnswer{}))
}

func TestSubmitQuestionWithoutAnswerSelection(t *testing.T) {
	db := openTestDB(t)
	f := seedQuiz(t, db)

	payload := Payload{Questions: []QuestionEntry{
		{UUID: f.questions[0].UUID},
	}}

	_, err := Submit(db, f.taker, f.quiz.UUID, payload, false)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "at least one answer")
}
