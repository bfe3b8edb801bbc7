package quizController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quizzer/cache"
	"quizzer/config"
	"quizzer/database"
	"quizzer/middleware"
	"quizzer/models"
	"quizzer/scoring"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	config.LoadConfig()

	// _fk=1 so the tests see the same foreign-key enforcement postgres
	// applies in production.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", strings.ReplaceAll(t.Name(), "/", "_"))
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
		&models.WebhookDelivery{},
	))

	database.Database = database.DbInstance{Db: db}
	Init(scoring.NewEngine(db, cache.NewMemoryCache(0), false))

	app := fiber.New()
	quizGroup := app.Group("/quiz")
	quizGroup.Get("/:uuid", middleware.JWTMiddleware, GetQuiz)
	quizGroup.Delete("/:uuid", middleware.JWTMiddleware, DeleteQuiz)
	quizGroup.Delete("/:quiz_uuid/question/:uuid", middleware.JWTMiddleware, DeleteQuestion)
	quizGroup.Delete("/:quiz_uuid/question/:question_uuid/answer/:uuid", middleware.JWTMiddleware, DeleteAnswer)
	quizGroup.Post("/:uuid/take", middleware.JWTMiddleware, TakeQuiz)
	quizGroup.Get("/:uuid/score", middleware.JWTMiddleware, GetMyScore)
	quizGroup.Get("/:uuid/score/:user_uuid", middleware.JWTMiddleware, GetUserScore)
	quizGroup.Get("/:uuid/scores", middleware.JWTMiddleware, ListScores)

	return app, db
}

func createUser(t *testing.T, db *gorm.DB, email string) (*models.User, string) {
	t.Helper()

	user := models.User{Name: strings.Split(email, "@")[0], Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Email)
	require.NoError(t, err)
	return &user, token
}

// seedPublicQuiz creates a public quiz for owner with one question of one
// correct and four wrong answers.
func seedPublicQuiz(t *testing.T, db *gorm.DB, owner *models.User, public bool) (*models.Quiz, *models.Question, []models.Answer) {
	t.Helper()

	quiz := models.Quiz{OwnerID: owner.ID, Title: "capitals", Public: public}
	require.NoError(t, db.Create(&quiz).Error)

	question := models.Question{QuizID: quiz.ID, Text: "capital of France?"}
	require.NoError(t, db.Create(&question).Error)

	answers := []models.Answer{{QuestionID: question.ID, Text: "Paris", IsAnswer: true}}
	for _, text := range []string{"Lyon", "Nice", "Lille", "Brest"} {
		answers = append(answers, models.Answer{QuestionID: question.ID, Text: text})
	}
	for i := range answers {
		require.NoError(t, db.Create(&answers[i]).Error)
	}
	return &quiz, &question, answers
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed))
	}
	return resp, parsed
}

func TestGetQuizRedactsCorrectnessForNonOwner(t *testing.T) {
	app, db := setupApp(t)
	owner, ownerToken := createUser(t, db, "owner@example.com")
	_, strangerToken := createUser(t, db, "stranger@example.com")
	quiz, _, _ := seedPublicQuiz(t, db, owner, true)

	resp, body := doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String(), strangerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "is_answer")

	resp, body = doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String(), ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	encoded, err = json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "is_answer")
}

func TestGetPrivateQuizHiddenFromNonOwner(t *testing.T) {
	app, db := setupApp(t)
	owner, ownerToken := createUser(t, db, "owner@example.com")
	_, strangerToken := createUser(t, db, "stranger@example.com")
	quiz, _, _ := seedPublicQuiz(t, db, owner, false)

	resp, _ := doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String(), strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String(), ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTakeQuizAndScoreVisibility(t *testing.T) {
	app, db := setupApp(t)
	owner, ownerToken := createUser(t, db, "owner@example.com")
	taker, takerToken := createUser(t, db, "taker@example.com")
	_, thirdToken := createUser(t, db, "third@example.com")
	quiz, question, answers := seedPublicQuiz(t, db, owner, true)

	scorePath := "/quiz/" + quiz.UUID.String() + "/score"

	// No attempt yet: the taker has no score record.
	resp, _ := doRequest(t, app, "GET", scorePath, takerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Submit: the correct answer plus one wrong one -> 1.0 - 0.25 = 0.75.
	payload := map[string]interface{}{
		"questions": []map[string]interface{}{{
			"uuid": question.UUID.String(),
			"answers": []map[string]string{
				{"uuid": answers[0].UUID.String()},
				{"uuid": answers[1].UUID.String()},
			},
		}},
	}
	resp, _ = doRequest(t, app, "POST", "/quiz/"+quiz.UUID.String()+"/take", takerToken, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A second submission must fail and change nothing.
	resp, body := doRequest(t, app, "POST", "/quiz/"+quiz.UUID.String()+"/take", takerToken, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "already")

	resp, body = doRequest(t, app, "GET", scorePath, takerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.InDelta(t, 0.75, data["score"].(float64), 0.001)

	// Owner may read the taker's score record, a third party may not.
	userScorePath := scorePath + "/" + taker.UUID.String()
	resp, _ = doRequest(t, app, "GET", userScorePath, ownerToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, "GET", userScorePath, thirdToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// The scores listing is filtered to quizzes the caller owns.
	resp, body = doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String()+"/scores", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)

	resp, body = doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String()+"/scores", thirdToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 0)
}

// submitAttempt takes the quiz for the token's user, selecting the given
// answers on one question.
func submitAttempt(t *testing.T, app *fiber.App, token string, quiz *models.Quiz, question *models.Question, selected ...models.Answer) {
	t.Helper()

	picks := make([]map[string]string, 0, len(selected))
	for _, answer := range selected {
		picks = append(picks, map[string]string{"uuid": answer.UUID.String()})
	}
	payload := map[string]interface{}{
		"questions": []map[string]interface{}{{
			"uuid":    question.UUID.String(),
			"answers": picks,
		}},
	}
	resp, _ := doRequest(t, app, "POST", "/quiz/"+quiz.UUID.String()+"/take", token, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func countModelRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Unscoped().Model(model).Count(&count).Error)
	return count
}

func countSelectionRows(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Table("user_answer_selections").Count(&count).Error)
	return count
}

func TestDeleteTakenQuizRemovesAttemptRows(t *testing.T) {
	app, db := setupApp(t)
	owner, ownerToken := createUser(t, db, "owner@example.com")
	_, takerToken := createUser(t, db, "taker@example.com")
	quiz, question, answers := seedPublicQuiz(t, db, owner, true)

	submitAttempt(t, app, takerToken, quiz, question, answers[0], answers[1])
	require.EqualValues(t, 1, countModelRows(t, db, &models.QuizTaken{}))
	require.EqualValues(t, 2, countSelectionRows(t, db))

	resp, _ := doRequest(t, app, "DELETE", "/quiz/"+quiz.UUID.String(), ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Foreign keys are on, so anything left dangling would have failed
	// the delete. Everything hanging off the quiz must be gone.
	assert.EqualValues(t, 0, countModelRows(t, db, &models.Quiz{}))
	assert.EqualValues(t, 0, countModelRows(t, db, &models.Question{}))
	assert.EqualValues(t, 0, countModelRows(t, db, &models.Answer{}))
	assert.EqualValues(t, 0, countModelRows(t, db, &models.QuizTaken{}))
	assert.EqualValues(t, 0, countModelRows(t, db, &models.UserAnswer{}))
	assert.EqualValues(t, 0, countSelectionRows(t, db))
}

func TestDeleteAnsweredQuestionKeepsAttemptRecord(t *testing.T) {
	app, db := setupApp(t)
	owner, ownerToken := createUser(t, db, "owner@example.com")
	_, takerToken := createUser(t, db, "taker@example.com")
	quiz, question, answers := seedPublicQuiz(t, db, owner, true)

	submitAttempt(t, app, takerToken, quiz, question, answers[0])

	path := "/quiz/" + quiz.UUID.String() + "/question/" + question.UUID.String()
	resp, _ := doRequest(t, app, "DELETE", path, ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.EqualValues(t, 0, countModelRows(t, db, &models.Question{}))
	assert.EqualValues(t, 0, countModelRows(t, db, &models.Answer{}))
	assert.EqualValues(t, 0, countModelRows(t, db, &models.UserAnswer{}))
	assert.EqualValues(t, 0, countSelectionRows(t, db))

	// The attempt itself is against the quiz and survives.
	assert.EqualValues(t, 1, countModelRows(t, db, &models.QuizTaken{}))
}

func TestDeleteSelectedAnswerKeepsSubmission(t *testing.T) {
	app, db := setupApp(t)
	owner, ownerToken := createUser(t, db, "owner@example.com")
	_, takerToken := createUser(t, db, "taker@example.com")
	quiz, question, answers := seedPublicQuiz(t, db, owner, true)

	submitAttempt(t, app, takerToken, quiz, question, answers[0], answers[1])

	path := "/quiz/" + quiz.UUID.String() + "/question/" + question.UUID.String() +
		"/answer/" + answers[1].UUID.String()
	resp, _ := doRequest(t, app, "DELETE", path, ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Only the selection of the removed answer goes; the submission and
	// the pick of the surviving answer stay intact.
	assert.EqualValues(t, 4, countModelRows(t, db, &models.Answer{}))
	assert.EqualValues(t, 1, countModelRows(t, db, &models.UserAnswer{}))
	assert.EqualValues(t, 1, countSelectionRows(t, db))
}

func TestScoreBreakdownSkipsUnansweredQuestions(t *testing.T) {
	app, db := setupApp(t)
	owner, _ := createUser(t, db, "owner@example.com")
	_, takerToken := createUser(t, db, "taker@example.com")
	quiz, question, answers := seedPublicQuiz(t, db, owner, true)

	// A second question the taker never answers.
	unanswered := models.Question{QuizID: quiz.ID, Text: "capital of Spain?"}
	require.NoError(t, db.Create(&unanswered).Error)
	require.NoError(t, db.Create(&models.Answer{QuestionID: unanswered.ID, Text: "Madrid", IsAnswer: true}).Error)

	submitAttempt(t, app, takerToken, quiz, question, answers[0])

	resp, body := doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String()+"/score", takerToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]interface{})
	assert.Len(t, data["questions"], 1)
	assert.InDelta(t, 1.0, data["score"].(float64), 0.001)
}

func TestScoreFailsWhenSubmissionsUnreadable(t *testing.T) {
	app, db := setupApp(t)
	owner, _ := createUser(t, db, "owner@example.com")
	taker, takerToken := createUser(t, db, "taker@example.com")
	quiz, question, answers := seedPublicQuiz(t, db, owner, true)

	submitAttempt(t, app, takerToken, quiz, question, answers[0])

	// Pre-warm only the quiz total, then break the selection storage. The
	// breakdown must surface the storage failure instead of silently
	// serving an empty breakdown next to the cached total.
	scoreCache := cache.NewMemoryCache(0)
	scoreCache.Set(cache.QuizKey(quiz.UUID, taker.UUID), 1.0)
	Init(scoring.NewEngine(db, scoreCache, false))

	require.NoError(t, db.Migrator().DropTable("user_answer_selections"))

	resp, _ := doRequest(t, app, "GET", "/quiz/"+quiz.UUID.String()+"/score", takerToken, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
