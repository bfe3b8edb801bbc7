package quizRoutes

import (
	quizController "quizzer/controllers/quiz"
	"quizzer/middleware"
	quizValidator "quizzer/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

// SetupQuizRoutes sets up all quiz, question, answer and attempt routes
func SetupQuizRoutes(app *fiber.App) {
	quizGroup := app.Group("/quiz")

	// Quiz listing and CRUD
	quizGroup.Get("/list", middleware.JWTMiddleware, quizController.ListQuizzes)
	quizGroup.Post("/create", middleware.JWTMiddleware, quizValidator.CreateQuiz(), quizController.CreateQuiz)
	quizGroup.Get("/:uuid", middleware.JWTMiddleware, quizController.GetQuiz)
	quizGroup.Put("/:uuid", middleware.JWTMiddleware, quizValidator.UpdateQuiz(), quizController.UpdateQuiz)
	quizGroup.Delete("/:uuid", middleware.JWTMiddleware, quizController.DeleteQuiz)

	// Questions under a quiz
	quizGroup.Get("/:uuid/question", middleware.JWTMiddleware, quizController.ListQuestions)
	quizGroup.Post("/:uuid/question", middleware.JWTMiddleware, quizValidator.CreateQuestion(), quizController.CreateQuestion)
	quizGroup.Get("/:quiz_uuid/question/:uuid", middleware.JWTMiddleware, quizController.GetQuestion)
	quizGroup.Put("/:quiz_uuid/question/:uuid", middleware.JWTMiddleware, quizValidator.UpdateQuestion(), quizController.UpdateQuestion)
	quizGroup.Delete("/:quiz_uuid/question/:uuid", middleware.JWTMiddleware, quizController.DeleteQuestion)

	// Answers under a question
	quizGroup.Post("/:quiz_uuid/question/:question_uuid/answer", middleware.JWTMiddleware, quizValidator.CreateAnswer(), quizController.CreateAnswer)
	quizGroup.Get("/:quiz_uuid/question/:question_uuid/answer/:uuid", middleware.JWTMiddleware, quizController.GetAnswer)
	quizGroup.Put("/:quiz_uuid/question/:question_uuid/answer/:uuid", middleware.JWTMiddleware, quizValidator.UpdateAnswer(), quizController.UpdateAnswer)
	quizGroup.Delete("/:quiz_uuid/question/:question_uuid/answer/:uuid", middleware.JWTMiddleware, quizController.DeleteAnswer)

	// Attempt submission and scores
	quizGroup.Post("/:uuid/take", middleware.JWTMiddleware, quizValidator.TakeQuiz(), quizController.TakeQuiz)
	quizGroup.Get("/:uuid/score", middleware.JWTMiddleware, quizController.GetMyScore)
	quizGroup.Get("/:uuid/score/:user_uuid", middleware.JWTMiddleware, quizController.GetUserScore)
	quizGroup.Get("/:uuid/scores", middleware.JWTMiddleware, quizController.ListScores)
}
