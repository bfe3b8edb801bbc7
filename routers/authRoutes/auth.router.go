package authRoutes

import (
	authController "quizzer/controllers/auth"
	"quizzer/middleware"
	authValidator "quizzer/validators/auth"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes sets up registration, login and profile routes
func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), authController.Signup)
	authGroup.Post("/login", authValidator.Login(), authController.Login)

	authGroup.Get("/profile", middleware.JWTMiddleware, authController.Profile)
	authGroup.Patch("/webhook", middleware.JWTMiddleware, authValidator.UpdateWebhook(), authController.UpdateWebhook)
}
