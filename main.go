package main

import (
	"log"
	"time"

	"quizzer/cache"
	"quizzer/config"
	quizController "quizzer/controllers/quiz"
	"quizzer/database"
	"quizzer/routers/authRoutes"
	"quizzer/routers/quizRoutes"
	"quizzer/scoring"
	"quizzer/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	scoreCache := cache.NewMemoryCache(time.Duration(config.AppConfig.ScoreCacheTTLMin) * time.Minute)
	quizController.Init(scoring.NewEngine(database.Database.Db, scoreCache, config.AppConfig.ClampQuizScore))

	utils.InitializeCachePurgeScheduler(scoreCache)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	quizRoutes.SetupQuizRoutes(app)

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
