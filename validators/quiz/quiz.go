package quizValidator

import (
	"strings"

	"quizzer/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title  string `json:"title"`
			Public bool   `json:"public"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(reqData.Title) > 128 {
			errors["title"] = "Title must not be longer than 128 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title *string `json:"title"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != nil {
			if strings.TrimSpace(*reqData.Title) == "" {
				errors["title"] = "Title must not be empty!"
			} else if len(*reqData.Title) > 128 {
				errors["title"] = "Title must not be longer than 128 characters!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func CreateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Text    string `json:"text" validate:"required,max=200"`
			Answers []struct {
				Text     string `json:"text" validate:"required,max=128"`
				IsAnswer bool   `json:"is_answer"`
			} `json:"answers" validate:"dive"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Struct(reqData); err != nil {
			for _, fieldErr := range err.(validator.ValidationErrors) {
				if strings.Contains(fieldErr.Namespace(), "Answers") {
					errors["answers"] = "Every answer needs a text of at most 128 characters!"
				} else {
					errors["text"] = "Question text is required and at most 200 characters!"
				}
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func UpdateQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Text string `json:"text"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Text) == "" {
			errors["text"] = "Question text is required!"
		} else if len(reqData.Text) > 200 {
			errors["text"] = "Question text must not be longer than 200 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func CreateAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Text     string `json:"text"`
			IsAnswer bool   `json:"is_answer"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Text) == "" {
			errors["text"] = "Answer text is required!"
		} else if len(reqData.Text) > 128 {
			errors["text"] = "Answer text must not be longer than 128 characters!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func UpdateAnswer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Text *string `json:"text"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Text != nil {
			if strings.TrimSpace(*reqData.Text) == "" {
				errors["text"] = "Answer text must not be empty!"
			} else if len(*reqData.Text) > 128 {
				errors["text"] = "Answer text must not be longer than 128 characters!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}

func TakeQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Questions []struct {
				UUID    string `json:"uuid" validate:"required,uuid4"`
				Answers []struct {
					UUID string `json:"uuid" validate:"required,uuid4"`
				} `json:"answers" validate:"dive"`
			} `json:"questions" validate:"dive"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if err := validate.Struct(reqData); err != nil {
			errors["questions"] = "Every question and answer entry needs a valid uuid!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		return c.Next()
	}
}
