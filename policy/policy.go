// Package policy is the single authorization decision point. Every request
// handler asks Evaluate whether the caller may act on a resource instead of
// re-implementing ownership checks per endpoint.
package policy

import "quizzer/models"

type Action int

const (
	ActionRead Action = iota + 1
	ActionWrite
	ActionDelete
)

// Decision is the policy outcome. RedactCorrectness marks reads that must
// strip answer correctness from the response.
type Decision struct {
	Allow             bool
	RedactCorrectness bool
}

// Resource is one of the variants below. Question and answer access derive
// entirely from the parent quiz, so their variants carry it.
type Resource interface {
	isResource()
}

type QuizResource struct {
	Quiz *models.Quiz
}

type QuestionResource struct {
	Quiz *models.Quiz
}

type AnswerResource struct {
	Quiz *models.Quiz
}

// AttemptResource covers a QuizTaken row and its score.
type AttemptResource struct {
	AttemptUserID uint
	QuizOwnerID   uint
}

func (QuizResource) isResource()     {}
func (QuestionResource) isResource() {}
func (AnswerResource) isResource()   {}
func (AttemptResource) isResource()  {}

// Evaluate applies the ownership rules:
//   - quiz, question, answer: the owner may do anything; a non-owner may
//     read only when the quiz is public, and then with correctness redacted
//   - attempt/score: readable by the attempt's user or the quiz owner,
//     never writable (attempts are immutable once committed)
func Evaluate(callerID uint, action Action, resource Resource) Decision {
	switch res := resource.(type) {
	case QuizResource:
		return evaluateQuizChain(callerID, action, res.Quiz)
	case QuestionResource:
		return evaluateQuizChain(callerID, action, res.Quiz)
	case AnswerResource:
		return evaluateQuizChain(callerID, action, res.Quiz)
	case AttemptResource:
		if action != ActionRead {
			return Decision{}
		}
		allowed := callerID == res.AttemptUserID || callerID == res.QuizOwnerID
		return Decision{Allow: allowed}
	default:
		return Decision{}
	}
}

func evaluateQuizChain(callerID uint, action Action, quiz *models.Quiz) Decision {
	if quiz == nil {
		return Decision{}
	}
	if quiz.OwnerID == callerID {
		return Decision{Allow: true}
	}
	if action == ActionRead && quiz.Public {
		return Decision{Allow: true, RedactCorrectness: true}
	}
	return Decision{}
}
