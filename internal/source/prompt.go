package source

import (
	"fmt"

	"trivia-quiz-service/internal/domain"
)

// systemPrompt fixes the generator's role and the exact output contract.
var systemPrompt = fmt.Sprintf(`You write multiple-choice quizzes about full-stack web development.

Return exactly %[1]d questions as a JSON array and nothing else: no prose, no markdown fences.
Each element has the shape {"question": string, "choices": [%[2]d strings], "correct": integer}.

Rules:
- Every question is distinct from the others.
- Each question has exactly %[2]d distinct choices and exactly one correct choice.
- "correct" is the 0-based index of the right choice. Spread it evenly across 0-%[3]d and shuffle choice order.
- Mix front-end and back-end topics.`, domain.QuestionSetSize, domain.ChoiceCount, domain.ChoiceCount-1)

// userPrompt describes the difficulty spread the quiz expects.
const userPrompt = `Generate a fresh quiz with this difficulty progression:
- Questions 1-4, easy: HTML, CSS, JavaScript basics, Node.js fundamentals, REST.
- Questions 5-8, intermediate: front-end frameworks, Express, authentication, async/await, databases, middleware.
- Questions 9-10, hard: server-side rendering, WebSockets, caching, security, performance.`
