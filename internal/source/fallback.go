package source

import "trivia-quiz-service/internal/domain"

// Fallback returns the built-in question set used whenever generated content
// is unavailable. Difficulty rises from basic markup to HTTP semantics.
func Fallback() domain.QuestionSet {
	return domain.QuestionSet{
		Origin: domain.OriginFallback,
		Questions: []domain.Question{
			{
				Text:         "What does HTML stand for?",
				Choices:      []string{"Hyper Text Markup Language", "High Text Markup Language", "Hyper Tab Markup Language", "Home Tool Markup Language"},
				CorrectIndex: 0,
			},
			{
				Text:         "Which CSS property controls the text size?",
				Choices:      []string{"text-style", "font-style", "font-size", "text-size"},
				CorrectIndex: 2,
			},
			{
				Text:         "How do you add a single-line comment in JavaScript?",
				Choices:      []string{"<!-- This is a comment -->", "// This is a comment", "' This is a comment", "# This is a comment"},
				CorrectIndex: 1,
			},
			{
				Text:         "Which HTML tag is used to define an unordered list?",
				Choices:      []string{"<ol>", "<li>", "<ul>", "<list>"},
				CorrectIndex: 2,
			},
			{
				Text:         "In CSS, how do you select an element with id='demo'?",
				Choices:      []string{".demo", "#demo", "demo", "*demo"},
				CorrectIndex: 1,
			},
			{
				Text:         "What is the correct way to link an external JavaScript file?",
				Choices:      []string{`<script href="script.js">`, `<script src="script.js">`, `<link rel="script" src="script.js">`, `<js src="script.js">`},
				CorrectIndex: 1,
			},
			{
				Text:         "Which HTTP method is used to send data to create a new resource?",
				Choices:      []string{"GET", "POST", "PUT", "DELETE"},
				CorrectIndex: 1,
			},
			{
				Text:         "In Node.js, what is Express.js primarily used for?",
				Choices:      []string{"Database management", "Building web servers and APIs", "Front-end styling", "Game development"},
				CorrectIndex: 1,
			},
			{
				Text:         "What does 'DOM' stand for in JavaScript?",
				Choices:      []string{"Document Object Model", "Data Object Management", "Display Object Model", "Document Order Model"},
				CorrectIndex: 0,
			},
			{
				Text:         "Which syntax marks a comment in CSS?",
				Choices:      []string{"//", "<!-- -->", "/* */", "#"},
				CorrectIndex: 2,
			},
		},
	}
}
