package cli

import "quiznight/internal/domain"

// demoQuestions is the bank installed on first startup when the store is
// empty. It covers all three question types.
func demoQuestions() []domain.Question {
	return []domain.Question{
		{
			Text:    "Which planet is known as the red planet?",
			Type:    domain.TypeMCQ,
			OptionA: "Venus", OptionB: "Mars", OptionC: "Jupiter", OptionD: "Mercury",
			Correct: "B",
		},
		{
			Text:    "What is the largest ocean on Earth?",
			Type:    domain.TypeMCQ,
			OptionA: "Atlantic", OptionB: "Indian", OptionC: "Pacific", OptionD: "Arctic",
			Correct: "C",
		},
		{
			Text:    "Which language is this service written in?",
			Type:    domain.TypeMCQ,
			OptionA: "Go", OptionB: "Rust", OptionC: "Python", OptionD: "Java",
			Correct: "A",
		},
		{
			Text:    "How many sides does a hexagon have?",
			Type:    domain.TypeMCQ,
			OptionA: "5", OptionB: "6", OptionC: "7", OptionD: "8",
			Correct: "B",
		},
		{
			Text:    "The Great Wall is located in China.",
			Type:    domain.TypeTF,
			OptionA: "True", OptionB: "False",
			Correct: "A",
		},
		{
			Text:    "Sound travels faster than light.",
			Type:    domain.TypeTF,
			OptionA: "True", OptionB: "False",
			Correct: "B",
		},
		{
			Text: "Name a country you would like to visit.",
			Type: domain.TypeOpen,
		},
		{
			Text: "What was the last book you read?",
			Type: domain.TypeOpen,
		},
	}
}
