package domain

import "fmt"

// OptionLetters are the four answer keys every quiz question must carry.
var OptionLetters = []string{"A", "B", "C", "D"}

// QuizQuestion is one multiple-choice question with exactly four options.
type QuizQuestion struct {
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Answer   string            `json:"answer"`
}

// Validate checks that all four option letters are present and the
// answer key refers to one of them.
func (q QuizQuestion) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("%w: question text is empty", ErrValidation)
	}
	if len(q.Options) != len(OptionLetters) {
		return fmt.Errorf("%w: expected %d options, got %d", ErrValidation, len(OptionLetters), len(q.Options))
	}
	for _, letter := range OptionLetters {
		if _, ok := q.Options[letter]; !ok {
			return fmt.Errorf("%w: missing option %s", ErrValidation, letter)
		}
	}
	if _, ok := q.Options[q.Answer]; !ok {
		return fmt.Errorf("%w: answer %q is not an option key", ErrValidation, q.Answer)
	}
	return nil
}

// Quiz is a generated set of questions. Note is non-empty only for
// degraded (emergency) output.
type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
	Note      string         `json:"note,omitempty"`
}

// Validate checks every question in the quiz.
func (q Quiz) Validate() error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("%w: quiz has no questions", ErrValidation)
	}
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Flashcard is a front/back study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSet is a generated set of flashcards.
type FlashcardSet struct {
	Flashcards []Flashcard `json:"flashcards"`
}

// Validate checks that the set is non-empty and every card has both sides.
func (s FlashcardSet) Validate() error {
	if len(s.Flashcards) == 0 {
		return fmt.Errorf("%w: flashcard set is empty", ErrValidation)
	}
	for i, c := range s.Flashcards {
		if c.Front == "" || c.Back == "" {
			return fmt.Errorf("%w: flashcard %d has an empty side", ErrValidation, i+1)
		}
	}
	return nil
}

// WrongAnswer records one mismatch from a quiz evaluation.
// QuestionNumber is 1-based.
type WrongAnswer struct {
	QuestionNumber int    `json:"questionNumber"`
	QuestionText   string `json:"questionText"`
	CorrectAnswer  string `json:"correctAnswer"`
	StudentAnswer  string `json:"studentAnswer"`
}

// EvaluationResult is the outcome of scoring a submitted quiz.
// TotalQuestions always equals CorrectCount + len(WrongAnswers).
type EvaluationResult struct {
	TotalQuestions int           `json:"totalQuestions"`
	CorrectCount   int           `json:"correctCount"`
	WrongCount     int           `json:"wrongCount"`
	WrongAnswers   []WrongAnswer `json:"wrongAnswers"`
}
