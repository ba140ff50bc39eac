package domain

import "fmt"

// Difficulty is the requested quiz difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a raw difficulty string.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	default:
		return "", fmt.Errorf("%w: difficulty must be easy, medium, or hard, got %q", ErrValidation, s)
	}
}

// Localized returns the difficulty in the audience language used by the
// generation prompts.
func (d Difficulty) Localized() string {
	switch d {
	case DifficultyEasy:
		return "kolay"
	case DifficultyHard:
		return "zor"
	default:
		return "orta"
	}
}
