package types

import "fmt"

// Difficulty represents the difficulty level of a project
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// AllDifficulties returns all valid difficulty levels in ascending order
func AllDifficulties() []Difficulty {
	return []Difficulty{
		DifficultyBeginner,
		DifficultyIntermediate,
		DifficultyAdvanced,
		DifficultyExpert,
	}
}

// IsValid checks if the difficulty is valid
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyBeginner,
		DifficultyIntermediate,
		DifficultyAdvanced,
		DifficultyExpert:
		return true
	default:
		return false
	}
}

// Level returns the ordinal position of the difficulty, beginner being 0.
// Invalid values return -1.
func (d Difficulty) Level() int {
	for i, v := range AllDifficulties() {
		if v == d {
			return i
		}
	}
	return -1
}

// Includes reports whether other is this level or any easier level.
// A maximum-difficulty filter of "advanced" accepts beginner, intermediate
// and advanced projects.
func (d Difficulty) Includes(other Difficulty) bool {
	return other.Level() >= 0 && other.Level() <= d.Level()
}

// String returns the string representation of the difficulty
func (d Difficulty) String() string {
	return string(d)
}

// ParseDifficulty parses a string into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid difficulty: %s", s)
	}
	return d, nil
}
