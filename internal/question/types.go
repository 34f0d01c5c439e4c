package question

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is a fully formed multiple-choice trivia question. Options are
// shuffled once at generation time and never reordered afterwards;
// CorrectIndex points into that fixed order. A Question is never mutated
// after creation.
type Question struct {
	Prompt       string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_answer"`
	Difficulty   string   `json:"difficulty"`
	Category     string   `json:"category"`
	Explanation  string   `json:"explanation"`
}
