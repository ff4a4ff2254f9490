package game

import "math/rand"

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var wordBuckets = map[string][]string{
	DifficultyEasy:   {"cat", "dog", "sun", "car", "tree", "fish", "ball", "cup", "bird", "hat"},
	DifficultyMedium: {"giraffe", "bicycle", "elephant", "castle", "mountain", "airplane", "computer", "pumpkin", "umbrella", "violin"},
	DifficultyHard:   {"astronaut", "kangaroo", "microscope", "restaurant", "scissors", "volcano", "xylophone", "zeppelin", "chameleon", "boulevard"},
}

// PickWord draws a uniform random word from the bucket for difficulty.
// Unknown difficulties fall back to the medium bucket; the stored label on
// the room is left as-is.
func PickWord(difficulty string) string {
	bucket, ok := wordBuckets[difficulty]

	if !ok {
		bucket = wordBuckets[DifficultyMedium]
	}

	return bucket[rand.Intn(len(bucket))]
}

// Words exposes a difficulty bucket, applying the same medium fallback as
// PickWord.
func Words(difficulty string) []string {
	bucket, ok := wordBuckets[difficulty]

	if !ok {
		return wordBuckets[DifficultyMedium]
	}

	return bucket
}
