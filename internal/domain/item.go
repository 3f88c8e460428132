package domain

import "fmt"

// WrongAnswersCount is the number of distractors every quiz item carries
const WrongAnswersCount = 3

// QuizItem represents a melody that can be posed to a chat
type QuizItem struct {
	ID           uint64                    `cbor:"id"`
	MediaRef     string                    `cbor:"media_ref"`
	RightAnswer  string                    `cbor:"right_answer"`
	WrongAnswers [WrongAnswersCount]string `cbor:"wrong_answers"`
}

// Validate checks that the item can be posed: media is set, answers are
// non-empty and all four answers are pairwise distinct
func (i *QuizItem) Validate() error {
	if i.MediaRef == "" {
		return fmt.Errorf("%w: item %d has no media reference", ErrInvalidItem, i.ID)
	}
	if i.RightAnswer == "" {
		return fmt.Errorf("%w: item %d has an empty right answer", ErrInvalidItem, i.ID)
	}

	seen := map[string]bool{i.RightAnswer: true}
	for n, wrong := range i.WrongAnswers {
		if wrong == "" {
			return fmt.Errorf("%w: item %d wrong answer #%d is empty", ErrInvalidItem, i.ID, n+1)
		}
		if seen[wrong] {
			return fmt.Errorf("%w: item %d answer %q is duplicated", ErrInvalidItem, i.ID, wrong)
		}
		seen[wrong] = true
	}

	return nil
}

// Answers returns the right answer followed by the wrong ones
func (i *QuizItem) Answers() []string {
	answers := make([]string, 0, WrongAnswersCount+1)
	answers = append(answers, i.RightAnswer)
	answers = append(answers, i.WrongAnswers[:]...)
	return answers
}
