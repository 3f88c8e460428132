package domain

// Session marks a chat as being mid-game and awaiting RightAnswer
type Session struct {
	ChatID      int64  `cbor:"chat_id"`
	RightAnswer string `cbor:"right_answer"`
}

// Outcome is the result of judging a submitted answer
type Outcome int

const (
	OutcomeNoActiveGame Outcome = iota
	OutcomeCorrect
	OutcomeIncorrect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	default:
		return "no_active_game"
	}
}
