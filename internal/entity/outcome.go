package entity

type Outcome string

const (
	OutcomeOngoing Outcome = ""
	OutcomeXWins   Outcome = "X"
	OutcomeOWins   Outcome = "O"
	OutcomeTie     Outcome = "-"
)

// Result is the terminal verdict as seen by one player.
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "victory"
	ResultDefeat  Result = "defeat"
	ResultTie     Result = "tie"
)

func (that Outcome) IsFinished() bool {
	return that != OutcomeOngoing
}

func (that Outcome) Winner() Mark {
	switch that {
	case OutcomeXWins:
		return MarkX
	case OutcomeOWins:
		return MarkO
	default:
		return EmptyCell
	}
}

// ResultFor - what the game outcome means for the player holding mark.
func (that Outcome) ResultFor(mark Mark) Result {
	switch that {
	case OutcomeOngoing:
		return ResultNone
	case OutcomeTie:
		return ResultTie
	}

	if that.Winner() == mark {
		return ResultVictory
	}

	return ResultDefeat
}
