package entity

const (
	StatusWaiting  = "waiting"
	StatusOngoing  = "ongoing"
	StatusFinished = "finished"
	StatusAborted  = "aborted"
)

// Session is a point-in-time copy of one game's shared state.
type Session struct {
	ID      string    `json:"id"`
	Board   Board     `json:"board"`
	Turn    Mark      `json:"player_turn"`
	Winner  Outcome   `json:"winner"`
	Status  string    `json:"status"`
	Moves   int       `json:"moves"`
	Players []*Player `json:"players,omitempty"`
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished || that.Status == StatusAborted
}

func (that *Session) IsWaiting() bool {
	return that.Status == StatusWaiting
}
