package entity

type Player struct {
	Mark       Mark   `json:"mark"`
	RemoteAddr string `json:"remote_addr,omitempty"`
	Suspended  bool   `json:"suspended,omitempty"`
}

// NewPlayer - the first connection plays X and waits suspended for O.
func NewPlayer(mark Mark, remoteAddr string) *Player {
	return &Player{
		Mark:       mark,
		RemoteAddr: remoteAddr,
		Suspended:  mark == MarkX,
	}
}
