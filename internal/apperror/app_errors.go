package apperror

import "errors"

var (
	ErrGameFinished    = errors.New("game is already finished")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrInvalidCell     = errors.New("invalid cell index")
	ErrInvalidMove     = errors.New("malformed move")
	ErrSessionAborted  = errors.New("session aborted")
	ErrOpponentLeft    = errors.New("opponent disconnected")
	ErrInputDisabled   = errors.New("input is disabled")
	ErrUnknownMark     = errors.New("unknown mark")
	ErrNotAccepting    = errors.New("server is not accepting players")
	ErrListenerMissing = errors.New("listener is not set")
)
