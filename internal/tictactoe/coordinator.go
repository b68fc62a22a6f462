package tictactoe

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-tcp/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-tcp/internal/entity"
)

type MoveResult int

const (
	Accepted MoveResult = iota
	Rejected
	NotYourTurn
)

func (that MoveResult) String() string {
	switch that {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case NotYourTurn:
		return "not_your_turn"
	default:
		return "unknown"
	}
}

// Announcer is called after a state change while the coordinator lock is
// still held. It must not block and must not call back into the Coordinator.
type Announcer func(snapshot entity.Session)

// Coordinator owns the board and the turn of one game. Both player sessions
// share it; every state change happens under mu.
type Coordinator struct {
	mu sync.Mutex

	otherPlayerConnected *sync.Cond
	otherPlayerTurn      *sync.Cond

	id      string
	board   entity.Board
	turn    entity.Mark
	moves   int
	players map[entity.Mark]*entity.Player
	paired  bool
	aborted bool
}

func NewCoordinator(id string) *Coordinator {
	coordinator := &Coordinator{
		id:      id,
		turn:    entity.MarkX,
		players: make(map[entity.Mark]*entity.Player, 2),
	}

	coordinator.otherPlayerConnected = sync.NewCond(&coordinator.mu)
	coordinator.otherPlayerTurn = sync.NewCond(&coordinator.mu)

	return coordinator
}

func (that *Coordinator) ID() string {
	return that.id
}

// Join - registers the player record for its mark.
func (that *Coordinator) Join(player *entity.Player) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.players[player.Mark] = player
}

// OpponentConnected - resumes X once O has joined.
func (that *Coordinator) OpponentConnected(announce Announcer) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.aborted {
		return
	}

	that.paired = true
	if player, ok := that.players[entity.MarkX]; ok {
		player.Suspended = false
	}

	if announce != nil {
		announce(that.snapshot())
	}

	that.otherPlayerConnected.Broadcast()
}

// AwaitConnectionReady - blocks X until O has connected. O never waits.
func (that *Coordinator) AwaitConnectionReady(mark entity.Mark) error {
	if mark != entity.MarkX {
		return nil
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for !that.paired && !that.aborted {
		that.otherPlayerConnected.Wait()
	}

	if that.aborted {
		return apperror.ErrSessionAborted
	}

	return nil
}

// TryAcceptMove - validates and applies one move atomically.
func (that *Coordinator) TryAcceptMove(mark entity.Mark, cell int, announce Announcer) MoveResult {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.aborted || that.board.IsGameOver() {
		return Rejected
	}

	if mark != that.turn {
		return NotYourTurn
	}

	if !that.board.Place(cell, mark) {
		return Rejected
	}

	that.moves++
	that.turn = mark.Opponent()

	if announce != nil {
		announce(that.snapshot())
	}

	that.otherPlayerTurn.Broadcast()

	return Accepted
}

// AwaitTurn - blocks until it is mark's turn or the game can no longer continue.
func (that *Coordinator) AwaitTurn(mark entity.Mark) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	for that.turn != mark && !that.aborted && !that.board.IsGameOver() {
		that.otherPlayerTurn.Wait()
	}

	return that.err()
}

// Abort - stops the game and wakes every waiter. Reports whether this call
// was the one that aborted it.
func (that *Coordinator) Abort() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.aborted || that.board.IsGameOver() {
		return false
	}

	that.aborted = true
	that.otherPlayerConnected.Broadcast()
	that.otherPlayerTurn.Broadcast()

	return true
}

// Err - nil while the game can continue.
func (that *Coordinator) Err() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.err()
}

func (that *Coordinator) Snapshot() entity.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshot()
}

func (that *Coordinator) err() error {
	switch {
	case that.board.IsGameOver():
		return apperror.ErrGameFinished
	case that.aborted:
		return apperror.ErrSessionAborted
	default:
		return nil
	}
}

func (that *Coordinator) snapshot() entity.Session {
	session := entity.Session{
		ID:     that.id,
		Board:  that.board,
		Turn:   that.turn,
		Winner: that.board.Outcome(),
		Moves:  that.moves,
	}

	switch {
	case session.Winner.IsFinished():
		session.Status = entity.StatusFinished
		session.Turn = entity.EmptyCell
	case that.aborted:
		session.Status = entity.StatusAborted
		session.Turn = entity.EmptyCell
	case !that.paired:
		session.Status = entity.StatusWaiting
	default:
		session.Status = entity.StatusOngoing
	}

	for _, mark := range []entity.Mark{entity.MarkX, entity.MarkO} {
		if player, ok := that.players[mark]; ok {
			copied := *player
			session.Players = append(session.Players, &copied)
		}
	}

	return session
}
