package rules

// Validation is the outcome of checking a proposed move
type Validation struct {
	Valid    bool
	Reason   string
	Captured []Square // squares of opponent pieces removed by this move
}

// Result describes the effect of an applied move
type Result struct {
	Captured []Square
	Crowned  bool
}

// Engine is the pure move/board logic consumed by the match session.
// Implementations must be stateless: every method is a function of its inputs.
type Engine interface {
	InitialBoard() Board
	ValidateMove(b Board, from, to Square, turn Color, continuationActive bool, continuationFrom Square) Validation
	ApplyMove(b Board, from, to Square, turn Color, captured []Square) (Board, Result)
	CanContinueJump(b Board, from Square, turn Color) bool
	CheckGameOver(b Board, toMove Color) (bool, Color)
}

// Checkers implements Engine for standard 8x8 American checkers.
// Captures are not compulsory; crowning ends the turn.
type Checkers struct{}

// NewEngine creates a checkers rules engine
func NewEngine() *Checkers {
	return &Checkers{}
}

var _ Engine = (*Checkers)(nil)

// InitialBoard returns the starting position: twelve men per side on the
// dark squares, black on rows 0-2, red on rows 5-7.
func (e *Checkers) InitialBoard() Board {
	var b Board
	for row := 0; row < 3; row++ {
		for col := 0; col < BoardSize; col++ {
			if (row+col)%2 == 1 {
				b[row][col] = BlackMan
			}
		}
	}
	for row := BoardSize - 3; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if (row+col)%2 == 1 {
				b[row][col] = RedMan
			}
		}
	}
	return b
}

// ValidateMove checks a proposed move for the given color. When a capture
// continuation is active, only jump moves starting from the continuation
// square are accepted.
func (e *Checkers) ValidateMove(b Board, from, to Square, turn Color, continuationActive bool, continuationFrom Square) Validation {
	if !from.OnBoard() || !to.OnBoard() {
		return Validation{Reason: "square off board"}
	}
	piece := b.At(from)
	if piece == Empty {
		return Validation{Reason: "no piece on source square"}
	}
	if piece.Color() != turn {
		return Validation{Reason: "piece belongs to opponent"}
	}
	if b.At(to) != Empty {
		return Validation{Reason: "destination occupied"}
	}
	if continuationActive && from != continuationFrom {
		return Validation{Reason: "must continue jumping with the same piece"}
	}

	dr := to.Row - from.Row
	dc := to.Col - from.Col
	if abs(dc) != abs(dr) {
		return Validation{Reason: "move must be diagonal"}
	}

	switch abs(dr) {
	case 1:
		if continuationActive {
			return Validation{Reason: "must continue jumping with the same piece"}
		}
		if !directionAllowed(piece, dr) {
			return Validation{Reason: "men cannot move backwards"}
		}
		return Validation{Valid: true}
	case 2:
		if !directionAllowed(piece, dr/2) {
			return Validation{Reason: "men cannot jump backwards"}
		}
		mid := Square{Row: from.Row + dr/2, Col: from.Col + dc/2}
		jumped := b.At(mid)
		if jumped == Empty {
			return Validation{Reason: "no piece to jump over"}
		}
		if jumped.Color() == turn {
			return Validation{Reason: "cannot jump your own piece"}
		}
		return Validation{Valid: true, Captured: []Square{mid}}
	default:
		return Validation{Reason: "move is too far"}
	}
}

// ApplyMove performs a validated move and returns the resulting board.
// Callers pass the captures reported by ValidateMove.
func (e *Checkers) ApplyMove(b Board, from, to Square, turn Color, captured []Square) (Board, Result) {
	piece := b.At(from)
	b[from.Row][from.Col] = Empty
	for _, sq := range captured {
		b[sq.Row][sq.Col] = Empty
	}

	res := Result{Captured: captured}
	if !piece.IsKing() && to.Row == crownRow(turn) {
		piece = piece.Crowned()
		res.Crowned = true
	}
	b[to.Row][to.Col] = piece
	return b, res
}

// CanContinueJump reports whether the piece on the given square has a
// further capture available.
func (e *Checkers) CanContinueJump(b Board, from Square, turn Color) bool {
	piece := b.At(from)
	if piece == Empty || piece.Color() != turn {
		return false
	}
	return hasJumpFrom(b, from, piece, turn)
}

// CheckGameOver reports whether the color to move has lost: it has no
// pieces left or no legal move available. The returned color is the winner.
func (e *Checkers) CheckGameOver(b Board, toMove Color) (bool, Color) {
	pieces := 0
	movable := false
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			sq := Square{Row: row, Col: col}
			piece := b.At(sq)
			if piece.Color() != toMove {
				continue
			}
			pieces++
			if !movable && (hasStepFrom(b, sq, piece) || hasJumpFrom(b, sq, piece, toMove)) {
				movable = true
			}
		}
	}
	if pieces == 0 || !movable {
		return true, toMove.Opponent()
	}
	return false, ""
}

// directionAllowed reports whether the piece may move with the given row delta sign
func directionAllowed(p Piece, dr int) bool {
	if p.IsKing() {
		return true
	}
	return dr == forward(p.Color())
}

func hasStepFrom(b Board, from Square, piece Piece) bool {
	for _, dr := range []int{-1, 1} {
		if !directionAllowed(piece, dr) {
			continue
		}
		for _, dc := range []int{-1, 1} {
			to := Square{Row: from.Row + dr, Col: from.Col + dc}
			if to.OnBoard() && b.At(to) == Empty {
				return true
			}
		}
	}
	return false
}

func hasJumpFrom(b Board, from Square, piece Piece, turn Color) bool {
	for _, dr := range []int{-1, 1} {
		if !directionAllowed(piece, dr) {
			continue
		}
		for _, dc := range []int{-1, 1} {
			mid := Square{Row: from.Row + dr, Col: from.Col + dc}
			to := Square{Row: from.Row + 2*dr, Col: from.Col + 2*dc}
			if !to.OnBoard() {
				continue
			}
			jumped := b.At(mid)
			if jumped != Empty && jumped.Color() == turn.Opponent() && b.At(to) == Empty {
				return true
			}
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
