package rules

// BoardSize is the side length of the checkers board
const BoardSize = 8

// PiecesPerSide is the number of men each color starts with
const PiecesPerSide = 12

// Color identifies one of the two sides
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// Opponent returns the other color
func (c Color) Opponent() Color {
	if c == Red {
		return Black
	}
	return Red
}

// Valid reports whether the color is one of the two playable colors
func (c Color) Valid() bool {
	return c == Red || c == Black
}

// Piece is the content of a single board square
type Piece string

const (
	Empty     Piece = ""
	RedMan    Piece = "r"
	RedKing   Piece = "R"
	BlackMan  Piece = "b"
	BlackKing Piece = "B"
)

// Color returns the owner of the piece, or "" for an empty square
func (p Piece) Color() Color {
	switch p {
	case RedMan, RedKing:
		return Red
	case BlackMan, BlackKing:
		return Black
	}
	return ""
}

// IsKing reports whether the piece is a crowned king
func (p Piece) IsKing() bool {
	return p == RedKing || p == BlackKing
}

// Crowned returns the king form of a man (kings are returned unchanged)
func (p Piece) Crowned() Piece {
	switch p {
	case RedMan:
		return RedKing
	case BlackMan:
		return BlackKing
	}
	return p
}

// Square is a board coordinate. Row 0 is black's back rank; red men start
// on rows 5-7 and move toward row 0.
type Square struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// OnBoard reports whether the square lies within the board
func (sq Square) OnBoard() bool {
	return sq.Row >= 0 && sq.Row < BoardSize && sq.Col >= 0 && sq.Col < BoardSize
}

// Board is the full 8x8 position. The zero value is an empty board.
type Board [BoardSize][BoardSize]Piece

// At returns the piece on the given square
func (b Board) At(sq Square) Piece {
	return b[sq.Row][sq.Col]
}

// crownRow returns the row on which the given color is crowned
func crownRow(c Color) int {
	if c == Red {
		return 0
	}
	return BoardSize - 1
}

// forward returns the row delta for the color's forward direction
func forward(c Color) int {
	if c == Red {
		return -1
	}
	return 1
}
