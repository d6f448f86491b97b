package token

// Pos locates a single byte in a source buffer precisely enough to render a
// caret diagnostic: offset is the absolute byte offset of the point of
// interest, Line is its 1-based line number, and LineStart is the absolute
// byte offset of the first byte of that line, so that Col = offset -
// LineStart (0-based) or +1 for a 1-based display column.
//
// This is a plain struct rather than the bit-packed encoding used for a
// similar purpose elsewhere, because reconstructing a caret diagnostic
// requires the line-start offset, which a packed line/col pair alone cannot
// recover without re-scanning the source.
type Pos struct {
	Offset    int
	Line      int
	LineStart int
}

// Col returns the 1-based column of p within its line.
func (p Pos) Col() int {
	return p.Offset - p.LineStart + 1
}

// Valid reports whether p was ever set by the lexer.
func (p Pos) Valid() bool {
	return p.Line > 0
}

// NoPos is the zero value of Pos, representing an unknown position.
var NoPos = Pos{}
