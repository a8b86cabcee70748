package drawer

// Anchor is a line's fixed basepoint in display pixels.
type Anchor struct {
	X, Y float32
}

// Line is the animated state of one line: its vector away from the anchor
// and its current opacity. Both ease toward the local velocity each frame.
type Line struct {
	DX, DY  float32
	Opacity float32
}
