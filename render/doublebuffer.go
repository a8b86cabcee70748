package render

// DoubleBuffer is a two-slot texture arena for read-while-write passes: a
// pass samples Current while rendering into Next, then Swap rotates the
// slots. Only read views (Current) should escape the owning component.
type DoubleBuffer struct {
	bufs [2]Texture
	cur  int
}

// NewDoubleBuffer pairs two targets into a buffer. The first is the initial
// current slot.
func NewDoubleBuffer(a, b Texture) *DoubleBuffer {
	return &DoubleBuffer{bufs: [2]Texture{a, b}}
}

// Current returns the slot holding the latest completed contents.
func (d *DoubleBuffer) Current() Texture {
	return d.bufs[d.cur]
}

// Next returns the slot a pass should render into.
func (d *DoubleBuffer) Next() Texture {
	return d.bufs[1-d.cur]
}

// Swap makes the last written slot current.
func (d *DoubleBuffer) Swap() {
	d.cur = 1 - d.cur
}
