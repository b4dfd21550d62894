package lzss

// Window is the decoder's circular history of the last WindowSize bytes.
// Back-references are resolved against it rather than against the output.
type Window struct {
	hist  []byte
	wrPos int  // next write position in hist
	full  bool // hist has wrapped at least once
}

// NewWindow returns an empty Window.
func NewWindow() *Window {
	return &Window{hist: make([]byte, WindowSize)}
}

// HistSize reports how many bytes of history are available to copy from.
func (w *Window) HistSize() int {
	if w.full {
		return WindowSize
	}
	return w.wrPos
}

// PutByte appends c to the history.
func (w *Window) PutByte(c byte) {
	w.hist[w.wrPos] = c
	w.wrPos++
	if w.wrPos == WindowSize {
		w.wrPos = 0
		w.full = true
	}
}

// PutBytes appends p to the history.
func (w *Window) PutBytes(p []byte) {
	if len(p) >= WindowSize {
		copy(w.hist, p[len(p)-WindowSize:])
		w.wrPos = 0
		w.full = true
		return
	}
	n := copy(w.hist[w.wrPos:], p)
	if n < len(p) {
		copy(w.hist, p[n:])
		w.full = true
	}
	w.wrPos = (w.wrPos + len(p)) & windowMask
	if w.wrPos == 0 && len(p) > 0 {
		w.full = true
	}
}

// CopyMatch appends length bytes starting distance bytes back to both the
// history and dst, one byte at a time so a match may overlap the bytes it is
// producing. It reports false, leaving everything untouched, when distance is
// outside the available history.
func (w *Window) CopyMatch(distance, length int, dst []byte) ([]byte, bool) {
	if distance < 1 || distance > w.HistSize() {
		return dst, false
	}
	rdPos := (w.wrPos - distance) & windowMask
	for i := 0; i < length; i++ {
		c := w.hist[rdPos]
		w.PutByte(c)
		dst = append(dst, c)
		rdPos = (rdPos + 1) & windowMask
	}
	return dst, true
}
