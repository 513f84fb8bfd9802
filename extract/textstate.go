package extract

// graphicsState tracks the subset of the PDF graphics and text state that
// element extraction depends on: the current transform, the text and line
// matrices, font selection, spacing parameters, and the fill color.
type graphicsState struct {
	ctm       Matrix
	fillColor [3]float64 // RGB in [0,1]

	// Text state, valid between BT and ET.
	textMatrix Matrix
	lineMatrix Matrix
	fontName   string
	fontSize   float64
	charSpace  float64
	wordSpace  float64
	hscale     float64 // horizontal scaling, 1.0 = 100%
	leading    float64
	rise       float64
}

func newGraphicsState() *graphicsState {
	return &graphicsState{
		ctm:        Identity,
		textMatrix: Identity,
		lineMatrix: Identity,
		hscale:     1.0,
	}
}

func (gs *graphicsState) clone() *graphicsState {
	c := *gs
	return &c
}

// stateStack implements q/Q nesting.
type stateStack struct {
	current *graphicsState
	saved   []*graphicsState
}

func newStateStack() *stateStack {
	return &stateStack{current: newGraphicsState()}
}

func (s *stateStack) save() {
	s.saved = append(s.saved, s.current.clone())
}

func (s *stateStack) restore() {
	if n := len(s.saved); n > 0 {
		s.current = s.saved[n-1]
		s.saved = s.saved[:n-1]
	}
}

func (gs *graphicsState) concat(m Matrix) {
	gs.ctm = m.Mul(gs.ctm)
}

func (gs *graphicsState) beginText() {
	gs.textMatrix = Identity
	gs.lineMatrix = Identity
}

func (gs *graphicsState) setTextMatrix(m Matrix) {
	gs.textMatrix = m
	gs.lineMatrix = m
}

// nextLine moves the line matrix by (tx, ty) and resets the text matrix
// to it (Td/TD semantics).
func (gs *graphicsState) nextLine(tx, ty float64) {
	gs.lineMatrix = Translation(tx, ty).Mul(gs.lineMatrix)
	gs.textMatrix = gs.lineMatrix
}

// renderMatrix returns the text-space to device-space transform at the
// current position, including text rise.
func (gs *graphicsState) renderMatrix() Matrix {
	trm := Translation(0, gs.rise).Mul(gs.textMatrix)
	return trm.Mul(gs.ctm)
}

// advance moves the text matrix horizontally after showing text. The
// displacement is in unscaled text space units.
func (gs *graphicsState) advance(tx float64) {
	gs.textMatrix = Translation(tx*gs.hscale, 0).Mul(gs.textMatrix)
}
