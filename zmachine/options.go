package zmachine

// Dimensions is the host terminal's size in character cells. LoadStory
// does not read it: the header's screen-size fields are always written as
// 25 lines by 80 columns, and the upper window's grid is not bounded by it.
type Dimensions struct {
	Cols uint16
	Rows uint16
}

// Options is the interpreter's configuration surface: everything a host
// can tune without touching story-file internals.
type Options struct {
	LogInstructions bool
	RandSeed        [16]byte
	Dimensions      Dimensions
	UndoLimit       int
}

// DefaultOptions mirrors the reference implementation's defaults: an
// 80x25 terminal, a 16-slot undo ring, and a fixed seed (its 4 constituent
// bytes spell "Zork" in ASCII) so runs are reproducible unless a host
// asks for real entropy via Options.RandSeed being left zeroed.
func DefaultOptions() Options {
	return Options{
		LogInstructions: false,
		RandSeed:        [16]byte{90, 111, 114, 107},
		Dimensions:      Dimensions{Cols: 80, Rows: 25},
		UndoLimit:       16,
	}
}
