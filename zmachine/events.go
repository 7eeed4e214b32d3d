package zmachine

// StepEvent is what Step() returns each time the machine needs the host
// to do something it cannot do on its own: produce output, read input,
// or persist/restore a save file. This mirrors the reference
// implementation's step() loop, adapted from its channel-based original
// into a synchronous pull the host drives one call at a time.
type StepEvent interface {
	isStepEvent()
}

// Done means the story called `quit`, or a fatal RuntimeError occurred
// (Err is non-nil in that case); the host should stop calling Step().
type Done struct {
	Err error
}

func (Done) isStepEvent() {}

// Output means new lower-window text (and/or an upper-window repaint) is
// available; the host should drain Screen.DrainLowerOutput()/UpperWindow()
// and call Step() again immediately (output does not consume a turn).
type Output struct{}

func (Output) isStepEvent() {}

// ReadLine is emitted by VAR:228 (`sread`/`aread`); the host must collect
// a line of input and call ResumeReadLine.
type ReadLine struct {
	MaxLength int
	// Preloaded is any text already present in the input buffer (v5+
	// games may pre-fill it); the host should show it as an editable
	// starting point.
	Preloaded string
}

func (ReadLine) isStepEvent() {}

// ReadChar is emitted by VAR:246 (`read_char`); the host must collect a
// single keystroke and call ResumeReadChar.
type ReadChar struct{}

func (ReadChar) isStepEvent() {}

// SaveRequest is emitted by the `save` opcode; the host must produce
// Quetzal bytes via ExportSave() and call ResumeSave with whether the
// host-side write succeeded.
type SaveRequest struct{}

func (SaveRequest) isStepEvent() {}

// RestoreRequest is emitted by the `restore` opcode; the host must
// supply previously-saved Quetzal bytes (or none) to ResumeRestore.
type RestoreRequest struct{}

func (RestoreRequest) isStepEvent() {}

// Warning is a non-fatal condition the host may want to surface in a
// debug channel: stack underflow, a Z-string that fails to decode, or a
// save file that fails to restore. Output stream 2/4 requests are
// discarded without a warning.
type Warning struct {
	Message string
}

func (Warning) isStepEvent() {}
