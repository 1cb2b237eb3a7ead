package graphics

// HeadlessBackend runs the core without any window or audio device, for
// automation and tests.
type HeadlessBackend struct {
	config Config
}

// NewHeadlessBackend creates the windowless backend
func NewHeadlessBackend(config Config) *HeadlessBackend {
	return &HeadlessBackend{config: config}
}

// Name identifies the backend
func (b *HeadlessBackend) Name() string {
	return "headless"
}

// Headless reports true
func (b *HeadlessBackend) Headless() bool {
	return true
}

// Run executes frames until the core stops or the configured frame limit
// is reached. Audio is drained and dropped.
func (b *HeadlessBackend) Run(core Core) error {
	frames := 0
	for !core.Done() {
		core.RunFrame()
		core.DrainAudio()
		frames++
		if b.config.FrameLimit > 0 && frames >= b.config.FrameLimit {
			break
		}
	}
	return nil
}
