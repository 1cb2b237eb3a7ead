package graphics

import "sync"

// audioStream bridges the core's per-frame sample batches into the pull
// model of the Ebitengine audio player. Underruns read out as silence so
// the player never blocks the game loop.
type audioStream struct {
	mu  sync.Mutex
	buf []uint8
}

func newAudioStream() *audioStream {
	return &audioStream{buf: make([]uint8, 0, 8192)}
}

// Push appends stereo samples as little-endian bytes
func (s *audioStream) Push(samples []int16) {
	if len(samples) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Bound the backlog so a stalled player does not grow it forever;
	// a quarter second of stereo audio is plenty of slack.
	const maxBacklog = audioSampleRate / 4 * 4
	for _, sample := range samples {
		s.buf = append(s.buf, uint8(sample), uint8(sample>>8))
	}
	if len(s.buf) > maxBacklog {
		s.buf = s.buf[len(s.buf)-maxBacklog:]
	}
}

// Read implements io.Reader for the audio player
func (s *audioStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buf)
	s.buf = s.buf[n:]

	// Pad with silence rather than stalling the player
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
