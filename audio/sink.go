package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"go-stepseq/sequencer"
)

type Source interface {
	Process([][]float32)
}

// Sink plays a Source on the default output device
type Sink struct {
	stream *portaudio.Stream
}

// NewSink opens a stereo default stream. Any portaudio failure is reported as
// sequencer.ErrSinkUnavailable so the caller can run without audio.
func NewSink(src Source) (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio: %v", sequencer.ErrSinkUnavailable, err)
	}
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, bufferSize, src.Process)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: open stream: %v", sequencer.ErrSinkUnavailable, err)
	}
	return &Sink{stream: stream}, nil
}

func (s *Sink) Start() error {
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	s.stream.Close()
	portaudio.Terminate()
	return nil
}
