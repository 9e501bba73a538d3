package interfaces

import "context"

// Transcriber converts caller audio to text. Transient service failures
// surface as turn-level errors; the orchestration engine does not retry.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer converts an agent answer to speech audio. Invoked by the
// transport layer after the turn completes, never by the reasoning loop.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
