package tts

import "context"

// Engine is the uniform synthesis contract every adapter implements. Engines
// are constructed once at process start; Info().Available never changes
// afterwards.
type Engine interface {
	// Info describes the engine and its capabilities.
	Info() EngineInfo

	// Validate reports whether the request carries everything this engine
	// needs. It is called by the registry before dispatch; a failure means
	// no synthesis is attempted.
	Validate(req Request) error

	// Synthesize converts the request's text into audio. The call blocks
	// until the full audio buffer is available.
	Synthesize(ctx context.Context, req Request) (*Result, error)
}
