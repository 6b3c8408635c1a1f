package tts

import (
	"errors"
	"fmt"
)

// Common errors for the synthesis pipeline. Validation errors are returned
// before any engine is invoked; everything else surfaces through
// SynthesisError.
var (
	ErrEmptyText         = errors.New("no text to synthesize")
	ErrUnknownEngine     = errors.New("unknown engine")
	ErrEngineUnavailable = errors.New("engine is not available")
	ErrMissingVoice      = errors.New("no voice selected")
	ErrMissingModel      = errors.New("no model selected")
	ErrMissingLanguage   = errors.New("no language selected")
	ErrUnknownSpeaker    = errors.New("unknown speaker")
	ErrEmptyAudio        = errors.New("engine produced no audio")
)

// SynthesisError wraps an adapter-level failure with the engine that caused
// it. Failures are terminal for the request; nothing is retried.
type SynthesisError struct {
	Engine EngineID
	Op     string
	Err    error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Engine, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// NewSynthesisError wraps an adapter failure with its engine and operation.
func NewSynthesisError(engine EngineID, op string, err error) *SynthesisError {
	return &SynthesisError{Engine: engine, Op: op, Err: err}
}
