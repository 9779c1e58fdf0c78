// Package voice provides the speech-to-text and text-to-speech ports used by
// the interview orchestrator, and a subprocess engine implementing them.
package voice

import (
	"context"
	"fmt"
)

// Transcriber converts recorded answer audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Synthesizer renders text into an audio file at destPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, destPath string) error
}

// TranscriptionError indicates a failed speech-to-text call. Timeout marks
// calls that exceeded their bound instead of failing outright.
type TranscriptionError struct {
	AudioPath string
	Timeout   bool
	Message   string
	Cause     error
}

func (e *TranscriptionError) Error() string {
	kind := "transcription failed"
	if e.Timeout {
		kind = "transcription timed out"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s for %s: %s: %v", kind, e.AudioPath, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s for %s: %s", kind, e.AudioPath, e.Message)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// SynthesisError indicates a failed text-to-speech call.
type SynthesisError struct {
	DestPath string
	Timeout  bool
	Message  string
	Cause    error
}

func (e *SynthesisError) Error() string {
	kind := "synthesis failed"
	if e.Timeout {
		kind = "synthesis timed out"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s for %s: %s: %v", kind, e.DestPath, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s for %s: %s", kind, e.DestPath, e.Message)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}
