package voice

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config locates the speech engine scripts and bounds their runtime. All
// paths are explicit; the engine never assumes a working-directory layout.
type Config struct {
	// PythonPath is the interpreter used to run the engine scripts.
	PythonPath string
	// ScriptDir holds the STT/TTS scripts.
	ScriptDir string
	// STTScript and TTSScript are filenames within ScriptDir.
	STTScript string
	TTSScript string
	// TranscribeTimeout bounds one speech-to-text call. The first run can be
	// slow while the model downloads, so the default is generous.
	TranscribeTimeout time.Duration
	// SynthesizeTimeout bounds one text-to-speech call.
	SynthesizeTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.PythonPath == "" {
		c.PythonPath = "python3"
	}
	if c.STTScript == "" {
		c.STTScript = "whisper_stt.py"
	}
	if c.TTSScript == "" {
		c.TTSScript = "piper_tts.py"
	}
	if c.TranscribeTimeout == 0 {
		c.TranscribeTimeout = 5 * time.Minute
	}
	if c.SynthesizeTimeout == 0 {
		c.SynthesizeTimeout = 30 * time.Second
	}
	return c
}

// Engine runs local STT/TTS models as subprocesses. Transcripts arrive on
// stdout; engine logs arrive on stderr and are kept separate.
type Engine struct {
	cfg Config
	log zerolog.Logger
}

// NewEngine creates a subprocess speech engine.
func NewEngine(cfg Config, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg.withDefaults(), log: log}
}

// Transcribe runs the STT script over the audio file and returns the
// transcript. The call is bounded by the configured timeout.
func (e *Engine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.TranscribeTimeout)
	defer cancel()

	script := filepath.Join(e.cfg.ScriptDir, e.cfg.STTScript)
	cmd := exec.CommandContext(ctx, e.cfg.PythonPath, script, audioPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		e.log.Debug().Str("audioPath", audioPath).Str("stderr", stderr.String()).Msg("stt engine logs")
	}
	if err != nil {
		return "", &TranscriptionError{
			AudioPath: audioPath,
			Timeout:   isTimeout(ctx, err),
			Message:   strings.TrimSpace(stderr.String()),
			Cause:     err,
		}
	}

	transcript := strings.TrimSpace(stdout.String())
	if transcript == "" {
		return "", &TranscriptionError{AudioPath: audioPath, Message: "empty transcript"}
	}
	return transcript, nil
}

// Synthesize runs the TTS script to render text into destPath.
func (e *Engine) Synthesize(ctx context.Context, text, destPath string) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.SynthesizeTimeout)
	defer cancel()

	script := filepath.Join(e.cfg.ScriptDir, e.cfg.TTSScript)
	cmd := exec.CommandContext(ctx, e.cfg.PythonPath, script, SanitizeText(text), destPath)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return &SynthesisError{
			DestPath: destPath,
			Timeout:  isTimeout(ctx, err),
			Message:  strings.TrimSpace(output.String()),
			Cause:    err,
		}
	}
	return nil
}

// SanitizeText strips characters that break argument passing to the TTS
// subprocess: double quotes and line breaks.
func SanitizeText(text string) string {
	text = strings.ReplaceAll(text, `"`, "'")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	return text
}

func isTimeout(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
}
