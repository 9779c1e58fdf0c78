// Package media stores generated question audio and submitted answer audio
// on the filesystem, namespaced per session.
package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SafeName reduces a candidate name to a filesystem-safe folder component.
func SafeName(name string) string {
	if name == "" {
		return "candidate"
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// Store is a session-scoped audio cache rooted at a single directory.
// Question audio is append-only: entries are written once via a temp file
// and rename, so an existing file is always complete.
type Store struct {
	root string

	mu     sync.Mutex
	inWork map[string]*sync.Mutex
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		root:   dir,
		inWork: make(map[string]*sync.Mutex),
	}
}

// SessionDir returns the directory holding all audio for one session.
func (s *Store) SessionDir(candidateName string, sessionID uuid.UUID) string {
	return filepath.Join(s.root, fmt.Sprintf("%s_%s", SafeName(candidateName), sessionID))
}

// QuestionAudioPath returns the cache path for a question's audio.
func (s *Store) QuestionAudioPath(candidateName string, sessionID, questionID uuid.UUID) string {
	return filepath.Join(s.SessionDir(candidateName, sessionID), fmt.Sprintf("q_%s.wav", questionID))
}

// HasQuestionAudio reports whether cached audio exists for the question.
func (s *Store) HasQuestionAudio(candidateName string, sessionID, questionID uuid.UUID) bool {
	_, err := os.Stat(s.QuestionAudioPath(candidateName, sessionID, questionID))
	return err == nil
}

// EnsureQuestionAudio synthesizes the question's audio unless it is already
// cached. synth writes the audio to the destination path it is given; the
// result is moved into place atomically. Concurrent callers for the same
// question serialize, and exactly one of them synthesizes.
func (s *Store) EnsureQuestionAudio(candidateName string, sessionID, questionID uuid.UUID, synth func(destPath string) error) (string, bool, error) {
	path := s.QuestionAudioPath(candidateName, sessionID, questionID)

	unlock := s.lockPath(path)
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create session audio dir: %w", err)
	}

	tmp := path + ".tmp"
	if err := synth(tmp); err != nil {
		_ = os.Remove(tmp)
		return "", false, err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", false, fmt.Errorf("failed to move audio into cache: %w", err)
	}
	return path, true, nil
}

// SaveAnswerAudio stores a submitted answer recording under the session's
// namespace and returns its path. The filename carries a random component,
// so submissions landing in the same millisecond never collide.
func (s *Store) SaveAnswerAudio(candidateName string, sessionID uuid.UUID, audio io.Reader) (string, error) {
	dir := s.SessionDir(candidateName, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session audio dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("ans_%d_%s.wav", time.Now().UnixMilli(), uuid.NewString()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create answer file: %w", err)
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write answer audio: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close answer file: %w", err)
	}
	return path, nil
}

// Resolve maps a (folder, file) pair from a request to a path inside the
// store root, rejecting traversal outside it.
func (s *Store) Resolve(folder, file string) (string, error) {
	if strings.Contains(folder, "..") || strings.Contains(file, "..") {
		return "", fmt.Errorf("invalid audio path")
	}
	path := filepath.Join(s.root, folder, file)
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid audio path")
	}
	return path, nil
}

func (s *Store) lockPath(path string) func() {
	s.mu.Lock()
	m, ok := s.inWork[path]
	if !ok {
		m = &sync.Mutex{}
		s.inWork[path] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
