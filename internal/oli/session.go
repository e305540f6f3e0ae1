package oli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Session bounds the lifetime of server-side chemistry files created during
// a logical unit of work. Files produced through the session are deleted on
// Close unless the producing call asked for retention.
//
// A Session is driven by a single goroutine; the tracked set is only
// mutated between network calls and needs no locking.
type Session struct {
	ID     string
	client *Client

	tracked []string
	closed  bool

	// promptIn overrides stdin for the cleanup confirmation in tests.
	promptIn io.Reader
}

// OpenSession starts a session with an empty ownership set.
func (c *Client) OpenSession() *Session {
	s := &Session{
		ID:     uuid.New().String()[:8],
		client: c,
	}
	c.logger.Info("session opened", "session_id", s.ID)
	return s
}

// track records a file ID for cleanup unless the caller retains it.
func (s *Session) track(fileID string, keepFile bool) {
	if keepFile {
		return
	}
	s.tracked = append(s.tracked, fileID)
}

// Tracked returns the file IDs currently owned by the session.
func (s *Session) Tracked() []string {
	out := make([]string, len(s.tracked))
	copy(out, s.tracked)
	return out
}

// Close deletes every tracked file exactly once, best effort: individual
// deletion failures are logged, never returned, and never stop the sweep.
// In interactive mode one y/N prompt (default yes) gates the whole batch.
// Close is idempotent; calls after the first are no-ops.
func (s *Session) Close(ctx context.Context) {
	if s.closed {
		return
	}
	s.closed = true

	if len(s.tracked) == 0 {
		s.client.logger.Info("session closed", "session_id", s.ID)
		return
	}

	if s.client.interactive && !s.confirmCleanup() {
		s.client.logger.Info("session cleanup skipped", "session_id", s.ID, "files", len(s.tracked))
		return
	}

	for _, fileID := range s.tracked {
		s.client.logger.Info("deleting DBS file", "session_id", s.ID, "file_id", fileID)
		if err := s.client.DeleteDBSFile(ctx, fileID); err != nil {
			s.client.logger.Warn("failed to delete DBS file", "file_id", fileID, "error", err)
			continue
		}
	}
	s.client.logger.Info("session closed", "session_id", s.ID, "files", len(s.tracked))
}

// confirmCleanup asks once before deleting the session's files.
func (s *Session) confirmCleanup() bool {
	in := s.promptIn
	if in == nil {
		in = os.Stdin
	}
	fmt.Printf("About to delete %d DBS file(s) [Y/n]: ", len(s.tracked))
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil {
		// Treat an unreadable prompt as the default answer.
		return true
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "" || response == "y" || response == "yes"
}
