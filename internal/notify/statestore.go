package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// StateStore persists one TrackingState per user as a JSON file, so
// notifications are not re-fired after a process restart.
type StateStore struct {
	dir string
}

func NewStateStore(dir string) *StateStore {
	return &StateStore{dir: dir}
}

// Load returns the user's tracking state. A missing file yields fresh state;
// malformed JSON is logged and likewise treated as fresh, never propagated.
func (s *StateStore) Load(uid string) *TrackingState {
	data, err := os.ReadFile(s.path(uid))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("notify state for %s unreadable, starting fresh: %v", uid, err)
		}
		return NewTrackingState()
	}
	st := NewTrackingState()
	if err := json.Unmarshal(data, st); err != nil {
		log.Printf("notify state for %s malformed, starting fresh: %v", uid, err)
		return NewTrackingState()
	}
	st.ensure()
	return st
}

// Save writes the user's tracking state atomically (temp file then rename).
func (s *StateStore) Save(uid string, st *TrackingState) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create notify state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode notify state: %w", err)
	}
	path := s.path(uid)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write notify state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace notify state: %w", err)
	}
	return nil
}

func (s *StateStore) path(uid string) string {
	// uids are our own identifiers, but keep path separators out anyway
	name := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(uid)
	return filepath.Join(s.dir, name+".json")
}
