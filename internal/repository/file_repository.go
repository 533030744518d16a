package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"taskcompass/internal/model"
)

// FileRepository is the JSON-file backend: tasks.json and users.json under a
// data directory, matching the flat backup format the export/import endpoints
// speak. Corrupt or missing files is treated as an empty list, never as a
// fatal error.
type FileRepository struct {
	mu        sync.Mutex
	tasksPath string
	usersPath string
}

func NewFileRepository(dir string) *FileRepository {
	return &FileRepository{
		tasksPath: filepath.Join(dir, "tasks.json"),
		usersPath: filepath.Join(dir, "users.json"),
	}
}

type tasksFile struct {
	Tasks []model.Task `json:"tasks"`
}

type usersFile struct {
	Accounts []model.UserAccount `json:"accounts"`
}

func (r *FileRepository) LoadTasks(ctx context.Context) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc tasksFile
	readJSONFile(r.tasksPath, &doc)
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	return doc.Tasks, nil
}

func (r *FileRepository) SaveTasks(ctx context.Context, list []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSONFile(r.tasksPath, tasksFile{Tasks: list})
}

func (r *FileRepository) LoadUsers(ctx context.Context) ([]model.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var doc usersFile
	readJSONFile(r.usersPath, &doc)
	if doc.Accounts == nil {
		doc.Accounts = []model.UserAccount{}
	}
	return doc.Accounts, nil
}

func (r *FileRepository) SaveUsers(ctx context.Context, accounts []model.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return writeJSONFile(r.usersPath, usersFile{Accounts: accounts})
}

// readJSONFile decodes into dst, leaving it untouched when the file is
// missing or malformed. Malformed content is logged, not propagated.
func readJSONFile(path string, dst any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("reading %s: %v", path, err)
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		log.Printf("malformed %s, treating as empty: %v", path, err)
	}
}

// writeJSONFile writes via a temp file and rename so readers never observe a
// half-written document.
func writeJSONFile(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
