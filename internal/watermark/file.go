package watermark

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileState is the on-disk document. Kept human-editable so an operator can
// reset or pin the cursor with a text editor.
type fileState struct {
	Account   string    `yaml:"account"`
	ItemID    string    `yaml:"item_id"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// FileStore keeps the watermark in a small YAML state file.
type FileStore struct {
	path    string
	account string
}

func NewFileStore(path, account string) *FileStore {
	return &FileStore{path: path, account: account}
}

func (s *FileStore) Read(ctx context.Context) (string, bool, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read watermark file: %w", err)
	}
	var st fileState
	if err := yaml.Unmarshal(b, &st); err != nil {
		return "", false, fmt.Errorf("parse watermark file: %w", err)
	}
	if st.ItemID == "" {
		return "", false, nil
	}
	return st.ItemID, true, nil
}

func (s *FileStore) Write(ctx context.Context, id string) error {
	st := fileState{Account: s.account, ItemID: id, UpdatedAt: time.Now().UTC()}
	b, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create watermark dir: %w", err)
		}
	}
	// Write-then-rename so a crash mid-write never leaves a torn file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write watermark file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace watermark file: %w", err)
	}
	return nil
}
