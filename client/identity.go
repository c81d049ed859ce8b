package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Identity is the client-held identity persisted outside the store so a
// restarted client can attempt silent reconnection.
type Identity struct {
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	RoomCode    string `json:"roomCode"`
}

// IdentityFile reads and writes the identity as a small JSON file.
type IdentityFile struct {
	path string
}

func NewIdentityFile(path string) *IdentityFile {
	return &IdentityFile{path: path}
}

// DefaultIdentityPath places the file under the user config dir.
func DefaultIdentityPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "priorities", "identity.json"), nil
}

// Load returns the stored identity, or nil if none has been saved.
func (f *IdentityFile) Load() (*Identity, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		// A corrupt file is as good as no file.
		return nil, nil
	}
	return &id, nil
}

func (f *IdentityFile) Save(id *Identity) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create identity dir: %w", err)
	}
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write identity: %w", err)
	}
	return nil
}

// Clear removes the stored identity; missing is fine.
func (f *IdentityFile) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
