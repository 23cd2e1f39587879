package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ReceiptFile is written to the install root after a successful install.
const ReceiptFile = "receipt.json"

// Receipt records what was installed into a root.
type Receipt struct {
	Version     int               `json:"version"` // schema version
	ID          string            `json:"id"`
	Channel     string            `json:"channel"`
	Triple      string            `json:"triple"`
	Mode        string            `json:"mode"`
	URL         string            `json:"url"`
	Home        string            `json:"home"`
	BinDir      string            `json:"bin_dir"`
	Bins        map[string]string `json:"bins"` // name -> target path
	InstalledAt time.Time         `json:"installed_at"`
}

// NewReceipt creates a receipt with a fresh ID and the current time.
func NewReceipt() *Receipt {
	return &Receipt{
		Version:     1,
		ID:          uuid.New().String(),
		Bins:        map[string]string{},
		InstalledAt: time.Now().UTC(),
	}
}

// Save writes the receipt into dir with write-then-rename.
func (r *Receipt) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create receipt directory: %w", err)
	}

	finalPath := filepath.Join(dir, ReceiptFile)
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temporary receipt: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename receipt: %w", err)
	}

	return nil
}

// LoadReceipt reads the receipt in dir. A missing receipt returns an error
// matching os.ErrNotExist.
func LoadReceipt(dir string) (*Receipt, error) {
	data, err := os.ReadFile(filepath.Join(dir, ReceiptFile))
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal receipt: %w", err)
	}
	return &r, nil
}
