package state

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestReceipt_SaveLoad(t *testing.T) {
	dir := t.TempDir()

	r := NewReceipt()
	r.Channel = "nightly"
	r.Triple = "x86_64-unknown-linux-gnu"
	r.Mode = "archive"
	r.Bins["cargo"] = "/root/.rustboot/toolchains/rust-nightly-x86_64-unknown-linux-gnu/cargo/bin/cargo"

	if _, err := uuid.Parse(r.ID); err != nil {
		t.Errorf("receipt ID %q is not a UUID: %v", r.ID, err)
	}

	if err := r.Save(dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ReceiptFile+".tmp")); !os.IsNotExist(err) {
		t.Error("temporary receipt should not remain after Save")
	}

	got, err := LoadReceipt(dir)
	if err != nil {
		t.Fatalf("LoadReceipt() error = %v", err)
	}
	if got.ID != r.ID || got.Channel != "nightly" || got.Bins["cargo"] != r.Bins["cargo"] {
		t.Errorf("LoadReceipt() = %+v, want %+v", got, r)
	}
	if !got.InstalledAt.Equal(r.InstalledAt) {
		t.Errorf("InstalledAt = %v, want %v", got.InstalledAt, r.InstalledAt)
	}
}

func TestReceipt_SaveOverwrites(t *testing.T) {
	dir := t.TempDir()

	first := NewReceipt()
	first.Channel = "stable"
	if err := first.Save(dir); err != nil {
		t.Fatal(err)
	}

	second := NewReceipt()
	second.Channel = "beta"
	if err := second.Save(dir); err != nil {
		t.Fatal(err)
	}

	got, err := LoadReceipt(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != second.ID || got.Channel != "beta" {
		t.Errorf("LoadReceipt() = %+v, want second receipt", got)
	}
	if first.ID == second.ID {
		t.Error("receipts should get distinct IDs")
	}
}

func TestLoadReceipt_Missing(t *testing.T) {
	if _, err := LoadReceipt(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadReceipt() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadReceipt_Corrupt(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ReceiptFile), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReceipt(dir); err == nil {
		t.Error("LoadReceipt() on corrupt file should fail")
	}
}
