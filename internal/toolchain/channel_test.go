package toolchain

import (
	"errors"
	"testing"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		descriptor string
		want       Channel
		wantErr    bool
	}{
		{"1.2.0-nightly", Channel{Name: Nightly}, false},
		{"1.2.0-beta", Channel{Name: Beta}, false},
		{"1.2.0-stable", Channel{Name: Stable}, false},
		{"1.74.0", Channel{Name: "1.74.0", Pinned: true}, false},
		{" 1.74.0 ", Channel{Name: "1.74.0", Pinned: true}, false},
		{"10.200.3000", Channel{Name: "10.200.3000", Pinned: true}, false},
		{"2024-stable", Channel{}, true},
		{"nightly", Channel{}, true},
		{"stable", Channel{}, true},
		{"1.74", Channel{}, true},
		{"v1.74.0", Channel{}, true},
		{"1.74.0-rc.1", Channel{}, true},
		{"1.74.0-nightly-extra", Channel{}, true},
		{"-nightly", Channel{}, true},
		{"", Channel{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			got, err := Select(tt.descriptor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Select(%q) error = %v, wantErr %v", tt.descriptor, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownToolchain) {
					t.Errorf("Select(%q) error = %v, want ErrUnknownToolchain", tt.descriptor, err)
				}
				var ute *UnknownToolchainError
				if !errors.As(err, &ute) || ute.Descriptor != tt.descriptor {
					t.Errorf("Select(%q) error does not carry the descriptor: %v", tt.descriptor, err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Select(%q) = %+v, want %+v", tt.descriptor, got, tt.want)
			}
		})
	}
}

func TestSelect_Pure(t *testing.T) {
	for _, d := range []string{"1.2.0-nightly", "1.74.0", "2024-stable"} {
		first, firstErr := Select(d)
		for i := 0; i < 5; i++ {
			got, err := Select(d)
			if got != first || (err == nil) != (firstErr == nil) {
				t.Fatalf("Select(%q) not deterministic: %+v/%v then %+v/%v", d, first, firstErr, got, err)
			}
		}
	}
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		name    string
		want    Channel
		wantErr bool
	}{
		{"stable", Channel{Name: Stable}, false},
		{"Nightly", Channel{Name: Nightly}, false},
		{" beta ", Channel{Name: Beta}, false},
		{"1.80.1", Channel{Name: "1.80.1", Pinned: true}, false},
		{"nightly-2024-01-01", Channel{}, true},
		{"1.80", Channel{}, true},
		{"", Channel{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseChannel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseChannel(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownToolchain) {
				t.Errorf("ParseChannel(%q) error = %v, want ErrUnknownToolchain", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseChannel(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestChannel_IsZero(t *testing.T) {
	if !(Channel{}).IsZero() {
		t.Error("zero Channel should report IsZero")
	}
	if (Channel{Name: Stable}).IsZero() {
		t.Error("stable Channel should not report IsZero")
	}
}
