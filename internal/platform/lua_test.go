package platform

import (
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func evalLuaCases(t *testing.T, L *lua.LState, tests []struct {
	name string
	code string
	want lua.LValue
}) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err != nil {
				t.Fatalf("failed to execute code: %v", err)
			}
			got := L.Get(-1)
			L.Pop(1)

			if got.Type() != tt.want.Type() {
				t.Errorf("type mismatch: got %v, want %v", got.Type(), tt.want.Type())
				return
			}
			if got.String() != tt.want.String() {
				t.Errorf("value mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInjectPlatformTable_LinuxGlibc(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:       "linux",
		Arch:     "amd64",
		ArchRaw:  "amd64",
		Platform: "ubuntu",
		Family:   "debian",
		Version:  "22.04",
		Libc:     &Libc{Family: LibcGlibc, Version: "2.35"},
	}

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	evalLuaCases(t, L, []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("linux")},
		{"arch", `return platform.arch`, lua.LString("amd64")},
		{"is_linux", `return platform.is_linux`, lua.LTrue},
		{"is_macos", `return platform.is_macos`, lua.LFalse},
		{"distro.id", `return platform.distro.id`, lua.LString("ubuntu")},
		{"distro.family", `return platform.distro.family`, lua.LString("debian")},
		{"libc.family", `return platform.libc.family`, lua.LString("glibc")},
		{"libc.version", `return platform.libc.version`, lua.LString("2.35")},
		{"is_glibc", `return platform.is_glibc`, lua.LTrue},
		{"is_musl", `return platform.is_musl`, lua.LFalse},
		{"is_alpine", `return platform.is_alpine`, lua.LFalse},
	})
}

func TestInjectPlatformTable_Alpine(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:       "linux",
		Arch:     "arm64",
		ArchRaw:  "arm64",
		Platform: "alpine",
		Family:   FamilyAlpine,
		Libc:     &Libc{Family: LibcMusl, Version: "1.2.4"},
	}

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	evalLuaCases(t, L, []struct {
		name string
		code string
		want lua.LValue
	}{
		{"is_musl", `return platform.is_musl`, lua.LTrue},
		{"is_glibc", `return platform.is_glibc`, lua.LFalse},
		{"is_alpine", `return platform.is_alpine`, lua.LTrue},
		{"is_arm64", `return platform.is_arm64`, lua.LTrue},
	})
}

func TestInjectPlatformTable_MacOS(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	info := &Info{
		OS:      "darwin",
		Arch:    "arm64",
		ArchRaw: "arm64",
	}

	if err := InjectPlatformTable(L, info); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	evalLuaCases(t, L, []struct {
		name string
		code string
		want lua.LValue
	}{
		{"os", `return platform.os`, lua.LString("darwin")},
		{"is_macos", `return platform.is_macos`, lua.LTrue},
		{"is_apple_silicon", `return platform.is_apple_silicon`, lua.LTrue},
		{"distro is nil", `return platform.distro`, lua.LNil},
		{"libc is nil", `return platform.libc`, lua.LNil},
		{"is_musl", `return platform.is_musl`, lua.LFalse},
	})
}

func TestPlatformTable_ReadOnly(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	tests := []struct {
		name string
		code string
	}{
		{"modify os", `platform.os = "windows"`},
		{"add new field", `platform.new_field = "value"`},
		{"modify boolean", `platform.is_musl = true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := L.DoString(tt.code); err == nil {
				t.Error("expected error when modifying read-only table, got nil")
			}
		})
	}
}

func TestPlatformTable_WhenHelper(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := InjectPlatformTable(L, &Info{OS: "linux", Arch: "amd64"}); err != nil {
		t.Fatalf("InjectPlatformTable() error = %v", err)
	}

	evalLuaCases(t, L, []struct {
		name string
		code string
		want lua.LValue
	}{
		{"when true returns value", `return platform.when(true, "nightly")`, lua.LString("nightly")},
		{"when false returns nil", `return platform.when(false, "nightly")`, lua.LNil},
		{"when with platform boolean", `return platform.when(platform.is_linux, "linux")`, lua.LString("linux")},
	})
}
