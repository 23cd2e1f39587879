package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZebulonRouseFrantzich/rustboot/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector leaves the platform table out of the VM.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile reads and parses the Lua config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*FileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > MaxConfigSize {
		return nil, fmt.Errorf("config %s exceeds %d bytes", path, MaxConfigSize)
	}

	cfg, err := p.ParseString(ctx, string(data))
	if err != nil {
		if parseErr, ok := err.(*ParseError); ok {
			parseErr.File = path
		}
		return nil, err
	}
	return cfg, nil
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*FileConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	// Detect platform and inject platform table
	if p.detector != nil {
		platformInfo, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, platformInfo); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &ParseError{
			Message: "Lua error",
			Detail:  err.Error(),
		}
	}

	return extractConfig(L)
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	File    string // config path, empty for in-memory configs
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "rustboot" table. A file that never
// assigns it yields an empty config.
func extractConfig(L *lua.LState) (*FileConfig, error) {
	global := L.GetGlobal(luaGlobalRustboot)
	switch global.Type() {
	case lua.LTNil:
		return &FileConfig{}, nil
	case lua.LTTable:
	default:
		return nil, &ParseError{
			Message: "invalid 'rustboot' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)

	cfg := &FileConfig{}
	strFields := []struct {
		name string
		dst  *string
	}{
		{luaFieldToolchain, &cfg.Toolchain},
		{luaFieldManifest, &cfg.Manifest},
		{luaFieldStrategy, &cfg.Strategy},
		{luaFieldBaseURL, &cfg.BaseURL},
		{luaFieldRustupURL, &cfg.RustupURL},
		{luaFieldInstallRoot, &cfg.InstallRoot},
		{luaFieldBinDir, &cfg.BinDir},
		{luaFieldGuardPolicy, &cfg.GuardPolicy},
		{luaFieldProxy, &cfg.Proxy},
	}
	for _, f := range strFields {
		v, err := stringField(table, f.name)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	// a Lua number loses trailing zeros (2.30 reads back as 2.3)
	switch v := table.RawGetString(luaFieldGlibcBaseline); v.Type() {
	case lua.LTNil:
	case lua.LTString:
		cfg.GlibcBaseline = strings.TrimSpace(v.String())
	case lua.LTNumber:
		return nil, &ParseError{
			Message: fmt.Sprintf("invalid '%s' field", luaFieldGlibcBaseline),
			Detail:  fmt.Sprintf("expected a quoted version such as \"2.35\", got number %s", v.String()),
		}
	default:
		return nil, fieldTypeError(luaFieldGlibcBaseline, "string", v)
	}

	binaries, err := extractBinaries(table)
	if err != nil {
		return nil, err
	}
	cfg.Binaries = binaries

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return cfg, nil
}

func stringField(table *lua.LTable, name string) (string, error) {
	v := table.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return "", nil
	case lua.LTString:
		return strings.TrimSpace(v.String()), nil
	default:
		return "", fieldTypeError(name, "string", v)
	}
}

// extractBinaries reads the binaries list. A single string is a one-element
// list; nils left by platform.when conditionals are skipped.
func extractBinaries(table *lua.LTable) ([]string, error) {
	v := table.RawGetString(luaFieldBinaries)
	switch v.Type() {
	case lua.LTNil:
		return nil, nil
	case lua.LTString:
		return []string{strings.TrimSpace(v.String())}, nil
	case lua.LTTable:
	default:
		return nil, fieldTypeError(luaFieldBinaries, "list of strings", v)
	}

	var names []string
	var bad lua.LValue
	v.(*lua.LTable).ForEach(func(_, item lua.LValue) {
		switch item.Type() {
		case lua.LTNil:
		case lua.LTString:
			names = append(names, strings.TrimSpace(item.String()))
		default:
			if bad == nil {
				bad = item
			}
		}
	})
	if bad != nil {
		return nil, fieldTypeError(luaFieldBinaries, "list of strings", bad)
	}
	return names, nil
}

func fieldTypeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s' field", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	parseErr, ok := err.(*ParseError)
	if !ok {
		return err.Error()
	}

	message := parseErr.Message
	if parseErr.File != "" {
		message = parseErr.File + ": " + message
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", message, parseErr.Detail)
	}
	// Extract the most relevant part of the error
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", message, detail)
}
