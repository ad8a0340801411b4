package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/saizk/whapbot/internal/browser"
	"github.com/saizk/whapbot/internal/platform"
)

// Parser evaluates whapbot.lua files.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a parser. A nil detector leaves the platform table out.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: &noopLogger{}}
}

// WithLogger sets the logger used by the parser.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// ParseFile reads and parses the config at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, maxConfigSize),
		}
	}

	p.logger.Debug("parsing config", "path", path)
	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	cfg, err := extractConfig(L)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("parsed config", "root", cfg.Root, "drivers", len(cfg.Drivers))
	return cfg, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global "whapbot" table.
func extractConfig(L *lua.LState) (*Config, error) {
	global := L.GetGlobal(luaGlobalWhapbot)
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: fmt.Sprintf("missing or invalid '%s' table", luaGlobalWhapbot),
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	cfg := &Config{Root: DefaultRoot}

	switch v := table.RawGetString(luaFieldRoot).(type) {
	case *lua.LNilType:
	case lua.LString:
		cfg.Root = string(v)
	default:
		return nil, fieldError(luaFieldRoot, "string", v)
	}

	switch v := table.RawGetString(luaFieldDrivers).(type) {
	case *lua.LNilType:
	case *lua.LTable:
		drivers, err := extractDrivers(v)
		if err != nil {
			return nil, err
		}
		cfg.Drivers = drivers
	default:
		return nil, fieldError(luaFieldDrivers, "table", v)
	}

	switch v := table.RawGetString(luaFieldFeeds).(type) {
	case *lua.LNilType:
	case *lua.LTable:
		feeds, err := extractFeeds(v)
		if err != nil {
			return nil, err
		}
		cfg.Feeds = feeds
	default:
		return nil, fieldError(luaFieldFeeds, "table", v)
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}
	return cfg, nil
}

// extractDrivers reads the positional entries of the drivers table in index
// order. Holes left by platform conditionals (`cond and "edge" or nil`) are
// skipped.
func extractDrivers(table *lua.LTable) ([]Driver, error) {
	type indexed struct {
		index int
		value lua.LValue
	}
	var entries []indexed
	var keyErr error

	table.ForEach(func(key, value lua.LValue) {
		n, ok := key.(lua.LNumber)
		if !ok || float64(n) != float64(int(n)) {
			keyErr = fmt.Errorf("drivers: unexpected key %s", key.String())
			return
		}
		if value.Type() != lua.LTNil {
			entries = append(entries, indexed{index: int(n), value: value})
		}
	})
	if keyErr != nil {
		return nil, &ParseError{Message: "invalid drivers table", Detail: keyErr.Error()}
	}
	sort.Slice(entries, func(a, b int) bool { return entries[a].index < entries[b].index })

	drivers := make([]Driver, 0, len(entries))
	for _, e := range entries {
		d, err := extractDriver(e.index, e.value)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// extractDriver accepts "chrome" or { browser = "chrome", version = "..." }.
func extractDriver(i int, value lua.LValue) (Driver, error) {
	d := Driver{Version: DefaultVersion}

	switch v := value.(type) {
	case lua.LString:
		d.Browser = normalizeBrowser(string(v))
	case *lua.LTable:
		name, ok := v.RawGetString(luaFieldBrowser).(lua.LString)
		if !ok {
			return d, &ParseError{
				Message: "invalid driver entry",
				Detail:  fmt.Sprintf("drivers[%d]: '%s' must be a string", i, luaFieldBrowser),
			}
		}
		d.Browser = normalizeBrowser(string(name))

		switch ver := v.RawGetString(luaFieldVersion).(type) {
		case *lua.LNilType:
		case lua.LString:
			d.Version = strings.TrimSpace(string(ver))
		case lua.LNumber:
			// version = 114 arrives as a number.
			d.Version = ver.String()
		default:
			return d, &ParseError{
				Message: "invalid driver entry",
				Detail:  fmt.Sprintf("drivers[%d]: '%s' must be a string, got %s", i, luaFieldVersion, ver.Type()),
			}
		}
	default:
		return d, &ParseError{
			Message: "invalid driver entry",
			Detail:  fmt.Sprintf("drivers[%d]: expected string or table, got %s", i, value.Type()),
		}
	}
	return d, nil
}

func extractFeeds(table *lua.LTable) (map[browser.Family]string, error) {
	feeds := map[browser.Family]string{}
	var err error

	table.ForEach(func(key, value lua.LValue) {
		k, kok := key.(lua.LString)
		v, vok := value.(lua.LString)
		if !kok || !vok {
			err = errors.Join(err, fmt.Errorf("feeds: entries must map a browser name to a URL, got %s = %s", key.Type(), value.Type()))
			return
		}
		feeds[normalizeBrowser(string(k))] = string(v)
	})
	if err != nil {
		return nil, &ParseError{Message: "invalid feeds table", Detail: err.Error()}
	}
	return feeds, nil
}

func normalizeBrowser(name string) browser.Family {
	return browser.Family(strings.ToLower(strings.TrimSpace(name)))
}

func fieldError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("invalid '%s' field", field),
		Detail:  fmt.Sprintf("expected %s, got %s", want, got.Type()),
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}
