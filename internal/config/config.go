// Package config loads moacafe settings.
//
// Settings come from four layers, later ones winning:
//
//  1. The embedded CUE schema with its defaults and the compiled-in menu
//  2. An optional user CUE file unified with the schema
//  3. An optional .env file
//  4. MOACAFE_* process environment variables
//
// CLI flags are applied on top by the caller.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/joho/godotenv"

	"github.com/roach88/moacafe/internal/ir"
)

//go:embed schema.cue
var schemaSource []byte

//go:embed catalog.cue
var catalogSource []byte

// Environment variables read by Load.
const (
	EnvRemoteURL    = "MOACAFE_REMOTE_URL"
	EnvAuthToken    = "MOACAFE_AUTH_TOKEN"
	EnvDB           = "MOACAFE_DB"
	EnvPollInterval = "MOACAFE_POLL_INTERVAL"
	EnvTimeout      = "MOACAFE_TIMEOUT"
	EnvDrain        = "MOACAFE_DRAIN"
)

// Config is the resolved configuration.
type Config struct {
	RemoteURL    string
	AuthToken    string
	Timeout      time.Duration
	PollInterval time.Duration
	Drain        string
	DBPath       string
	Event        ir.EventConfig
	Menu         []ir.MenuItem
}

// fileConfig mirrors the CUE document.
type fileConfig struct {
	Remote struct {
		URL     string `json:"url"`
		Auth    string `json:"auth"`
		Timeout string `json:"timeout"`
	} `json:"remote"`
	Sync struct {
		PollInterval string `json:"pollInterval"`
		Drain        string `json:"drain"`
	} `json:"sync"`
	Store struct {
		Path string `json:"path"`
	} `json:"store"`
	Event ir.EventConfig `json:"event"`
	Menu  []ir.MenuItem  `json:"menu"`
}

// Options controls where Load looks.
type Options struct {
	// ConfigFile is a CUE file unified with the schema. Empty means none.
	ConfigFile string

	// EnvFile is a dotenv file. A missing file is not an error.
	EnvFile string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)
}

// Error reports an invalid configuration.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration with no user file and no environment.
func Default() (*Config, error) {
	return Load(Options{LookupEnv: func(string) (string, bool) { return "", false }})
}

// Load resolves the configuration layers.
func Load(opts Options) (*Config, error) {
	v, err := evaluate(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	var fc fileConfig
	if err := v.Decode(&fc); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &Config{
		RemoteURL: fc.Remote.URL,
		AuthToken: fc.Remote.Auth,
		Drain:     fc.Sync.Drain,
		DBPath:    fc.Store.Path,
		Event:     fc.Event,
		Menu:      fc.Menu,
	}
	if cfg.Menu == nil {
		cfg.Menu = []ir.MenuItem{}
	}
	if cfg.Timeout, err = parseDuration("remote.timeout", fc.Remote.Timeout); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = parseDuration("sync.pollInterval", fc.Sync.PollInterval); err != nil {
		return nil, err
	}

	lookup, err := envLookup(opts)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// evaluate unifies schema, catalog and the optional user file.
func evaluate(path string) (cue.Value, error) {
	ctx := cuecontext.New()

	v := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	v = v.Unify(ctx.CompileBytes(catalogSource, cue.Filename("catalog.cue")))

	if path != "" {
		src, err := os.ReadFile(path)
		if err != nil {
			return cue.Value{}, &Error{Field: "config", Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		user := ctx.CompileBytes(src, cue.Filename(path))
		if err := user.Err(); err != nil {
			return cue.Value{}, formatCUEError(err)
		}
		v = v.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cue.Value{}, formatCUEError(err)
	}
	return v, nil
}

// envLookup layers the process environment over the dotenv file.
func envLookup(opts Options) (func(string) (string, bool), error) {
	process := opts.LookupEnv
	if process == nil {
		process = os.LookupEnv
	}
	if opts.EnvFile == "" {
		return process, nil
	}

	dotenv, err := godotenv.Read(opts.EnvFile)
	if errors.Is(err, fs.ErrNotExist) {
		return process, nil
	}
	if err != nil {
		return nil, &Error{Field: "env", Message: fmt.Sprintf("reading %s: %v", opts.EnvFile, err)}
	}
	return func(key string) (string, bool) {
		if v, ok := process(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRemoteURL); ok && v != "" {
		c.RemoteURL = v
	}
	if v, ok := lookup(EnvAuthToken); ok {
		c.AuthToken = v
	}
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup(EnvDrain); ok && v != "" {
		c.Drain = v
	}
	if v, ok := lookup(EnvPollInterval); ok && v != "" {
		d, err := parseDuration(EnvPollInterval, v)
		if err != nil {
			return err
		}
		c.PollInterval = d
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseDuration(EnvTimeout, v)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks values that may have come from outside the schema.
func (c *Config) Validate() error {
	if c.RemoteURL == "" {
		return &Error{Field: "remote.url", Message: "must not be empty"}
	}
	if c.DBPath == "" {
		return &Error{Field: "store.path", Message: "must not be empty"}
	}
	if c.Drain != "probe" && c.Drain != "sequential" {
		return &Error{Field: "sync.drain", Message: fmt.Sprintf("unknown strategy %q (want probe or sequential)", c.Drain)}
	}
	if c.PollInterval <= 0 {
		return &Error{Field: "sync.pollInterval", Message: "must be positive"}
	}
	if c.Timeout <= 0 {
		return &Error{Field: "remote.timeout", Message: "must be positive"}
	}
	if err := c.Event.Validate(); err != nil {
		return &Error{Field: "event", Message: err.Error()}
	}
	seen := make(map[string]bool, len(c.Menu))
	for _, item := range c.Menu {
		if err := item.Validate(); err != nil {
			return &Error{Field: "menu", Message: err.Error()}
		}
		if seen[item.ID] {
			return &Error{Field: "menu", Message: fmt.Sprintf("duplicate item id %q", item.ID)}
		}
		seen[item.ID] = true
	}
	return nil
}

func parseDuration(field, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, &Error{Field: field, Message: err.Error()}
	}
	if d <= 0 {
		return 0, &Error{Field: field, Message: "must be positive"}
	}
	return d, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &Error{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &Error{Field: "cue", Message: first.Error()}
}
