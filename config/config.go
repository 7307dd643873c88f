// Package config reads the ahi configuration file. The file is JSON with
// comments and trailing commas (HuJSON) and names the EBNF grammars that
// ahi parses files with.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tailscale/hujson"
	"github.com/tliron/commonlog"
	"github.com/xyproto/env/v2"
)

// FileName is the configuration file looked up in the working directory
// when neither a path nor AHI_CONFIG is given.
const FileName = "ahi.hujson"

// Grammar binds an EBNF grammar to the files it parses.
type Grammar struct {
	// Name is the qualified grammar name in the parsing domain.
	Name string `json:"name"`
	// File is the EBNF source, relative to the configuration file.
	File  string `json:"file"`
	Start string `json:"start,omitempty"`
	Skip  string `json:"skip,omitempty"`
	// Extensions lists file name extensions, with the leading dot.
	Extensions []string `json:"extensions,omitempty"`
}

type Config struct {
	Grammars []Grammar `json:"grammars"`
	// Verbosity is the commonlog verbosity: 0 logs errors and warnings,
	// 1 adds notices and info, 2 adds debug output. -4 silences logging.
	Verbosity int    `json:"verbosity"`
	LogFile   string `json:"logFile,omitempty"`
	// MaxLogLineLength truncates the text shown in parse traces. Zero
	// keeps the default.
	MaxLogLineLength int `json:"maxLogLineLength,omitempty"`
	// NFC normalizes sources to Unicode normalization form C.
	NFC bool `json:"nfc"`

	// Path is the file the configuration was loaded from, if any.
	Path string `json:"-"`
}

func Default() *Config {
	return &Config{}
}

// Parse decodes HuJSON configuration data.
func Parse(data []byte) (*Config, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads the configuration at path, or at AHI_CONFIG, or at FileName.
// A missing FileName yields the default configuration; a missing file that
// was asked for is an error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = env.Str("AHI_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = FileName
	}

	c := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		c.Path = path
		c.resolve(filepath.Dir(path))
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	c.applyEnv()
	return c, nil
}

func (c *Config) resolve(dir string) {
	for i := range c.Grammars {
		if c.Grammars[i].File != "" && !filepath.IsAbs(c.Grammars[i].File) {
			c.Grammars[i].File = filepath.Join(dir, c.Grammars[i].File)
		}
	}
}

func (c *Config) applyEnv() {
	c.Verbosity = env.Int("AHI_VERBOSITY", c.Verbosity)
	c.LogFile = env.Str("AHI_LOG_FILE", c.LogFile)
	c.MaxLogLineLength = env.Int("AHI_MAX_LOG_LINE", c.MaxLogLineLength)
	if env.Has("AHI_NFC") {
		c.NFC = env.Bool("AHI_NFC")
	}
}

// Validate checks that every grammar is named, has a file and that names
// and extensions are not claimed twice.
func (c *Config) Validate() error {
	names := make(map[string]bool)
	exts := make(map[string]string)
	for i, g := range c.Grammars {
		if g.Name == "" {
			return fmt.Errorf("grammar %d: missing name", i)
		}
		if g.File == "" {
			return fmt.Errorf("grammar %s: missing file", g.Name)
		}
		if names[g.Name] {
			return fmt.Errorf("grammar %s: defined twice", g.Name)
		}
		names[g.Name] = true
		for _, ext := range g.Extensions {
			if !strings.HasPrefix(ext, ".") {
				return fmt.Errorf("grammar %s: extension %q must start with a dot", g.Name, ext)
			}
			if other, ok := exts[ext]; ok {
				return fmt.Errorf("grammar %s: extension %s already belongs to %s", g.Name, ext, other)
			}
			exts[ext] = g.Name
		}
	}
	return nil
}

// Lookup returns the grammar with the given name.
func (c *Config) Lookup(name string) (*Grammar, bool) {
	for i := range c.Grammars {
		if c.Grammars[i].Name == name {
			return &c.Grammars[i], true
		}
	}
	return nil, false
}

// GrammarFor returns the grammar that parses filename, chosen by extension.
func (c *Config) GrammarFor(filename string) (*Grammar, bool) {
	ext := filepath.Ext(filename)
	if ext == "" {
		return nil, false
	}
	for i := range c.Grammars {
		if slices.Contains(c.Grammars[i].Extensions, ext) {
			return &c.Grammars[i], true
		}
	}
	return nil, false
}

// ConfigureLogging sets up commonlog with the configured verbosity and
// log file. Without a log file, logs go to stderr.
func (c *Config) ConfigureLogging() {
	var path *string
	if c.LogFile != "" {
		path = &c.LogFile
	}
	commonlog.Configure(c.Verbosity, path)
}
