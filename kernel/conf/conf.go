// Package conf holds the static boot configuration of the kernel: the project
// identity that is printed during boot and whether boot progress should be
// narrated at all.
package conf

import (
	"bytes"
	"coopos/kernel"
	_ "embed"
	"strings"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a configuration payload.
type Format uint8

const (
	// FormatTOML decodes the payload as TOML.
	FormatTOML Format = iota

	// FormatYAML decodes the payload as YAML.
	FormatYAML
)

// Type specifies where the active configuration comes from.
type Type uint8

const (
	// TypeFile loads the configuration that was embedded at build time.
	TypeFile Type = iota

	// TypeUserDefined uses a configuration supplied by the caller.
	TypeUserDefined
)

// Config describes the project that is being booted.
type Config struct {
	// The name of the project.
	ProjectName string `toml:"project_name" yaml:"project_name"`

	// The version of the project.
	ProjectVersion string `toml:"project_version" yaml:"project_version"`

	// If set, successful initialization steps are not reported. Libraries
	// embedding the kernel usually want this off.
	QuietBoot bool `toml:"quiet_boot" yaml:"quiet_boot"`
}

var (
	//go:embed defaults.toml
	embeddedConfig []byte

	active atomic.Pointer[Config]

	errDecode        = &kernel.Error{Module: "conf", Message: "unable to decode configuration"}
	errUnknownFormat = &kernel.Error{Module: "conf", Message: "unknown configuration format"}
	errMissingName   = &kernel.Error{Module: "conf", Message: "project_name is required"}
)

// Parse decodes a configuration payload in the requested format.
func Parse(data []byte, format Format) (Config, *kernel.Error) {
	var (
		cfg Config
		err error
	)

	switch format {
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
	default:
		return Config{}, errUnknownFormat
	}

	if err != nil {
		return Config{}, errDecode
	}

	cfg.ProjectName = strings.TrimSpace(cfg.ProjectName)
	cfg.ProjectVersion = strings.TrimSpace(cfg.ProjectVersion)
	if cfg.ProjectName == "" {
		return Config{}, errMissingName
	}

	return cfg, nil
}

// FormatFromPath guesses the payload format from a file name.
func FormatFromPath(path string) Format {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return FormatYAML
	}
	return FormatTOML
}

// Embedded returns the configuration that was compiled into the image.
func Embedded() Config {
	cfg, err := Parse(embeddedConfig, FormatTOML)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Resolve returns the configuration selected by t. For TypeUserDefined the
// receiver is returned unchanged.
func (c Config) Resolve(t Type) Config {
	if t == TypeFile {
		return Embedded()
	}
	return c
}

// Use makes cfg the active configuration.
func Use(cfg Config) {
	active.Store(&cfg)
}

// Active returns the active configuration. If Use has not been called yet the
// embedded configuration is activated.
func Active() Config {
	if cfg := active.Load(); cfg != nil {
		return *cfg
	}

	cfg := Embedded()
	active.CompareAndSwap(nil, &cfg)
	return *active.Load()
}

// WithCmdLine applies the overrides found in the kernel command line to c.
// The "quiet" flag mutes boot progress reports and "verbose" restores them.
// Unknown keys are ignored.
func (c Config) WithCmdLine(kv map[string]string) Config {
	if _, ok := kv["quiet"]; ok {
		c.QuietBoot = true
	}
	if _, ok := kv["verbose"]; ok {
		c.QuietBoot = false
	}
	return c
}
