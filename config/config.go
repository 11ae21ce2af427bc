// Package config holds the generator configuration and the class index
// codec. Both are read and written as JSON, YAML or TOML, chosen by file
// extension.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks the codec for path from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.Wrapf(ErrUnsupportedFormat, "%s", path)
}

// Ext is the canonical file extension of f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

type Configuration struct {
	ExportFolder      string            `json:"exportFolder" yaml:"exportFolder" toml:"exportFolder"`
	PluginsFolder     string            `json:"pluginsFolder" yaml:"pluginsFolder" toml:"pluginsFolder"`
	CommentTypes      bool              `json:"commentTypes" yaml:"commentTypes" toml:"commentTypes"`
	IncludeTypes      []string          `json:"includeTypes" yaml:"includeTypes" toml:"includeTypes"`
	ExcludeTypes      []string          `json:"excludeTypes" yaml:"excludeTypes" toml:"excludeTypes"`
	FunctionBlacklist []string          `json:"functionBlacklist" yaml:"functionBlacklist" toml:"functionBlacklist"`
	SafeNames         map[string]string `json:"safeNames" yaml:"safeNames" toml:"safeNames"`
	SafeClassNames    map[string]string `json:"safeClassNames" yaml:"safeClassNames" toml:"safeClassNames"`
	Archives          []string          `json:"archives" yaml:"archives" toml:"archives"`
	PlatformArchives  []string          `json:"platformArchives" yaml:"platformArchives" toml:"platformArchives"`
	PlatformPackages  []string          `json:"platformPackages" yaml:"platformPackages" toml:"platformPackages"`
	MaxClassVersion   uint16            `json:"maxClassVersion" yaml:"maxClassVersion" toml:"maxClassVersion"`
	Artifacts         []string          `json:"artifacts" yaml:"artifacts" toml:"artifacts"`
	MavenRepository   string            `json:"mavenRepository" yaml:"mavenRepository" toml:"mavenRepository"`

	// Path is the file the configuration was loaded from. Relative
	// folders and archives resolve against its directory.
	Path   string `json:"-" yaml:"-" toml:"-"`
	Format Format `json:"-" yaml:"-" toml:"-"`
}

func defaultSafeNames() map[string]string {
	return map[string]string{
		"function":  "_function",
		"yield":     "_yield",
		"arguments": "_arguments",
		"name":      "_name",
		"<set-?>":   "value",
		"in":        "_in",
		"with":      "_with",
	}
}

func defaultSafeClassNames() map[string]string {
	return map[string]string{"Array": "_Array"}
}

// Default returns the configuration used when a file leaves a key out.
func Default() *Configuration {
	return &Configuration{
		ExportFolder:  "dist",
		PluginsFolder: "plugins",
		CommentTypes:  true,
		IncludeTypes:  []string{"*"},
		ExcludeTypes:  []string{"*.package-info"},
		FunctionBlacklist: []string{
			"wait", "equals", "toString", "hashCode", "getClass",
			"notify", "notifyAll", `(.*?)\$(.*?)`,
		},
		SafeNames:        defaultSafeNames(),
		SafeClassNames:   defaultSafeClassNames(),
		PlatformPackages: []string{"java.", "javax.", "jdk.", "sun.", "kotlin."},
		Format:           FormatJSON,
	}
}

// Load reads path over the defaults. Rename tables given in the file
// replace the default tables instead of merging into them.
func Load(path string) (*Configuration, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	cfg := Default()
	cfg.SafeNames = nil
	cfg.SafeClassNames = nil
	if err := decode(format, data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if cfg.SafeNames == nil {
		cfg.SafeNames = defaultSafeNames()
	}
	if cfg.SafeClassNames == nil {
		cfg.SafeClassNames = defaultSafeClassNames()
	}
	cfg.Path = path
	cfg.Format = format
	return cfg, cfg.Validate()
}

func (c *Configuration) Validate() error {
	if c.ExportFolder == "" {
		return errors.New("exportFolder must not be empty")
	}
	if c.PluginsFolder == "" {
		return errors.New("pluginsFolder must not be empty")
	}
	return nil
}

// Dir is the directory relative paths resolve against.
func (c *Configuration) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Resolve makes p absolute with respect to Dir unless it already is.
func (c *Configuration) Resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

func (c *Configuration) ExportDir() string {
	return c.Resolve(c.ExportFolder)
}

func (c *Configuration) PluginsDir() string {
	return c.Resolve(c.PluginsFolder)
}

// IndexPath is where the class index is written: next to the config
// file, in the config file's format.
func (c *Configuration) IndexPath() string {
	format := c.Format
	if format == "" {
		format = FormatJSON
	}
	return filepath.Join(c.Dir(), "class-list"+format.Ext())
}

// Override keys shared by command flags and TSGEN_* environment variables.
const (
	KeyExportFolder    = "export-folder"
	KeyPluginsFolder   = "plugins-folder"
	KeyCommentTypes    = "comment-types"
	KeyMavenRepository = "maven-repository"
)

// ApplyOverrides copies the scalar settings that v holds explicitly.
func (c *Configuration) ApplyOverrides(v *viper.Viper) {
	if v.IsSet(KeyExportFolder) {
		c.ExportFolder = v.GetString(KeyExportFolder)
	}
	if v.IsSet(KeyPluginsFolder) {
		c.PluginsFolder = v.GetString(KeyPluginsFolder)
	}
	if v.IsSet(KeyCommentTypes) {
		c.CommentTypes = v.GetBool(KeyCommentTypes)
	}
	if v.IsSet(KeyMavenRepository) {
		c.MavenRepository = v.GetString(KeyMavenRepository)
	}
}

func decode(format Format, data []byte, out any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, out)
	case FormatYAML:
		return yaml.Unmarshal(data, out)
	case FormatTOML:
		_, err := toml.Decode(string(data), out)
		return err
	}
	return errors.Wrapf(ErrUnsupportedFormat, "%s", format)
}

func encode(format Format, in any) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(in, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(in)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(in); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", format)
}

// Save writes c to path in the format its extension names.
func (c *Configuration) Save(path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := encode(format, c)
	if err != nil {
		return errors.Wrapf(err, "encode config %s", path)
	}
	return replaceFile(path, data)
}

func replaceFile(path string, data []byte) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}
