// Package buildcfg reads buildus's declarative project description: a
// project name, a list of compile units, and optional linker/include
// variables, loaded from YAML via an injectable Source.
package buildcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shawnvosburg/DeployUS/pkg/errs"
)

// CompileUnit names one translation unit: Output is the object-file
// stem (without extension), Source is the path to compile, relative to
// the config file's own directory.
type CompileUnit struct {
	Output string
	Source string
}

// Config is a parsed, validated project description.
type Config struct {
	ProjectName string
	Compile     []CompileUnit

	LibraryVars []string
	LibraryLibs []string
	IncludeVars []string

	// dir is the directory the config file lives in; compile unit
	// source paths are resolved relative to it.
	dir string
}

// Source loads a Config from a named path. The default implementation
// is YAMLSource; tests may supply a fake to avoid touching disk.
type Source interface {
	Load(path string) (*Config, error)
}

type rawDoc struct {
	Project      string              `yaml:"project"`
	Compile      []map[string]string `yaml:"compile"`
	Dependencies struct {
		Libraries struct {
			Vars []string `yaml:"vars"`
			Libs []string `yaml:"libs"`
		} `yaml:"libraries"`
		Includes struct {
			Vars []string `yaml:"vars"`
		} `yaml:"includes"`
	} `yaml:"dependencies"`
}

// YAMLSource is the default Source, backed by gopkg.in/yaml.v3.
type YAMLSource struct{}

func (YAMLSource) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IOError, fmt.Sprintf("buildcfg: read %s", path), err)
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(errs.ParseError, fmt.Sprintf("buildcfg: parse %s", path), err)
	}

	cfg := &Config{
		ProjectName: doc.Project,
		LibraryVars: doc.Dependencies.Libraries.Vars,
		LibraryLibs: doc.Dependencies.Libraries.Libs,
		IncludeVars: doc.Dependencies.Includes.Vars,
		dir:         filepath.Dir(path),
	}
	for _, entry := range doc.Compile {
		for output, source := range entry {
			cfg.Compile = append(cfg.Compile, CompileUnit{Output: output, Source: source})
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces exactly one project name and at least one compile
// unit, then checks every compile unit's source exists on disk,
// mirroring ConfigFile::isYAMLInvalid and
// ConfigFile::verifyCompilationUnitsExists.
func (c *Config) validate() error {
	if c.ProjectName == "" {
		return errs.New(errs.ParseError, "buildcfg: missing project name")
	}
	if len(c.Compile) == 0 {
		return errs.New(errs.ParseError, "buildcfg: compile list must name at least one source")
	}
	for _, unit := range c.Compile {
		if _, err := os.Stat(c.SourcePath(unit)); err != nil {
			return errs.New(errs.MissingPath, fmt.Sprintf("buildcfg: compilation unit %s does not exist", unit.Source))
		}
	}
	return nil
}

// SourcePath resolves a compile unit's source path relative to the
// config file's directory.
func (c *Config) SourcePath(unit CompileUnit) string {
	return filepath.Join(c.dir, unit.Source)
}

// Dir returns the directory the config file was loaded from.
func (c *Config) Dir() string { return c.dir }

// Canonical renders a deterministic byte form of the config, used by
// the build cache to detect a changed project definition. Mirrors
// ConfigFile::toString / ConfigFileUtils::createConfigContents: field
// order is fixed and lists are NOT re-sorted, since the original
// hashes the YAML's declared order.
func (c *Config) Canonical() []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "project: %s\n", c.ProjectName)
	buf.WriteString("compile:\n")
	for _, unit := range c.Compile {
		fmt.Fprintf(&buf, " - %s: %s\n", unit.Output, unit.Source)
	}
	if len(c.LibraryVars) > 0 || len(c.LibraryLibs) > 0 {
		buf.WriteString("dependencies:\n libraries:\n")
		if len(c.LibraryVars) > 0 {
			buf.WriteString("  vars:\n")
			for _, v := range c.LibraryVars {
				fmt.Fprintf(&buf, "   %s\n", v)
			}
		}
		if len(c.LibraryLibs) > 0 {
			buf.WriteString("  libs:\n")
			for _, l := range c.LibraryLibs {
				fmt.Fprintf(&buf, " - %s\n", l)
			}
		}
	}
	if len(c.IncludeVars) > 0 {
		buf.WriteString("includes:\n vars:\n")
		for _, v := range c.IncludeVars {
			fmt.Fprintf(&buf, "  %s\n", v)
		}
	}
	return []byte(buf.String())
}
