// Package ext implements the extension registrar.
//
// Extension helpers are plain Go functions grouped into named modules and
// registered at startup with RegisterHelpers. A mop.yaml file then decides
// which helpers are injected into which classes, and under what names.
//
// The ext package handles:
//   - Parsing and validating mop.yaml configuration
//   - The process-wide helper module registry
//   - Applying a configuration to a dispatch registry
//   - Introspecting Go packages via go/packages to suggest bindings
package ext

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/mop/internal/config"
)

// Config represents the top-level mop.yaml configuration.
type Config struct {
	// Classes declares user classes so extensions can target them by name.
	// Classes are defined in order; a class may extend an earlier one.
	Classes []ClassDecl `yaml:"classes,omitempty"`

	// Extensions lists the helper modules to inject and their targets.
	Extensions []Extension `yaml:"extensions"`

	path string
}

// ClassDecl declares a user class.
type ClassDecl struct {
	// Name is the class name. It must not collide with a builtin class.
	Name string `yaml:"name"`

	// Super is the superclass name. Defaults to Object.
	Super string `yaml:"super,omitempty"`

	// Interfaces lists implemented interface names.
	Interfaces []string `yaml:"interfaces,omitempty"`

	// Interface declares an interface instead of a class. Interfaces
	// cannot have a superclass.
	Interface bool `yaml:"interface,omitempty"`
}

// Extension binds helpers of one module onto one target class.
type Extension struct {
	// Module is the helper module name passed to RegisterHelpers
	// (e.g. "strings").
	Module string `yaml:"module"`

	// Target is the class the helpers are injected into. Array classes
	// are written with brackets (e.g. "int[]").
	Target string `yaml:"target"`

	// Methods lists the helpers to bind. Mutually exclusive with All.
	Methods []MethodBinding `yaml:"methods,omitempty"`

	// All binds every helper of the module under its own name as an
	// instance extension. Mutually exclusive with Methods.
	All bool `yaml:"all,omitempty"`
}

// MethodBinding describes how a single helper is exposed.
type MethodBinding struct {
	// Helper is the helper name within the module.
	Helper string `yaml:"helper"`

	// As is the method name on the target. Defaults to Helper.
	As string `yaml:"as,omitempty"`

	// Static exposes the helper as a static method of the target. The
	// helper is then called without a receiver.
	Static bool `yaml:"static,omitempty"`
}

// LoadConfig reads and parses a mop.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses mop.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for mop.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range config.ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// Path returns the file the configuration was parsed from.
func (c *Config) Path() string { return c.path }

// validate checks the configuration for semantic errors. Names are only
// checked for presence here; Apply resolves them.
func (c *Config) validate() error {
	path := c.path
	if len(c.Extensions) == 0 && len(c.Classes) == 0 {
		return fmt.Errorf("%s: no extensions or classes defined", path)
	}

	seenClasses := make(map[string]bool)
	for i, cls := range c.Classes {
		if cls.Name == "" {
			return fmt.Errorf("%s: classes[%d]: name is required", path, i)
		}
		if seenClasses[cls.Name] {
			return fmt.Errorf("%s: classes[%d]: class %q declared twice", path, i, cls.Name)
		}
		if cls.Interface && cls.Super != "" {
			return fmt.Errorf("%s: classes[%d] (%s): an interface cannot have a superclass", path, i, cls.Name)
		}
		seenClasses[cls.Name] = true
	}

	// target/name/static → module, for conflict detection
	seenMethods := make(map[string]string)

	for i, e := range c.Extensions {
		if e.Module == "" {
			return fmt.Errorf("%s: extensions[%d]: module is required", path, i)
		}
		if e.Target == "" {
			return fmt.Errorf("%s: extensions[%d] (%s): target is required", path, i, e.Module)
		}
		if e.All && len(e.Methods) > 0 {
			return fmt.Errorf("%s: extensions[%d] (%s): all and methods are mutually exclusive", path, i, e.Module)
		}
		if !e.All && len(e.Methods) == 0 {
			return fmt.Errorf("%s: extensions[%d] (%s): either methods or all is required", path, i, e.Module)
		}

		for j, m := range e.Methods {
			if m.Helper == "" {
				return fmt.Errorf("%s: extensions[%d].methods[%d] (%s): helper is required",
					path, i, j, e.Module)
			}
			name := m.As
			if name == "" {
				name = m.Helper
			}
			key := fmt.Sprintf("%s.%s/%t", e.Target, name, m.Static)
			if prev, ok := seenMethods[key]; ok && prev != e.Module {
				return fmt.Errorf("%s: extensions[%d].methods[%d]: %s.%s already bound from module %s",
					path, i, j, e.Target, name, prev)
			}
			seenMethods[key] = e.Module
		}
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	for i := range c.Classes {
		if c.Classes[i].Super == "" && !c.Classes[i].Interface {
			c.Classes[i].Super = "Object"
		}
	}
	for i := range c.Extensions {
		for j := range c.Extensions[i].Methods {
			m := &c.Extensions[i].Methods[j]
			if m.As == "" {
				m.As = m.Helper
			}
		}
	}
}

// Modules returns the distinct helper modules the configuration uses, in
// order of first appearance.
func (c *Config) Modules() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range c.Extensions {
		if !seen[e.Module] {
			out = append(out, e.Module)
			seen[e.Module] = true
		}
	}
	return out
}
