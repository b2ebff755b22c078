package ext

import (
	"fmt"
	"sort"

	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/typesystem"
)

// Apply defines the configured classes in u and injects every configured
// helper into reg. Each injection goes through Registry.Extend, so cached
// resolutions for the targets are invalidated before the helpers become
// visible. Apply stops at the first error; extensions registered before it
// stay registered.
func (c *Config) Apply(reg *dispatch.Registry, u *typesystem.Universe) ([]*dispatch.Candidate, error) {
	if err := c.defineClasses(u); err != nil {
		return nil, err
	}

	var out []*dispatch.Candidate
	for i, e := range c.Extensions {
		target, err := u.Lookup(e.Target)
		if err != nil {
			return out, fmt.Errorf("%s: extensions[%d] (%s): %w", c.path, i, e.Module, err)
		}
		helpers := GetHelpers(e.Module)
		if helpers == nil {
			return out, fmt.Errorf("%s: extensions[%d]: helper module %q is not registered", c.path, i, e.Module)
		}

		for j, m := range e.bindings(helpers) {
			h, ok := helpers[m.Helper]
			if !ok {
				return out, fmt.Errorf("%s: extensions[%d].methods[%d]: helper %q not found in module %q",
					c.path, i, j, m.Helper, e.Module)
			}
			cand, err := reg.Extend(target, m.As, h, m.Static)
			if err != nil {
				return out, fmt.Errorf("%s: extensions[%d].methods[%d]: %w", c.path, i, j, err)
			}
			out = append(out, cand)
		}
	}
	return out, nil
}

func (c *Config) defineClasses(u *typesystem.Universe) error {
	for i, decl := range c.Classes {
		ifaces := make([]*typesystem.Class, 0, len(decl.Interfaces))
		for _, name := range decl.Interfaces {
			iface, err := u.Lookup(name)
			if err != nil {
				return fmt.Errorf("%s: classes[%d] (%s): %w", c.path, i, decl.Name, err)
			}
			ifaces = append(ifaces, iface)
		}

		var cls *typesystem.Class
		if decl.Interface {
			cls = typesystem.NewInterface(decl.Name, ifaces...)
		} else {
			super, err := u.Lookup(decl.Super)
			if err != nil {
				return fmt.Errorf("%s: classes[%d] (%s): %w", c.path, i, decl.Name, err)
			}
			cls = typesystem.NewClass(decl.Name, super, ifaces...)
		}
		if err := u.Define(cls); err != nil {
			return fmt.Errorf("%s: classes[%d]: %w", c.path, i, err)
		}
	}
	return nil
}

// bindings returns the method bindings of e. With All set, every helper is
// bound under its own name, in name order.
func (e Extension) bindings(helpers map[string]dispatch.Helper) []MethodBinding {
	if !e.All {
		return e.Methods
	}
	names := make([]string, 0, len(helpers))
	for name := range helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]MethodBinding, len(names))
	for i, name := range names {
		out[i] = MethodBinding{Helper: name, As: name}
	}
	return out
}
