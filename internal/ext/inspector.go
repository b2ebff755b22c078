package ext

import (
	"fmt"
	"go/types"
	"os"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// InspectResult holds the helper candidates found in the loaded packages.
type InspectResult struct {
	Packages []*PackageInfo
}

// PackageInfo lists the exported functions of one Go package.
type PackageInfo struct {
	// Path is the Go import path.
	Path string

	// Name is the package name; it is used as the suggested module name.
	Name string

	// Funcs is the ordered list of exported functions.
	Funcs []*FuncInfo
}

// FuncInfo describes an exported Go function as a helper candidate.
type FuncInfo struct {
	// GoName is the Go function name (e.g. "Shout").
	GoName string

	// Params are the class names of the parameters. The first one is the
	// receiver slot when the function is bound as an extension.
	Params []string

	// Variadic is true if the last parameter is a Go variadic slice.
	Variadic bool

	// Result is the class name of the first result, or "" for none.
	Result string

	// ReturnsError is true if the last result is error.
	ReturnsError bool

	// Unmapped lists Go types that have no class equivalent. A function
	// with unmapped types cannot be bound.
	Unmapped []string
}

// Bindable reports whether the function can serve as a helper: it has a
// receiver slot and every type maps to a class.
func (f *FuncInfo) Bindable() bool {
	return len(f.Params) > 0 && len(f.Unmapped) == 0
}

// Inspector loads Go packages and extracts helper candidates.
type Inspector struct {
	// dir is the directory packages are loaded from; it must be inside a
	// Go module that can resolve the requested patterns.
	dir string
}

// NewInspector creates an Inspector that loads packages relative to dir.
func NewInspector(dir string) *Inspector {
	return &Inspector{dir: dir}
}

// Inspect loads the packages matching patterns (e.g. "./helpers") and
// describes their exported functions.
func (ins *Inspector) Inspect(patterns ...string) (*InspectResult, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes,
		Dir:  ins.dir,
		Env:  append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}

	// Check for package errors
	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	result := &InspectResult{}
	for _, pkg := range pkgs {
		result.Packages = append(result.Packages, inspectPackage(pkg.PkgPath, pkg.Types))
	}
	return result, nil
}

func inspectPackage(path string, pkg *types.Package) *PackageInfo {
	info := &PackageInfo{Path: path, Name: pkg.Name()}
	scope := pkg.Scope()
	names := scope.Names()
	sort.Strings(names)
	for _, name := range names {
		fn, ok := scope.Lookup(name).(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		sig := fn.Type().(*types.Signature)
		if sig.TypeParams().Len() > 0 {
			continue
		}
		info.Funcs = append(info.Funcs, inspectFunc(name, sig))
	}
	return info
}

func inspectFunc(name string, sig *types.Signature) *FuncInfo {
	f := &FuncInfo{GoName: name, Variadic: sig.Variadic()}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		t := params.At(i).Type()
		cls, ok := classForGoType(t)
		if !ok {
			f.Unmapped = append(f.Unmapped, t.String())
			continue
		}
		f.Params = append(f.Params, cls)
	}

	results := sig.Results()
	n := results.Len()
	if n > 0 && isErrorType(results.At(n-1).Type()) {
		f.ReturnsError = true
		n--
	}
	if n > 1 {
		f.Unmapped = append(f.Unmapped, results.String())
	} else if n == 1 {
		t := results.At(0).Type()
		cls, ok := classForGoType(t)
		if !ok {
			f.Unmapped = append(f.Unmapped, t.String())
		}
		f.Result = cls
	}
	return f
}

// classForGoType maps a Go type to the name of the class a value of that
// type is passed as.
func classForGoType(t types.Type) (string, bool) {
	switch tt := t.(type) {
	case *types.Basic:
		switch tt.Kind() {
		case types.Bool:
			return "boolean", true
		case types.Int8:
			return "byte", true
		case types.Int16:
			return "short", true
		case types.Int32:
			return "int", true
		case types.Int, types.Int64:
			return "long", true
		case types.Float32:
			return "float", true
		case types.Float64:
			return "double", true
		case types.String:
			return "String", true
		}
	case *types.Slice:
		elem, ok := classForGoType(tt.Elem())
		if !ok {
			return "", false
		}
		return elem + "[]", true
	case *types.Pointer:
		if named, ok := tt.Elem().(*types.Named); ok && isPkgType(named, "math/big") {
			switch named.Obj().Name() {
			case "Int":
				return "BigInteger", true
			case "Rat":
				return "BigDecimal", true
			}
		}
	case *types.Interface:
		if tt.Empty() {
			return "Object", true
		}
	case *types.Alias:
		return classForGoType(types.Unalias(tt))
	case *types.Named:
		if isPkgType(tt, "github.com/funvibe/mop/internal/object") && tt.Obj().Name() == "Object" {
			return "Object", true
		}
	}
	return "", false
}

func isPkgType(named *types.Named, path string) bool {
	pkg := named.Obj().Pkg()
	return pkg != nil && pkg.Path() == path
}

func isErrorType(t types.Type) bool {
	return types.Identical(t, types.Universe.Lookup("error").Type())
}

// Suggest builds a configuration binding every bindable function of the
// package as an instance extension of its receiver-slot class. Helpers are
// named by their lower-camel Go name.
func (p *PackageInfo) Suggest() *Config {
	byTarget := make(map[string]*Extension)
	var order []string
	for _, f := range p.Funcs {
		if !f.Bindable() {
			continue
		}
		target := f.Params[0]
		e, ok := byTarget[target]
		if !ok {
			e = &Extension{Module: p.Name, Target: target}
			byTarget[target] = e
			order = append(order, target)
		}
		name := lcFirst(f.GoName)
		e.Methods = append(e.Methods, MethodBinding{Helper: name, As: name})
	}

	cfg := &Config{}
	for _, target := range order {
		cfg.Extensions = append(cfg.Extensions, *byTarget[target])
	}
	return cfg
}

// lcFirst lowercases the first rune of a string.
func lcFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if runes[0] >= 'A' && runes[0] <= 'Z' {
		runes[0] += 32
	}
	return string(runes)
}
