package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"testcat/internal/domain"
	"testcat/internal/pysource"
)

// Resolver finds the class that implements a test module. It reads the
// source statically; the module is never imported, so no module-level code
// runs during discovery.
type Resolver struct {
	importRoot   string
	suffix       string
	entryPoint   string
	harnessBases map[string]bool
}

// NewResolver creates a new Resolver.
//
// importRoot is the directory module identifiers are relative to, suffix the
// source suffix stripped from file names, entryPoint the method a test class
// must expose. When harnessBases is non-empty a candidate must also derive
// from one of those classes, directly or through classes of the same module.
func NewResolver(importRoot, suffix, entryPoint string, harnessBases []string) *Resolver {
	bases := make(map[string]bool, len(harnessBases))
	for _, b := range harnessBases {
		bases[lastComponent(b)] = true
	}
	return &Resolver{
		importRoot:   importRoot,
		suffix:       suffix,
		entryPoint:   entryPoint,
		harnessBases: bases,
	}
}

// ModuleID converts a test file path into its dotted import identifier,
// e.g. tests/functional/glusterd/test_snap.py -> tests.functional.glusterd.test_snap.
func (r *Resolver) ModuleID(path string) (string, error) {
	rel := filepath.Clean(path)
	if r.importRoot != "" {
		root, err := filepath.Abs(r.importRoot)
		if err != nil {
			return "", unresolvable(path, err, "cannot resolve import root %s", r.importRoot)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", unresolvable(path, err, "cannot resolve path")
		}
		if rel, err = filepath.Rel(root, abs); err != nil {
			return "", unresolvable(path, err, "not under import root %s", r.importRoot)
		}
	}

	rel = filepath.ToSlash(rel)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", unresolvable(path, nil, "not under import root %s", r.importRoot)
	}
	if !strings.HasSuffix(rel, r.suffix) {
		return "", unresolvable(path, nil, "missing %s suffix", r.suffix)
	}

	parts := strings.Split(strings.TrimSuffix(rel, r.suffix), "/")
	for _, part := range parts {
		if !identifierPattern.MatchString(part) {
			return "", unresolvable(path, nil, "%q is not an importable module name", part)
		}
	}
	return strings.Join(parts, "."), nil
}

// Resolve returns the implementation reference of the test file at path.
// hint, when set, names the class explicitly; it must still be defined in
// the module and expose the entry point.
func (r *Resolver) Resolve(path, hint string) (domain.ImplementationRef, error) {
	moduleID, err := r.ModuleID(path)
	if err != nil {
		return domain.ImplementationRef{}, err
	}

	mod, err := pysource.ParseFile(path)
	if err != nil {
		return domain.ImplementationRef{}, unresolvable(path, err, "cannot parse module %s", moduleID)
	}

	class, err := r.selectClass(path, moduleID, mod, hint)
	if err != nil {
		return domain.ImplementationRef{}, err
	}

	return domain.ImplementationRef{
		Module:     moduleID,
		Class:      class.Name,
		EntryPoint: r.entryPoint,
		Bases:      append([]string(nil), class.Bases...),
		Line:       class.Line,
	}, nil
}

// selectClass picks the test implementation among the classes defined in
// mod. Imported names never qualify. A class qualifies when it exposes the
// entry point, itself or through a base defined in the same module, and
// derives from a harness base when those are configured. Qualifying classes
// that only serve as bases of other qualifying classes are dropped.
func (r *Resolver) selectClass(path, moduleID string, mod *pysource.Module, hint string) (pysource.Class, error) {
	local := make(map[string]pysource.Class, len(mod.Classes))
	for _, c := range mod.Classes {
		local[c.Name] = c
	}

	if hint != "" {
		c, ok := mod.Class(hint)
		switch {
		case !ok && mod.Imported(hint):
			return pysource.Class{}, ambiguous(path, []string{hint}, "%s imports %s instead of defining it", moduleID, hint)
		case !ok:
			return pysource.Class{}, ambiguous(path, mod.ClassNames(), "%s does not define class %s", moduleID, hint)
		case !r.qualifies(c, local):
			return pysource.Class{}, ambiguous(path, []string{hint}, "class %s in %s does not expose %s", hint, moduleID, r.entryPoint)
		}
		return c, nil
	}

	var candidates []pysource.Class
	for _, c := range mod.Classes {
		if r.qualifies(c, local) {
			candidates = append(candidates, c)
		}
	}

	var leaves []pysource.Class
	for _, c := range candidates {
		if !isBaseOfAny(c.Name, candidates, local) {
			leaves = append(leaves, c)
		}
	}

	switch len(leaves) {
	case 1:
		return leaves[0], nil
	case 0:
		return pysource.Class{}, ambiguous(path, mod.ClassNames(), "no class defined in %s exposes %s", moduleID, r.entryPoint)
	default:
		names := make([]string, len(leaves))
		for i, c := range leaves {
			names[i] = c.Name
		}
		return pysource.Class{}, ambiguous(path, names, "%d classes in %s expose %s", len(leaves), moduleID, r.entryPoint)
	}
}

func (r *Resolver) qualifies(c pysource.Class, local map[string]pysource.Class) bool {
	return r.exposesEntryPoint(c, local, map[string]bool{}) && r.derivesFromHarness(c, local, map[string]bool{})
}

func (r *Resolver) exposesEntryPoint(c pysource.Class, local map[string]pysource.Class, visited map[string]bool) bool {
	if visited[c.Name] {
		return false
	}
	visited[c.Name] = true

	if c.HasMethod(r.entryPoint) {
		return true
	}
	for _, base := range c.Bases {
		if lb, ok := local[base]; ok && r.exposesEntryPoint(lb, local, visited) {
			return true
		}
	}
	return false
}

func (r *Resolver) derivesFromHarness(c pysource.Class, local map[string]pysource.Class, visited map[string]bool) bool {
	if len(r.harnessBases) == 0 {
		return true
	}
	if visited[c.Name] {
		return false
	}
	visited[c.Name] = true

	for _, base := range c.Bases {
		if lb, ok := local[base]; ok {
			if r.derivesFromHarness(lb, local, visited) {
				return true
			}
			continue
		}
		if r.harnessBases[lastComponent(base)] {
			return true
		}
	}
	return false
}

// isBaseOfAny reports whether name is a local ancestor of another candidate.
func isBaseOfAny(name string, candidates []pysource.Class, local map[string]pysource.Class) bool {
	for _, c := range candidates {
		if c.Name != name && hasAncestor(c, name, local, map[string]bool{}) {
			return true
		}
	}
	return false
}

func hasAncestor(c pysource.Class, name string, local map[string]pysource.Class, visited map[string]bool) bool {
	if visited[c.Name] {
		return false
	}
	visited[c.Name] = true

	for _, base := range c.Bases {
		if base == name {
			return true
		}
		if lb, ok := local[base]; ok && hasAncestor(lb, name, local, visited) {
			return true
		}
	}
	return false
}

func lastComponent(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// String describes the resolver settings for logs.
func (r *Resolver) String() string {
	return fmt.Sprintf("entry point %s, import root %q", r.entryPoint, r.importRoot)
}
