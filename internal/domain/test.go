package domain

import (
	"fmt"
	"strings"
)

// Nature tells the execution engine whether a test needs an exclusive,
// freshly provisioned volume environment or can share one with other tests.
type Nature string

const (
	// Disruptive tests get dedicated provisioning and teardown.
	Disruptive Nature = "disruptive"
	// NonDisruptive tests may run against a shared environment of matching topology.
	NonDisruptive Nature = "nonDisruptive"
)

// Natures lists the catalog partitions in output order.
var Natures = []Nature{Disruptive, NonDisruptive}

// nonDisruptiveMarkers are the spellings accepted for a non-disruptive tag.
var nonDisruptiveMarkers = map[string]bool{
	"nonDisruptive":  true,
	"non-disruptive": true,
	"nondisruptive":  true,
	"non_disruptive": true,
}

// ParseNature normalizes a nature tag. Only the exact tag "disruptive" or one
// of the non-disruptive markers are recognized.
func ParseNature(tag string) (Nature, bool) {
	if tag == string(Disruptive) {
		return Disruptive, true
	}
	if nonDisruptiveMarkers[tag] {
		return NonDisruptive, true
	}
	return "", false
}

// Valid reports whether n is one of the two partition natures.
func (n Nature) Valid() bool {
	return n == Disruptive || n == NonDisruptive
}

// ImplementationRef points at the class the downstream runner loads and
// instantiates. Nothing is imported while building the catalog.
type ImplementationRef struct {
	Module     string   `json:"module" yaml:"module"`         // Fully qualified import path
	Class      string   `json:"class" yaml:"class"`           // Class defined in Module
	EntryPoint string   `json:"entryPoint" yaml:"entryPoint"` // Method the runner invokes
	Bases      []string `json:"bases,omitempty" yaml:"bases,omitempty"`
	Line       int      `json:"line" yaml:"line"` // Line of the class statement
}

// String returns the dotted reference, e.g. tests.glusterd.test_snap.TestCase.
func (r ImplementationRef) String() string {
	return r.Module + "." + r.Class
}

// TestRecord is the classified entry of a single test module.
type TestRecord struct {
	Index               int               `json:"-" yaml:"-"` // Position within its partition
	ModulePath          string            `json:"modulePath" yaml:"modulePath"`
	ModuleName          string            `json:"moduleName" yaml:"moduleName"`
	ComponentName       string            `json:"componentName" yaml:"componentName"`
	Nature              Nature            `json:"nature" yaml:"nature"`
	VolumeTopologies    []string          `json:"volType" yaml:"volType"`
	ImplementationClass ImplementationRef `json:"testClass" yaml:"testClass"`
}

// Validate checks the record invariants the catalog relies on.
func (r TestRecord) Validate() error {
	if strings.TrimSpace(r.ModulePath) == "" {
		return fmt.Errorf("test record has an empty module path")
	}
	if !r.Nature.Valid() {
		return fmt.Errorf("test record %s has invalid nature %q", r.ModulePath, r.Nature)
	}
	if len(r.VolumeTopologies) == 0 {
		return fmt.Errorf("test record %s has no volume topologies", r.ModulePath)
	}
	if r.ImplementationClass.Class == "" {
		return fmt.Errorf("test record %s has no implementation class", r.ModulePath)
	}
	return nil
}

// SupportsTopology reports whether the test is valid against topology.
func (r TestRecord) SupportsTopology(topology string) bool {
	for _, t := range r.VolumeTopologies {
		if t == topology {
			return true
		}
	}
	return false
}

func (r TestRecord) clone() TestRecord {
	c := r
	c.VolumeTopologies = append([]string(nil), r.VolumeTopologies...)
	c.ImplementationClass.Bases = append([]string(nil), r.ImplementationClass.Bases...)
	return c
}
