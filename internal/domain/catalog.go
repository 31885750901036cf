package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Catalog is the classified set of test records handed to the execution
// engine. It has two partitions, one per Nature, each indexed from 0 in
// insertion order. A Catalog is never modified after NewCatalog returns.
type Catalog struct {
	partitions map[Nature][]TestRecord
}

// NewCatalog partitions records by nature, assigning sequential indexes in
// the given order. Records are validated and module paths must be unique.
func NewCatalog(records []TestRecord) (*Catalog, error) {
	c := &Catalog{partitions: make(map[Nature][]TestRecord, len(Natures))}
	for _, nature := range Natures {
		c.partitions[nature] = []TestRecord{}
	}

	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return nil, err
		}
		if seen[record.ModulePath] {
			return nil, fmt.Errorf("duplicate module path in catalog: %s", record.ModulePath)
		}
		seen[record.ModulePath] = true

		record = record.clone()
		record.Index = len(c.partitions[record.Nature])
		c.partitions[record.Nature] = append(c.partitions[record.Nature], record)
	}
	return c, nil
}

// Len returns the number of records across both partitions.
func (c *Catalog) Len() int {
	n := 0
	for _, p := range c.partitions {
		n += len(p)
	}
	return n
}

// Count returns the number of records in the partition of nature.
func (c *Catalog) Count(nature Nature) int {
	return len(c.partitions[nature])
}

// Get returns the record at index within the partition of nature.
func (c *Catalog) Get(nature Nature, index int) (TestRecord, bool) {
	p := c.partitions[nature]
	if index < 0 || index >= len(p) {
		return TestRecord{}, false
	}
	return p[index].clone(), true
}

// Records returns a copy of the partition of nature in index order.
func (c *Catalog) Records(nature Nature) []TestRecord {
	p := c.partitions[nature]
	out := make([]TestRecord, len(p))
	for i, r := range p {
		out[i] = r.clone()
	}
	return out
}

// All returns every record, disruptive partition first.
func (c *Catalog) All() []TestRecord {
	var out []TestRecord
	for _, nature := range Natures {
		out = append(out, c.Records(nature)...)
	}
	return out
}

// Components returns the sorted, distinct component names in the catalog.
func (c *Catalog) Components() []string {
	set := make(map[string]bool)
	for _, p := range c.partitions {
		for _, r := range p {
			set[r.ComponentName] = true
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ByTopology returns the non-disruptive records valid against topology,
// i.e. the tests that can share one provisioned environment of that kind.
func (c *Catalog) ByTopology(topology string) []TestRecord {
	var out []TestRecord
	for _, r := range c.partitions[NonDisruptive] {
		if r.SupportsTopology(topology) {
			out = append(out, r.clone())
		}
	}
	return out
}

// MarshalJSON writes both partitions with their index keys in order:
//
//	{"disruptive": {"0": {...}}, "nonDisruptive": {"0": {...}}}
func (c *Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, nature := range Natures {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:{", string(nature))
		for j, record := range c.partitions[nature] {
			if j > 0 {
				buf.WriteByte(',')
			}
			data, err := json.Marshal(record)
			if err != nil {
				return nil, fmt.Errorf("marshal %s: %w", record.ModulePath, err)
			}
			fmt.Fprintf(&buf, "%q:", strconv.Itoa(record.Index))
			buf.Write(data)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores a catalog written by MarshalJSON.
func (c *Catalog) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]TestRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	partitions := make(map[string]map[int]TestRecord, len(raw))
	for nature, entries := range raw {
		partitions[nature] = make(map[int]TestRecord, len(entries))
		for key, record := range entries {
			index, err := strconv.Atoi(key)
			if err != nil {
				return fmt.Errorf("catalog partition %s: invalid index %q", nature, key)
			}
			partitions[nature][index] = record
		}
	}
	return c.restore(partitions)
}

// MarshalYAML encodes the same shape as MarshalJSON.
func (c *Catalog) MarshalYAML() (interface{}, error) {
	out := make(map[string]map[int]TestRecord, len(Natures))
	for _, nature := range Natures {
		entries := make(map[int]TestRecord, len(c.partitions[nature]))
		for _, record := range c.partitions[nature] {
			entries[record.Index] = record
		}
		out[string(nature)] = entries
	}
	return out, nil
}

// UnmarshalYAML restores a catalog written by MarshalYAML.
func (c *Catalog) UnmarshalYAML(value *yaml.Node) error {
	var raw map[string]map[int]TestRecord
	if err := value.Decode(&raw); err != nil {
		return err
	}
	return c.restore(raw)
}

func (c *Catalog) restore(raw map[string]map[int]TestRecord) error {
	var records []TestRecord
	for name := range raw {
		if !Nature(name).Valid() {
			return fmt.Errorf("unknown catalog partition %q", name)
		}
	}

	for _, nature := range Natures {
		entries := raw[string(nature)]
		indexes := make([]int, 0, len(entries))
		for index := range entries {
			indexes = append(indexes, index)
		}
		sort.Ints(indexes)

		for want, index := range indexes {
			if index != want {
				return fmt.Errorf("catalog partition %s: missing index %d", nature, want)
			}
			record := entries[index]
			if record.Nature == "" {
				record.Nature = nature
			}
			if record.Nature != nature {
				return fmt.Errorf("catalog partition %s holds %s record %s", nature, record.Nature, record.ModulePath)
			}
			records = append(records, record)
		}
	}

	restored, err := NewCatalog(records)
	if err != nil {
		return err
	}
	*c = *restored
	return nil
}
