package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func record(path, component string, nature Nature, topologies ...string) TestRecord {
	return TestRecord{
		ModulePath:       "tests/functional/" + component + "/" + path,
		ModuleName:       path,
		ComponentName:    component,
		Nature:           nature,
		VolumeTopologies: topologies,
		ImplementationClass: ImplementationRef{
			Module:     "tests.functional." + component + "." + path[:len(path)-3],
			Class:      "TestCase",
			EntryPoint: "run_test",
			Bases:      []string{"DParentTest"},
			Line:       9,
		},
	}
}

func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]TestRecord{
		record("test_snap.py", "glusterd", Disruptive, "replicated"),
		record("test_rebalance.py", "dht", NonDisruptive, "distributed", "replicated"),
		record("test_peer.py", "glusterd", NonDisruptive, "distributed"),
		record("test_heal.py", "afr", Disruptive, "arbiter"),
	})
	require.NoError(t, err)
	return c
}

func TestNewCatalog_Partitions(t *testing.T) {
	c := sampleCatalog(t)

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 2, c.Count(Disruptive))
	assert.Equal(t, 2, c.Count(NonDisruptive))

	disruptive := c.Records(Disruptive)
	assert.Equal(t, "test_snap.py", disruptive[0].ModuleName)
	assert.Equal(t, 0, disruptive[0].Index)
	assert.Equal(t, "test_heal.py", disruptive[1].ModuleName)
	assert.Equal(t, 1, disruptive[1].Index)

	nonDisruptive := c.Records(NonDisruptive)
	assert.Equal(t, "test_rebalance.py", nonDisruptive[0].ModuleName)
	assert.Equal(t, "test_peer.py", nonDisruptive[1].ModuleName)
	assert.Equal(t, 1, nonDisruptive[1].Index)

	assert.Equal(t, []string{"afr", "dht", "glusterd"}, c.Components())
}

func TestNewCatalog_Empty(t *testing.T) {
	c, err := NewCatalog(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Records(Disruptive))

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"disruptive":{},"nonDisruptive":{}}`, string(data))
}

func TestNewCatalog_Rejects(t *testing.T) {
	valid := record("test_snap.py", "glusterd", Disruptive, "replicated")

	tests := []struct {
		name    string
		records []TestRecord
	}{
		{name: "duplicate module path", records: []TestRecord{valid, valid}},
		{name: "invalid nature", records: []TestRecord{record("test_x.py", "dht", Nature("sometimes"), "rep")}},
		{name: "no topologies", records: []TestRecord{record("test_x.py", "dht", Disruptive)}},
		{name: "no class", records: []TestRecord{func() TestRecord {
			r := valid
			r.ImplementationClass.Class = ""
			return r
		}()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.records)
			assert.Error(t, err)
		})
	}
}

func TestCatalog_Lookups(t *testing.T) {
	c := sampleCatalog(t)

	r, ok := c.Get(NonDisruptive, 1)
	require.True(t, ok)
	assert.Equal(t, "test_peer.py", r.ModuleName)

	_, ok = c.Get(NonDisruptive, 2)
	assert.False(t, ok)
	_, ok = c.Get(Disruptive, -1)
	assert.False(t, ok)

	all := c.All()
	require.Len(t, all, 4)
	assert.Equal(t, Disruptive, all[0].Nature)
	assert.Equal(t, NonDisruptive, all[3].Nature)
}

func TestCatalog_ByTopology(t *testing.T) {
	c := sampleCatalog(t)

	distributed := c.ByTopology("distributed")
	require.Len(t, distributed, 2)
	assert.Equal(t, "test_rebalance.py", distributed[0].ModuleName)
	assert.Equal(t, "test_peer.py", distributed[1].ModuleName)

	// disruptive tests never share an environment
	assert.Len(t, c.ByTopology("replicated"), 1)
	assert.Empty(t, c.ByTopology("arbiter"))
}

func TestCatalog_Immutable(t *testing.T) {
	records := []TestRecord{record("test_snap.py", "glusterd", Disruptive, "replicated")}
	c, err := NewCatalog(records)
	require.NoError(t, err)

	records[0].VolumeTopologies[0] = "dispersed"
	got, _ := c.Get(Disruptive, 0)
	assert.Equal(t, []string{"replicated"}, got.VolumeTopologies)

	got.VolumeTopologies[0] = "dispersed"
	got.ImplementationClass.Bases[0] = "Other"
	again, _ := c.Get(Disruptive, 0)
	assert.Equal(t, []string{"replicated"}, again.VolumeTopologies)
	assert.Equal(t, []string{"DParentTest"}, again.ImplementationClass.Bases)
}

func TestCatalog_JSON(t *testing.T) {
	c := sampleCatalog(t)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var shape map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &shape))
	assert.Len(t, shape["disruptive"], 2)
	assert.Len(t, shape["nonDisruptive"], 2)

	entry := shape["nonDisruptive"]["0"]
	assert.Equal(t, "dht", entry["componentName"])
	assert.Equal(t, "test_rebalance.py", entry["moduleName"])
	assert.Equal(t, []any{"distributed", "replicated"}, entry["volType"])
	assert.Equal(t, "TestCase", entry["testClass"].(map[string]any)["class"])

	var restored Catalog
	require.NoError(t, json.Unmarshal(data, &restored))
	for _, nature := range Natures {
		assert.Equal(t, c.Records(nature), restored.Records(nature))
	}
}

func TestCatalog_UnmarshalJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown partition", data: `{"flaky":{}}`},
		{name: "non numeric index", data: `{"disruptive":{"first":{}}}`},
		{name: "index gap", data: `{"disruptive":{"1":{"modulePath":"a.py","volType":["rep"],"testClass":{"class":"T"}}}}`},
		{name: "nature mismatch", data: `{"disruptive":{"0":{"modulePath":"a.py","nature":"nonDisruptive","volType":["rep"],"testClass":{"class":"T"}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Catalog
			assert.Error(t, json.Unmarshal([]byte(tt.data), &c))
		})
	}
}

func TestCatalog_YAML(t *testing.T) {
	c := sampleCatalog(t)

	data, err := yaml.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nonDisruptive:")
	assert.Contains(t, string(data), "componentName: dht")

	var restored Catalog
	require.NoError(t, yaml.Unmarshal(data, &restored))
	for _, nature := range Natures {
		assert.Equal(t, c.Records(nature), restored.Records(nature))
	}
}

func TestParseNature(t *testing.T) {
	tests := []struct {
		tag      string
		expected Nature
		ok       bool
	}{
		{"disruptive", Disruptive, true},
		{"nonDisruptive", NonDisruptive, true},
		{"non-disruptive", NonDisruptive, true},
		{"nondisruptive", NonDisruptive, true},
		{"non_disruptive", NonDisruptive, true},
		{"Disruptive", "", false},
		{"destructive", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			nature, ok := ParseNature(tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, nature)
		})
	}
}
