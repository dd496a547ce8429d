package loaderdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func TestRecordNormalizesPath(t *testing.T) {
	m := New()
	m.Record("a", "0", map[string]any{"x": 1.0})
	m.Record("/a", "1", nil)

	got, ok := m.Get("/a")
	if !ok {
		t.Fatal("Get(/a) missing")
	}
	if len(got) != 2 || got["1"] != nil {
		t.Errorf("Get(/a) = %v", got)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}

func TestRoundTrip(t *testing.T) {
	m := New()
	m.RecordAll("/", map[string]any{"0": nil, "0-0": map[string]any{"title": "Home"}})
	m.RecordAll("/docs/a", map[string]any{"0": nil, "0-1": []any{"x", 2.0}})
	m.RecordAll("/empty", nil)

	data, err := m.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(parsed.Paths(), m.Paths()) {
		t.Fatalf("Paths() = %v, want %v", parsed.Paths(), m.Paths())
	}
	for _, p := range m.Paths() {
		want, _ := m.Get(p)
		got, _ := parsed.Get(p)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Get(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestSerializeNull(t *testing.T) {
	m := New()
	m.Record("/", "0", nil)
	data, _ := m.Serialize()
	if string(data) != `{"/":{"0":null}}` {
		t.Errorf("Serialize() = %s", data)
	}
}

func TestConcurrentRecord(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Record(fmt.Sprintf("/p%d", i%10), fmt.Sprint(i), i)
		}(i)
	}
	wg.Wait()
	if m.Len() != 10 {
		t.Errorf("Len() = %d, want 10", m.Len())
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	m := New()
	m.Record("/a", "0", "x")

	path, err := m.WriteFile(dir, "abc123xyz0")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "static-loader-data-manifest-abc123xyz0.json" {
		t.Errorf("file name = %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["/a"]["0"] != "x" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse([]byte("[]")); err == nil {
		t.Error("expected error")
	}
}
