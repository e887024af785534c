package artifact

import (
	"bytes"
	"testing"
)

func TestSerializeTrivialESM(t *testing.T) {
	entries := []Entry{
		{Name: "/index.js", Bytes: []byte("export const x = 1;\n")},
	}
	got := Serialize(entries)
	want := "📦\n20 /index.js\n✄\nexport const x = 1;\n"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSerializeWithAlias(t *testing.T) {
	entries := []Entry{
		{Name: "/index.js", Bytes: []byte("import \"fs\";\n")},
		{Name: "/node_modules/frida-fs/index.js", Bytes: []byte("module.exports = {};"), Alias: "fs"},
	}
	got := string(Serialize(entries))
	if !bytes.Contains([]byte(got), []byte("↻ fs\n")) {
		t.Fatalf("expected alias line in manifest, got %q", got)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	entries := []Entry{
		{Name: "/index.js", Bytes: []byte("export const x = 1;\n")},
		{Name: "/index.js.map", Bytes: []byte(`{"version":3}`)},
		{Name: "/node_modules/frida-fs/index.js", Bytes: []byte("module.exports = {};"), Alias: "fs"},
	}

	serialized := Serialize(entries)
	parsed, err := Parse(serialized)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if len(parsed) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(parsed), len(entries))
	}
	for i, e := range entries {
		if parsed[i].Name != e.Name {
			t.Fatalf("entry %d: got name %q, want %q", i, parsed[i].Name, e.Name)
		}
		if !bytes.Equal(parsed[i].Bytes, e.Bytes) {
			t.Fatalf("entry %d: got bytes %q, want %q", i, parsed[i].Bytes, e.Bytes)
		}
		if parsed[i].Alias != e.Alias {
			t.Fatalf("entry %d: got alias %q, want %q", i, parsed[i].Alias, e.Alias)
		}
	}
}

func TestParseRejectsMissingSeparator(t *testing.T) {
	_, err := Parse([]byte("📦\n5 /index.js\n"))
	if err == nil {
		t.Fatalf("expected error for missing separator")
	}
}

func TestByteAccuracyWithMultiByteContent(t *testing.T) {
	entries := []Entry{
		{Name: "/greet.js", Bytes: []byte("export default \"héllo\";\n")},
	}
	serialized := Serialize(entries)
	parsed, err := Parse(serialized)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed[0].Bytes) != len(entries[0].Bytes) {
		t.Fatalf("byte length mismatch: got %d, want %d", len(parsed[0].Bytes), len(entries[0].Bytes))
	}
}
