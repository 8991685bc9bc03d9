package meta

import "testing"

func TestGetConvertsConvertibleTypes(t *testing.T) {
	src := map[string]any{"count": int32(3)}
	v, err := Get[int64](src, "count")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3 {
		t.Fatalf("expected 3, got %d", v)
	}
}

func TestTagsExtractsStringSlice(t *testing.T) {
	src := map[string]any{"tags": []string{"core", "example"}}
	tags := Tags(src)
	if len(tags) != 2 || tags[0] != "core" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}
