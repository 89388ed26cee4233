package jsonc

import "testing"

func TestUnmarshal(t *testing.T) {
	src := []byte(`{
	// port
	"port": 8080, /* trailing */
	"conditions": ["import", "browser",],
	"note": "// not a comment",
}`)
	var v struct {
		Port       int      `json:"port"`
		Conditions []string `json:"conditions"`
		Note       string   `json:"note"`
	}
	if err := Unmarshal(src, &v); err != nil {
		t.Fatal(err)
	}
	if v.Port != 8080 || len(v.Conditions) != 2 || v.Conditions[1] != "browser" {
		t.Fatalf("unexpected %+v", v)
	}
	if v.Note != "// not a comment" {
		t.Fatalf("strings should be kept as is, got %q", v.Note)
	}

	if err := Unmarshal([]byte(`{"port": }`), &v); err == nil {
		t.Fatal("invalid JSON should fail")
	}
}
