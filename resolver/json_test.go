package resolver

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseValue(t *testing.T) {
	v, err := ParseValue([]byte(`{
		"./b": {"require": "./b.cjs", "import": "./b.mjs"},
		"./a": ["./a.js", null, true, 1.5],
		".": "./index.js"
	}`))
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(*Object)
	if !ok {
		t.Fatalf("expected an object, got %T", v)
	}
	if strings.Join(obj.Keys(), ",") != "./b,./a,." {
		t.Fatalf("keys should keep the declaration order, got %v", obj.Keys())
	}

	b, _ := obj.Get("./b")
	if keys := b.(*Object).Keys(); strings.Join(keys, ",") != "require,import" {
		t.Fatalf("nested keys should keep the declaration order, got %v", keys)
	}

	a, _ := obj.Get("./a")
	arr, ok := a.(Array)
	if !ok || len(arr) != 4 {
		t.Fatalf("invalid array %#v", a)
	}
	if arr[0] != String("./a.js") {
		t.Fatalf("invalid array item %#v", arr[0])
	}
	if _, ok := arr[1].(Null); !ok {
		t.Fatalf("expected null, got %#v", arr[1])
	}
	if l, ok := arr[2].(Literal); !ok || l.Raw != true {
		t.Fatalf("expected a bool literal, got %#v", arr[2])
	}
	if l, ok := arr[3].(Literal); !ok || l.Raw != json.Number("1.5") {
		t.Fatalf("expected a number literal, got %#v", arr[3])
	}

	if !obj.Has(".") || obj.Has("./c") || obj.Len() != 3 {
		t.Fatal("invalid object")
	}
}

func TestParseValueScalars(t *testing.T) {
	if v, err := ParseValue([]byte(`"./index.js"`)); err != nil || v != String("./index.js") {
		t.Fatalf("unexpected %#v, %v", v, err)
	}
	if v, err := ParseValue([]byte(`null`)); err != nil || v != (Null{}) {
		t.Fatalf("unexpected %#v, %v", v, err)
	}
}

func TestParseValueErrors(t *testing.T) {
	for _, data := range []string{``, `{`, `{"a": }`, `["a"`, `{} {}`, `"a" "b"`} {
		if _, err := ParseValue([]byte(data)); err == nil {
			t.Errorf("ParseValue(%q) should fail", data)
		}
	}
}

func TestObjectUnmarshalJSON(t *testing.T) {
	var pkg struct {
		Name    string  `json:"name"`
		Exports *Object `json:"exports"`
	}
	err := json.Unmarshal([]byte(`{"name": "foo", "exports": {"./z": "./z.js", "./a": "./a.js"}}`), &pkg)
	if err != nil {
		t.Fatal(err)
	}
	if pkg.Name != "foo" || strings.Join(pkg.Exports.Keys(), ",") != "./z,./a" {
		t.Fatalf("unexpected %+v", pkg.Exports.Keys())
	}

	var obj Object
	if err := json.Unmarshal([]byte(`["./a.js"]`), &obj); err == nil {
		t.Fatal("an array is not an object")
	}
}

func TestObjectSet(t *testing.T) {
	obj := NewObject().
		Set("node", String("./a.node.js")).
		Set("require", String("./a.js")).
		Set("node", String("./b.node.js"))
	if strings.Join(obj.Keys(), ",") != "node,require" {
		t.Fatalf("unexpected keys %v", obj.Keys())
	}
	if v, _ := obj.Get("node"); v != String("./b.node.js") {
		t.Fatalf("unexpected value %#v", v)
	}
	got, _ := resolveTarget(obj, []string{"require", "node"}, true, nil)
	if got != "./b.node.js" {
		t.Fatalf("unexpected target %q", got)
	}
}
