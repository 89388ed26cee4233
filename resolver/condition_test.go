package resolver

import (
	"testing"
)

func mustParseValue(t *testing.T, data string) Value {
	t.Helper()
	v, err := ParseValue([]byte(data))
	if err != nil {
		t.Fatalf("ParseValue(%s): %v", data, err)
	}
	return v
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		conditions []string
		isExports  bool
		captures   []string
		want       string
	}{
		{"string", `"./a.js"`, nil, true, nil, "./a.js"},
		{"null", `null`, nil, true, nil, ""},
		{"literal", `true`, nil, true, nil, ""},
		{"number", `1`, nil, true, nil, ""},
		{"empty string", `""`, nil, false, nil, ""},
		{"bare specifier in exports", `"a.js"`, nil, true, nil, ""},
		{"bare specifier in imports", `"external-pkg/feature"`, nil, false, nil, "external-pkg/feature"},
		{"backtrack", `"./../a.js"`, nil, true, nil, ""},
		{"inner backtrack", `"./b/../a.js"`, nil, true, nil, ""},
		{"backtrack in imports", `"pkg/../a.js"`, nil, false, nil, ""},
		{"node_modules", `"./src/node_modules/a.js"`, nil, true, nil, ""},
		{"node_modules prefix", `"./src/node_modules1/a.js"`, nil, true, nil, "./src/node_modules1/a.js"},
		{"array fallback", `["a.js", null, "./b.js"]`, nil, true, nil, "./b.js"},
		{"empty array", `[]`, nil, true, nil, ""},
		{"default", `{"other": "./b.js", "default": "./a.js"}`, []string{"require"}, true, nil, "./a.js"},
		{"no active condition", `{"other": "./b.js"}`, []string{"require"}, true, nil, ""},
		{"declaration order wins", `{"require": "./a.js", "node": "./a.node.js"}`, []string{"node", "require"}, true, nil, "./a.js"},
		{"declaration order wins (swapped)", `{"node": "./a.node.js", "require": "./a.js"}`, []string{"require", "node"}, true, nil, "./a.node.js"},
		{"default is not last", `{"default": "./a.js", "require": "./b.js"}`, []string{"require"}, true, nil, "./a.js"},
		{"skip unresolved condition", `{"require": "a.js", "default": "./b.js"}`, []string{"require"}, true, nil, "./b.js"},
		{"nested", `{"development": {"import": "./x.mjs", "require": "./x.cjs"}, "default": "./y.mjs"}`, []string{"development", "require"}, true, nil, "./x.cjs"},
		{"substitute", `"./src/*.js"`, nil, true, []string{"index"}, "./src/index.js"},
		{"substitute many", `"./src/*a*.cjs"`, nil, true, []string{"tao", "/inde"}, "./src/taoa/inde.cjs"},
		{"missing capture", `"./src/*.cjs*a*"`, nil, true, []string{"tao", "index"}, "./src/tao.cjsindexa"},
		{"extra capture", `"./src/*.cjs"`, nil, true, []string{"tao", "index"}, "./src/tao.cjs"},
		{"double wildcard template", `"./src/**.cjs"`, nil, true, []string{"tao", "index"}, ""},
		{"literal star without captures", `"./src/*.js"`, nil, true, nil, "./src/*.js"},
		{"substituted backtrack", `"./src/*.js"`, nil, true, []string{"../x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conditions := tt.conditions
			if conditions == nil {
				conditions = DefaultConditions
			}
			got, ok := resolveTarget(mustParseValue(t, tt.value), conditions, tt.isExports, tt.captures)
			if got != tt.want {
				t.Errorf("resolveTarget(%s) = %q, want %q", tt.value, got, tt.want)
			}
			if ok != (tt.want != "") {
				t.Errorf("resolveTarget(%s) ok = %v", tt.value, ok)
			}
		})
	}
}

func TestResolveTargetAbsent(t *testing.T) {
	if _, ok := resolveTarget(nil, DefaultConditions, true, nil); ok {
		t.Fatal("nil value should not resolve")
	}
	var obj *Object
	if _, ok := resolveTarget(obj, DefaultConditions, true, nil); ok {
		t.Fatal("nil object should not resolve")
	}
}

func TestValidTarget(t *testing.T) {
	tests := []struct {
		target    string
		isExports bool
		ok        bool
	}{
		{"./index.js", true, true},
		{"./dist/a/b.js", true, true},
		{"index.js", true, false},
		{"/index.js", true, false},
		{"./../../etc/passwd", true, false},
		{"./node_modules/x/index.js", true, false},
		{"dep-node", false, true},
		{"../dep.js", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		if _, ok := ValidTarget(tt.target, tt.isExports); ok != tt.ok {
			t.Errorf("ValidTarget(%q, %v) = %v, want %v", tt.target, tt.isExports, ok, tt.ok)
		}
	}
}
