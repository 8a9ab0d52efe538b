package value

import (
	"math"
	"testing"
)

func TestKindRoundTrip(t *testing.T) {
	kinds := []Kind{KindBytes, KindBoolean, KindFloat, KindInteger, KindString, KindList, KindMap, KindSet}

	for _, k := range kinds {
		parsed, ok := KindFromString(k.String())
		if !ok || parsed != k {
			t.Errorf("Expected KindFromString(%q) to yield %d, got %d (ok=%v)", k.String(), k, parsed, ok)
		}

		parsed, ok = KindFromByte(byte(k))
		if !ok || parsed != k {
			t.Errorf("Expected KindFromByte(%d) to yield %d, got %d (ok=%v)", byte(k), k, parsed, ok)
		}
	}

	if _, ok := KindFromString("no-such-kind"); ok {
		t.Error("Expected unknown kind name to be rejected")
	}
	if _, ok := KindFromByte(200); ok {
		t.Error("Expected out-of-range kind byte to be rejected")
	}
}

func TestConstructorsAndAccessors(t *testing.T) {
	cases := []struct {
		v    *Value
		kind Kind
	}{
		{NewBytes([]byte("b")), KindBytes},
		{NewBoolean(true), KindBoolean},
		{NewFloat(1.5), KindFloat},
		{NewInteger(-3), KindInteger},
		{NewString("s"), KindString},
		{NewList([][]byte{[]byte("a")}), KindList},
		{NewSet([]byte("m")), KindSet},
		{NewMap(), KindMap},
	}

	for _, tc := range cases {
		if tc.v.Kind() != tc.kind {
			t.Errorf("Expected kind %s, got %s", tc.kind, tc.v.Kind())
		}
	}

	// accessors refuse the wrong variant
	if _, ok := NewInteger(1).BytesRef(); ok {
		t.Error("Expected BytesRef on an integer to report false")
	}
	if _, ok := NewBytes(nil).IntegerRef(); ok {
		t.Error("Expected IntegerRef on bytes to report false")
	}

	// references are mutable views into the value
	v := NewInteger(1)
	n, _ := v.IntegerRef()
	*n = 42
	if !v.Equal(NewInteger(42)) {
		t.Errorf("Expected mutation through IntegerRef to stick, got %s", v)
	}
}

func TestZeroOf(t *testing.T) {
	if v := ZeroOf(KindInteger); !v.Equal(NewInteger(0)) {
		t.Errorf("Expected integer zero, got %s", v)
	}
	if v := ZeroOf(KindList); v.Kind() != KindList {
		t.Errorf("Expected empty list, got %s", v)
	}

	// zero maps and sets must be usable immediately
	m, ok := ZeroOf(KindMap).MapRef()
	if !ok {
		t.Fatal("Expected ZeroOf(KindMap) to be a map")
	}
	m["f"] = []byte("v")

	set, ok := ZeroOf(KindSet).SetRef()
	if !ok {
		t.Fatal("Expected ZeroOf(KindSet) to be a set")
	}
	set["m"] = struct{}{}
}

func TestCloneIsDeep(t *testing.T) {
	original := NewList([][]byte{[]byte("a"), []byte("b")})
	clone := original.Clone()

	l, _ := clone.ListRef()
	(*l)[0][0] = 'X'
	*l = append(*l, []byte("c"))

	if !original.Equal(NewList([][]byte{[]byte("a"), []byte("b")})) {
		t.Errorf("Expected original list to be unaffected by clone mutation, got %s", original)
	}

	m := NewMap()
	fields, _ := m.MapRef()
	fields["f"] = []byte("v")

	mClone := m.Clone()
	cloneFields, _ := mClone.MapRef()
	cloneFields["f"][0] = 'X'
	cloneFields["g"] = []byte("w")

	if !m.Equal(func() *Value {
		want := NewMap()
		wf, _ := want.MapRef()
		wf["f"] = []byte("v")
		return want
	}()) {
		t.Errorf("Expected original map to be unaffected by clone mutation, got %s", m)
	}

	if NewBytes(nil).Clone() == nil || (*Value)(nil).Clone() != nil {
		t.Error("Expected Clone to preserve nilness")
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b *Value
		want bool
	}{
		{"bytes equal", NewBytes([]byte("x")), NewBytes([]byte("x")), true},
		{"bytes differ", NewBytes([]byte("x")), NewBytes([]byte("y")), false},
		{"kind differs", NewBytes([]byte("1")), NewString("1"), false},
		{"int equal", NewInteger(3), NewInteger(3), true},
		{"list order matters", NewList([][]byte{[]byte("a"), []byte("b")}), NewList([][]byte{[]byte("b"), []byte("a")}), false},
		{"set order free", NewSet([]byte("a"), []byte("b")), NewSet([]byte("b"), []byte("a")), true},
		{"set size differs", NewSet([]byte("a")), NewSet([]byte("a"), []byte("b")), false},
		{"float equal", NewFloat(2.5), NewFloat(2.5), true},
		{"nan never equal", NewFloat(math.NaN()), NewFloat(math.NaN()), false},
		{"negative zero equals zero", NewFloat(math.Copysign(0, -1)), NewFloat(0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf("Expected Equal=%v for %s vs %s, got %v", tc.want, tc.a, tc.b, got)
			}
			// equality is symmetric
			if got := tc.b.Equal(tc.a); got != tc.want {
				t.Errorf("Expected symmetric Equal=%v for %s vs %s, got %v", tc.want, tc.b, tc.a, got)
			}
		})
	}

	maps1 := NewMap()
	f1, _ := maps1.MapRef()
	f1["a"] = []byte("1")
	maps2 := NewMap()
	f2, _ := maps2.MapRef()
	f2["a"] = []byte("2")
	if maps1.Equal(maps2) {
		t.Error("Expected maps with different field values to differ")
	}
}

func TestStableOrdering(t *testing.T) {
	v := NewSet([]byte("c"), []byte("a"), []byte("b"))
	members, ok := v.SetMembers()
	if !ok {
		t.Fatal("Expected SetMembers on a set to succeed")
	}
	for i, want := range []string{"a", "b", "c"} {
		if string(members[i]) != want {
			t.Errorf("Expected member %d to be %q, got %q", i, want, members[i])
		}
	}

	m := NewMap()
	fields, _ := m.MapRef()
	fields["z"] = nil
	fields["a"] = nil
	names, _ := m.MapFields()
	if string(names[0]) != "a" || string(names[1]) != "z" {
		t.Errorf("Expected sorted field names [a z], got %q", names)
	}
}
