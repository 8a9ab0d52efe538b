package value

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// --------------------------------------------------------------------------
// Value Type
// --------------------------------------------------------------------------

// Value is a tagged union over the closed set of variants described by Kind.
// Exactly one of the inner fields is meaningful, selected by the kind tag.
type Value struct {
	kind Kind

	boolean bool
	integer int64
	float   float64
	bytes   []byte
	str     string
	list    [][]byte
	set     map[string]struct{}
	hash    map[string][]byte
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// NewBytes creates a Bytes value. The slice is not copied.
func NewBytes(b []byte) *Value {
	return &Value{kind: KindBytes, bytes: b}
}

// NewBoolean creates a Boolean value.
func NewBoolean(b bool) *Value {
	return &Value{kind: KindBoolean, boolean: b}
}

// NewFloat creates a Float value.
func NewFloat(f float64) *Value {
	return &Value{kind: KindFloat, float: f}
}

// NewInteger creates an Integer value.
func NewInteger(n int64) *Value {
	return &Value{kind: KindInteger, integer: n}
}

// NewString creates a String value. Callers are responsible for only
// passing valid UTF-8 (the engine validates at its boundary).
func NewString(s string) *Value {
	return &Value{kind: KindString, str: s}
}

// NewList creates a List value. The outer slice is not copied.
func NewList(elems [][]byte) *Value {
	return &Value{kind: KindList, list: elems}
}

// NewSet creates a Set value containing the given members.
func NewSet(members ...[]byte) *Value {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[string(m)] = struct{}{}
	}
	return &Value{kind: KindSet, set: set}
}

// NewMap creates an empty Map value.
func NewMap() *Value {
	return &Value{kind: KindMap, hash: make(map[string][]byte)}
}

// ZeroOf creates the default value of the given kind (empty bytes, zero
// integer, empty list, ...). It is used when an operation materializes a
// previously-absent key.
func ZeroOf(kind Kind) *Value {
	switch kind {
	case KindBoolean:
		return NewBoolean(false)
	case KindFloat:
		return NewFloat(0)
	case KindInteger:
		return NewInteger(0)
	case KindString:
		return NewString("")
	case KindList:
		return NewList(nil)
	case KindMap:
		return NewMap()
	case KindSet:
		return NewSet()
	default:
		return NewBytes(nil)
	}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Kind returns the variant tag of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// BooleanRef returns a mutable reference to the inner bool.
// The boolean return value indicates whether the value is a Boolean.
func (v *Value) BooleanRef() (*bool, bool) {
	if v.kind != KindBoolean {
		return nil, false
	}
	return &v.boolean, true
}

// IntegerRef returns a mutable reference to the inner int64.
func (v *Value) IntegerRef() (*int64, bool) {
	if v.kind != KindInteger {
		return nil, false
	}
	return &v.integer, true
}

// FloatRef returns a mutable reference to the inner float64.
func (v *Value) FloatRef() (*float64, bool) {
	if v.kind != KindFloat {
		return nil, false
	}
	return &v.float, true
}

// BytesRef returns a mutable reference to the inner byte slice.
func (v *Value) BytesRef() (*[]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	return &v.bytes, true
}

// StringRef returns a mutable reference to the inner string.
func (v *Value) StringRef() (*string, bool) {
	if v.kind != KindString {
		return nil, false
	}
	return &v.str, true
}

// ListRef returns a mutable reference to the inner element slice.
func (v *Value) ListRef() (*[][]byte, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return &v.list, true
}

// SetRef returns the inner member set. Maps are reference types, so
// mutating the returned map mutates the value.
func (v *Value) SetRef() (map[string]struct{}, bool) {
	if v.kind != KindSet {
		return nil, false
	}
	if v.set == nil {
		v.set = make(map[string]struct{})
	}
	return v.set, true
}

// MapRef returns the inner field map. Maps are reference types, so
// mutating the returned map mutates the value.
func (v *Value) MapRef() (map[string][]byte, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	if v.hash == nil {
		v.hash = make(map[string][]byte)
	}
	return v.hash, true
}

// SetMembers returns the members of a Set value in stable (byte-wise
// ascending) order. Returns false if the value is not a Set.
func (v *Value) SetMembers() ([][]byte, bool) {
	if v.kind != KindSet {
		return nil, false
	}
	members := make([][]byte, 0, len(v.set))
	for m := range v.set {
		members = append(members, []byte(m))
	}
	sort.Slice(members, func(i, j int) bool { return bytes.Compare(members[i], members[j]) < 0 })
	return members, true
}

// MapFields returns the field names of a Map value in stable (byte-wise
// ascending) order. Returns false if the value is not a Map.
func (v *Value) MapFields() ([][]byte, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	fields := make([][]byte, 0, len(v.hash))
	for f := range v.hash {
		fields = append(fields, []byte(f))
	}
	sort.Slice(fields, func(i, j int) bool { return bytes.Compare(fields[i], fields[j]) < 0 })
	return fields, true
}

// --------------------------------------------------------------------------
// Clone and Equality
// --------------------------------------------------------------------------

// Clone returns a deep copy of the value. The copy shares no mutable
// state with the original and may be used outside the store's per-key
// exclusive scope.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	clone := &Value{
		kind:    v.kind,
		boolean: v.boolean,
		integer: v.integer,
		float:   v.float,
		str:     v.str,
	}
	if v.bytes != nil {
		clone.bytes = append([]byte(nil), v.bytes...)
	}
	if v.list != nil {
		clone.list = make([][]byte, len(v.list))
		for i, e := range v.list {
			clone.list[i] = append([]byte(nil), e...)
		}
	}
	if v.set != nil {
		clone.set = make(map[string]struct{}, len(v.set))
		for m := range v.set {
			clone.set[m] = struct{}{}
		}
	}
	if v.hash != nil {
		clone.hash = make(map[string][]byte, len(v.hash))
		for f, fv := range v.hash {
			clone.hash[f] = append([]byte(nil), fv...)
		}
	}
	return clone
}

// Equal reports whether two values have the same variant and the same
// contents. Float comparison follows IEEE semantics: NaN is never equal
// to anything, including itself.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindBoolean:
		return v.boolean == other.boolean
	case KindInteger:
		return v.integer == other.integer
	case KindFloat:
		return v.float == other.float
	case KindBytes:
		return bytes.Equal(v.bytes, other.bytes)
	case KindString:
		return v.str == other.str
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !bytes.Equal(v.list[i], other.list[i]) {
				return false
			}
		}
		return true
	case KindSet:
		if len(v.set) != len(other.set) {
			return false
		}
		for m := range v.set {
			if _, ok := other.set[m]; !ok {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.hash) != len(other.hash) {
			return false
		}
		for f, fv := range v.hash {
			ov, ok := other.hash[f]
			if !ok || !bytes.Equal(fv, ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders the value for diagnostics and the interactive shell.
func (v *Value) String() string {
	if v == nil {
		return "(nil)"
	}
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindFloat:
		return strconv.FormatFloat(v.float, 'g', -1, 64)
	case KindBytes:
		return fmt.Sprintf("%q", v.bytes)
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindList:
		return fmt.Sprintf("list(%d)%q", len(v.list), v.list)
	case KindSet:
		members, _ := v.SetMembers()
		return fmt.Sprintf("set(%d)%q", len(v.set), members)
	case KindMap:
		fields, _ := v.MapFields()
		return fmt.Sprintf("map(%d)%q", len(v.hash), fields)
	default:
		return "unknown"
	}
}
