package value

// Kind identifies the variant stored in a Value.
//
// The numeric values are wire-stable: a protocol layer may serialize a
// Kind as a single byte and parse it back with KindFromByte.
type Kind uint8

const (
	KindBytes   Kind = 0
	KindBoolean Kind = 1
	KindFloat   Kind = 2
	KindInteger Kind = 3
	KindString  Kind = 4
	KindList    Kind = 5
	KindMap     Kind = 6
	KindSet     Kind = 7
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindBoolean:
		return "bool"
	case KindFloat:
		return "float"
	case KindInteger:
		return "int"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindSet:
		return "set"
	default:
		return "unknown"
	}
}

// KindFromByte parses a wire-level kind identifier.
// The boolean return value indicates whether the byte is a valid Kind.
func KindFromByte(b byte) (Kind, bool) {
	if b > uint8(KindSet) {
		return 0, false
	}
	return Kind(b), true
}

// KindFromString parses a kind name as produced by Kind.String().
// The boolean return value indicates whether the name is a valid Kind.
func KindFromString(s string) (Kind, bool) {
	switch s {
	case "bytes":
		return KindBytes, true
	case "bool":
		return KindBoolean, true
	case "float":
		return KindFloat, true
	case "int":
		return KindInteger, true
	case "string":
		return KindString, true
	case "list":
		return KindList, true
	case "map":
		return KindMap, true
	case "set":
		return KindSet, true
	default:
		return 0, false
	}
}
