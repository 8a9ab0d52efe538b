package engine

import (
	"strconv"
	"unicode/utf8"

	"github.com/tkv-io/tkv/lib/value"
)

// --------------------------------------------------------------------------
// Argument Parsing
// --------------------------------------------------------------------------

func parseInt(op string, arg []byte) (int64, error) {
	n, err := strconv.ParseInt(string(arg), 10, 64)
	if err != nil {
		return 0, NewError(ErrCInvalidArgument, "%s: %q is not a valid integer", op, arg)
	}
	return n, nil
}

func parseFloat(op string, arg []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(arg), 64)
	if err != nil {
		return 0, NewError(ErrCInvalidArgument, "%s: %q is not a valid float", op, arg)
	}
	return f, nil
}

func parseBool(op string, arg []byte) (bool, error) {
	b, err := strconv.ParseBool(string(arg))
	if err != nil {
		return false, NewError(ErrCInvalidArgument, "%s: %q is not a valid bool", op, arg)
	}
	return b, nil
}

func parseUTF8(op string, arg []byte) (string, error) {
	if !utf8.Valid(arg) {
		return "", NewError(ErrCInvalidArgument, "%s: argument is not valid UTF-8", op)
	}
	return string(arg), nil
}

// cloneArg copies an argument so stored values never alias request
// buffers owned by the transport layer.
func cloneArg(arg []byte) []byte {
	return append([]byte(nil), arg...)
}

func cloneArgs(args [][]byte) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = cloneArg(a)
	}
	return out
}

// parseValue builds a Value of the given kind from operation arguments.
// Scalar kinds take exactly one argument; List and Set take the
// arguments as elements/members; Map takes alternating field/value
// pairs.
func parseValue(op string, kind value.Kind, args [][]byte) (*value.Value, error) {
	switch kind {
	case value.KindBytes, value.KindBoolean, value.KindFloat, value.KindInteger, value.KindString:
		if len(args) != 1 {
			return nil, NewError(ErrCInvalidArgument,
				"%s: %s value takes exactly one argument (got %d)", op, kind, len(args))
		}
	}

	switch kind {
	case value.KindBytes:
		return value.NewBytes(cloneArg(args[0])), nil
	case value.KindBoolean:
		b, err := parseBool(op, args[0])
		if err != nil {
			return nil, err
		}
		return value.NewBoolean(b), nil
	case value.KindFloat:
		f, err := parseFloat(op, args[0])
		if err != nil {
			return nil, err
		}
		return value.NewFloat(f), nil
	case value.KindInteger:
		n, err := parseInt(op, args[0])
		if err != nil {
			return nil, err
		}
		return value.NewInteger(n), nil
	case value.KindString:
		s, err := parseUTF8(op, args[0])
		if err != nil {
			return nil, err
		}
		return value.NewString(s), nil
	case value.KindList:
		return value.NewList(cloneArgs(args)), nil
	case value.KindSet:
		return value.NewSet(args...), nil
	case value.KindMap:
		if len(args)%2 != 0 {
			return nil, NewError(ErrCInvalidArgument,
				"%s: map value takes field/value pairs (got %d arguments)", op, len(args))
		}
		v := value.NewMap()
		m, _ := v.MapRef()
		for i := 0; i < len(args); i += 2 {
			m[string(args[i])] = cloneArg(args[i+1])
		}
		return v, nil
	default:
		return nil, NewError(ErrCInvalidArgument, "%s: unknown value kind", op)
	}
}
