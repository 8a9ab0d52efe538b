package engine

import (
	"context"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpGet, 0, 0, opGet)
	registerFeature(OpSet, 1, -1, opSet)
	registerFeature(OpSetNX, 1, -1, opSetNX)
	registerFeature(OpAppend, 1, -1, opAppend)
	registerFeature(OpStrRange, 2, 2, opStrRange)
}

// get works on every variant; an absent key yields an empty payload, not
// an error.
func opGet(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return ack(), nil
	}
	return respond(v), nil
}

// set writes a value. The variant of an existing key is fixed: an
// explicit kind tag that disagrees with the stored variant fails with
// TypeMismatch instead of re-typing the key.
func opSet(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		target := value.KindBytes
		if loaded {
			target = en.Value.Kind()
		}
		if req.Kind != nil {
			if loaded && *req.Kind != target {
				return store.EntryKeep, errTypeMismatch(req.Key, target, req.Kind.String())
			}
			target = *req.Kind
		}

		v, err := parseValue("set", target, req.Args)
		if err != nil {
			return store.EntryKeep, err
		}
		en.Value = v
		// a full overwrite also disarms any pending deadline
		en.ExpireAt = 0
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return ack(), nil
}

// set:nx writes only if the key is absent; the payload reports whether
// the key was created.
func opSetNX(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	target := value.KindBytes
	if req.Kind != nil {
		target = *req.Kind
	}

	var created bool
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		if loaded {
			return store.EntryKeep, nil
		}
		v, err := parseValue("set:nx", target, req.Args)
		if err != nil {
			return store.EntryKeep, err
		}
		en.Value = v
		created = true
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewBoolean(created)), nil
}

// append extends Bytes, String, or List values, materializing an absent
// key with the tagged (default Bytes) variant. The payload is the value
// after the append.
func opAppend(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	var payload *value.Value
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		if !loaded {
			target := value.KindBytes
			if req.Kind != nil {
				target = *req.Kind
			}
			switch target {
			case value.KindBytes, value.KindString, value.KindList:
			default:
				return store.EntryKeep, NewError(ErrCTypeMismatch,
					"append: requires bytes, string or list, not %s", target)
			}
			en.Value = value.ZeroOf(target)
		}

		switch en.Value.Kind() {
		case value.KindBytes:
			b, _ := en.Value.BytesRef()
			for _, arg := range req.Args {
				*b = append(*b, arg...)
			}
		case value.KindString:
			// validate every chunk before touching the stored string: a
			// bad argument must leave the entry exactly as it was
			s, _ := en.Value.StringRef()
			next := *s
			for _, arg := range req.Args {
				chunk, err := parseUTF8("append", arg)
				if err != nil {
					return store.EntryKeep, err
				}
				next += chunk
			}
			*s = next
		case value.KindList:
			l, _ := en.Value.ListRef()
			*l = append(*l, cloneArgs(req.Args)...)
		default:
			return store.EntryKeep, errTypeMismatch(req.Key, en.Value.Kind(), "bytes, string or list")
		}

		payload = en.Value.Clone()
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(payload), nil
}

// str:range extracts the half-open range [start, end): byte indices for
// Bytes, rune indices for String. Indices out of bounds are rejected.
func opStrRange(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	start, err := parseInt("str:range", req.Args[0])
	if err != nil {
		return nil, err
	}
	end, err := parseInt("str:range", req.Args[1])
	if err != nil {
		return nil, err
	}

	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", req.Key)
	}

	switch v.Kind() {
	case value.KindBytes:
		b, _ := v.BytesRef()
		if start < 0 || end < start || end > int64(len(*b)) {
			return nil, NewError(ErrCInvalidArgument,
				"str:range: range [%d, %d) out of bounds for length %d", start, end, len(*b))
		}
		return respond(value.NewBytes(cloneArg((*b)[start:end]))), nil
	case value.KindString:
		s, _ := v.StringRef()
		runes := []rune(*s)
		if start < 0 || end < start || end > int64(len(runes)) {
			return nil, NewError(ErrCInvalidArgument,
				"str:range: range [%d, %d) out of bounds for length %d", start, end, len(runes))
		}
		return respond(value.NewString(string(runes[start:end]))), nil
	default:
		return nil, errTypeMismatch(req.Key, v.Kind(), "bytes or string")
	}
}
