package engine

import (
	"context"
	"sort"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpMapGet, 1, 1, opMapGet)
	registerFeature(OpMapSet, 2, -1, opMapSet)
	registerFeature(OpMapDel, 1, -1, opMapDel)
	registerFeature(OpMapFields, 0, 0, opMapFields)
	registerFeature(OpMapCard, 0, 0, opMapCard)
}

// mapRef resolves the entry's field map, enforcing the variant contract.
func mapRef(key string, en *store.Entry) (map[string][]byte, error) {
	m, ok := en.Value.MapRef()
	if !ok {
		return nil, errTypeMismatch(key, en.Value.Kind(), "map")
	}
	return m, nil
}

// readMap is the shared path of the read-only map features.
func readMap(e *engineImpl, key string) (map[string][]byte, error) {
	v, _, loaded := e.store.Get(key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", key)
	}
	m, ok := v.MapRef()
	if !ok {
		return nil, errTypeMismatch(key, v.Kind(), "map")
	}
	return m, nil
}

// map:get reads a single field; a missing field is not-found, the same
// as a missing key.
func opMapGet(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	m, err := readMap(e, req.Key)
	if err != nil {
		return nil, err
	}
	field := string(req.Args[0])
	raw, ok := m[field]
	if !ok {
		return nil, NewError(ErrCKeyNotFound, "map:get: field %q not found in key %q", field, req.Key)
	}
	return respond(value.NewBytes(raw)), nil
}

// map:set writes field/value pairs, materializing an absent key as an
// empty map. The payload is the number of fields that were new.
func opMapSet(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	if len(req.Args)%2 != 0 {
		return nil, NewError(ErrCInvalidArgument,
			"map:set: expects field/value pairs (got %d arguments)", len(req.Args))
	}

	var created int64
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		if !loaded {
			en.Value = value.ZeroOf(value.KindMap)
		}
		m, err := mapRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		for i := 0; i < len(req.Args); i += 2 {
			field := string(req.Args[i])
			if _, ok := m[field]; !ok {
				created++
			}
			m[field] = cloneArg(req.Args[i+1])
		}
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewInteger(created)), nil
}

// map:del removes fields; the payload is the number actually removed.
// The map entry stays in place even when it drains empty.
func opMapDel(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	var removed int64
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		m, err := mapRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		for _, raw := range req.Args {
			field := string(raw)
			if _, ok := m[field]; ok {
				delete(m, field)
				removed++
			}
		}
		if removed == 0 {
			return store.EntryKeep, nil
		}
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewInteger(removed)), nil
}

func opMapFields(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	m, err := readMap(e, req.Key)
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	elems := make([][]byte, len(fields))
	for i, field := range fields {
		elems[i] = []byte(field)
	}
	return respond(value.NewList(elems)), nil
}

func opMapCard(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	m, err := readMap(e, req.Key)
	if err != nil {
		return nil, err
	}
	return respond(value.NewInteger(int64(len(m)))), nil
}
