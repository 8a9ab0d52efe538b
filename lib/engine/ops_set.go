package engine

import (
	"context"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpSetAdd, 1, -1, opSetAdd)
	registerFeature(OpSetRemove, 1, -1, opSetRemove)
	registerFeature(OpSetHas, 1, 1, opSetHas)
	registerFeature(OpSetCard, 0, 0, opSetCard)
	registerFeature(OpSetUnion, 1, -1, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return setCombine(e, req, false)
	})
	registerFeature(OpSetInter, 1, -1, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return setCombine(e, req, true)
	})
}

// setRef resolves the entry's member set, enforcing the variant contract.
func setRef(key string, en *store.Entry) (map[string]struct{}, error) {
	m, ok := en.Value.SetRef()
	if !ok {
		return nil, errTypeMismatch(key, en.Value.Kind(), "set")
	}
	return m, nil
}

// set:add inserts members, materializing an absent key as an empty set.
// The payload is the number of members that were actually new.
func opSetAdd(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	var added int64
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		if !loaded {
			en.Value = value.ZeroOf(value.KindSet)
		}
		m, err := setRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		for _, member := range req.Args {
			if _, ok := m[string(member)]; !ok {
				m[string(member)] = struct{}{}
				added++
			}
		}
		if added == 0 && loaded {
			return store.EntryKeep, nil
		}
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewInteger(added)), nil
}

func opSetRemove(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	var removed int64
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		m, err := setRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		for _, member := range req.Args {
			if _, ok := m[string(member)]; ok {
				delete(m, string(member))
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

func opSetHas(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", req.Key)
	}
	m, ok := v.SetRef()
	if !ok {
		return nil, errTypeMismatch(req.Key, v.Kind(), "set")
	}
	_, has := m[string(req.Args[0])]
	return respond(value.NewBoolean(has)), nil
}

func opSetCard(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", req.Key)
	}
	m, ok := v.SetRef()
	if !ok {
		return nil, errTypeMismatch(req.Key, v.Kind(), "set")
	}
	return respond(value.NewInteger(int64(len(m)))), nil
}

// setCombine implements the read-only multi-key aggregations. Keys are
// read one at a time (no multi-key atomic section); an absent key
// contributes an empty set. The payload lists the members in stable
// order.
func setCombine(e *engineImpl, req *Request, intersect bool) (*Response, error) {
	readMembers := func(key string) (map[string]struct{}, error) {
		v, _, loaded := e.store.Get(key)
		if !loaded {
			return map[string]struct{}{}, nil
		}
		m, ok := v.SetRef()
		if !ok {
			return nil, errTypeMismatch(key, v.Kind(), "set")
		}
		return m, nil
	}

	acc, err := readMembers(req.Key)
	if err != nil {
		return nil, err
	}

	for _, rawKey := range req.Args {
		other, err := readMembers(string(rawKey))
		if err != nil {
			return nil, err
		}
		if intersect {
			for member := range acc {
				if _, ok := other[member]; !ok {
					delete(acc, member)
				}
			}
		} else {
			for member := range other {
				acc[member] = struct{}{}
			}
		}
	}

	members := make([][]byte, 0, len(acc))
	for member := range acc {
		members = append(members, []byte(member))
	}
	result := value.NewSet(members...)
	sorted, _ := result.SetMembers()
	return respond(value.NewList(sorted)), nil
}
