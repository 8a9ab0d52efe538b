package engine

import (
	"context"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpListPushFront, 1, -1, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return listPush(e, req, true)
	})
	registerFeature(OpListPushBack, 1, -1, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return listPush(e, req, false)
	})
	registerFeature(OpListPopFront, 0, 0, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return listPop(e, req, true)
	})
	registerFeature(OpListPopBack, 0, 0, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return listPop(e, req, false)
	})
	registerFeature(OpListIndex, 1, 1, opListIndex)
	registerFeature(OpListSet, 2, 2, opListSet)
	registerFeature(OpListRange, 2, 2, opListRange)
}

// listRef resolves the entry's list, enforcing the variant contract.
func listRef(key string, en *store.Entry) (*[][]byte, error) {
	l, ok := en.Value.ListRef()
	if !ok {
		return nil, errTypeMismatch(key, en.Value.Kind(), "list")
	}
	return l, nil
}

// listPush appends the arguments at the chosen end, materializing an
// absent key as an empty list. The payload is the new length.
func listPush(e *engineImpl, req *Request, front bool) (*Response, error) {
	var length int
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		if !loaded {
			en.Value = value.ZeroOf(value.KindList)
		}
		l, err := listRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}

		elems := cloneArgs(req.Args)
		if front {
			// pushed one by one, so the first argument ends up outermost
			for _, el := range elems {
				*l = append([][]byte{el}, *l...)
			}
		} else {
			*l = append(*l, elems...)
		}
		length = len(*l)
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewInteger(int64(length))), nil
}

// listPop removes and returns one element; popping an empty list yields
// an empty payload. The list entry itself stays in place.
func listPop(e *engineImpl, req *Request, front bool) (*Response, error) {
	var popped []byte
	var found bool
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		l, err := listRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		if len(*l) == 0 {
			return store.EntryKeep, nil
		}
		if front {
			popped = (*l)[0]
			*l = (*l)[1:]
		} else {
			popped = (*l)[len(*l)-1]
			*l = (*l)[:len(*l)-1]
		}
		found = true
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return ack(), nil
	}
	return respond(value.NewBytes(popped)), nil
}

// resolveIndex maps a possibly-negative index onto [0, length).
func resolveIndex(op string, idx, length int64) (int64, error) {
	resolved := idx
	if resolved < 0 {
		resolved += length
	}
	if resolved < 0 || resolved >= length {
		return 0, NewError(ErrCInvalidArgument,
			"%s: index %d out of bounds for length %d", op, idx, length)
	}
	return resolved, nil
}

func opListIndex(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	idx, err := parseInt("list:index", req.Args[0])
	if err != nil {
		return nil, err
	}

	var elem []byte
	_, err = e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		l, err := listRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		i, err := resolveIndex("list:index", idx, int64(len(*l)))
		if err != nil {
			return store.EntryKeep, err
		}
		elem = cloneArg((*l)[i])
		return store.EntryKeep, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewBytes(elem)), nil
}

func opListSet(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	idx, err := parseInt("list:set", req.Args[0])
	if err != nil {
		return nil, err
	}

	_, err = e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		l, err := listRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		i, err := resolveIndex("list:set", idx, int64(len(*l)))
		if err != nil {
			return store.EntryKeep, err
		}
		(*l)[i] = cloneArg(req.Args[1])
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return ack(), nil
}

// list:range returns the elements of [start, stop); negative indices
// count from the end and the range is clamped to the list bounds.
func opListRange(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	start, err := parseInt("list:range", req.Args[0])
	if err != nil {
		return nil, err
	}
	stop, err := parseInt("list:range", req.Args[1])
	if err != nil {
		return nil, err
	}

	var elems [][]byte
	_, err = e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		l, err := listRef(req.Key, en)
		if err != nil {
			return store.EntryKeep, err
		}
		length := int64(len(*l))
		if start < 0 {
			start += length
		}
		if stop < 0 {
			stop += length
		}
		start = max64(start, 0)
		stop = min64(stop, length)
		for i := start; i < stop; i++ {
			elems = append(elems, cloneArg((*l)[i]))
		}
		return store.EntryKeep, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewList(elems)), nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
