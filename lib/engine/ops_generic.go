package engine

import (
	"context"
	"strconv"
	"unicode/utf8"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpEcho, 0, -1, opEcho)
	registerFeature(OpExists, 0, 0, opExists)
	registerFeature(OpType, 0, 0, opType)
	registerFeature(OpIs, 1, 1, opIs)
	registerFeature(OpDelete, 0, 0, opDelete)
	registerFeature(OpRename, 1, 1, opRename)
	registerFeature(OpLength, 0, 0, opLength)
	registerFeature(OpKeys, 0, 1, opKeys)
	registerFeature(OpStats, 0, 0, opStats)
}

// echo returns its arguments unchanged; mainly a liveness probe.
func opEcho(_ context.Context, _ *engineImpl, req *Request) (*Response, error) {
	return respond(value.NewList(cloneArgs(req.Args))), nil
}

func opExists(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	return respond(value.NewBoolean(e.store.Has(req.Key))), nil
}

func opType(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", req.Key)
	}
	return respond(value.NewString(v.Kind().String())), nil
}

func opIs(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	kind, ok := value.KindFromString(string(req.Args[0]))
	if !ok {
		return nil, NewError(ErrCInvalidArgument, "is: unknown kind %q", req.Args[0])
	}
	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", req.Key)
	}
	return respond(value.NewBoolean(v.Kind() == kind)), nil
}

// delete is idempotent: deleting an absent key reports false, never an
// error.
func opDelete(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	_, loaded := e.store.Remove(req.Key)
	if loaded {
		e.notify(req.Key)
	}
	return respond(value.NewBoolean(loaded)), nil
}

// rename moves the value (and remaining TTL) to the destination key,
// overwriting it. The two keys are accessed one at a time; the move is
// not atomic across both.
func opRename(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	dest := string(req.Args[0])
	if dest == req.Key {
		return ack(), nil
	}

	var (
		moved    *value.Value
		expireAt int64
	)
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		moved = en.Value
		expireAt = en.ExpireAt
		return store.EntryDelete, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = e.update(dest, true, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		en.Value = moved
		en.ExpireAt = expireAt
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return ack(), nil
}

func opLength(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	v, _, loaded := e.store.Get(req.Key)
	if !loaded {
		return nil, NewError(ErrCKeyNotFound, "key %q not found", req.Key)
	}

	var n int
	switch v.Kind() {
	case value.KindBytes:
		b, _ := v.BytesRef()
		n = len(*b)
	case value.KindString:
		s, _ := v.StringRef()
		n = utf8.RuneCountInString(*s)
	case value.KindList:
		l, _ := v.ListRef()
		n = len(*l)
	case value.KindSet:
		m, _ := v.SetRef()
		n = len(m)
	case value.KindMap:
		m, _ := v.MapRef()
		n = len(m)
	default:
		return nil, errTypeMismatch(req.Key, v.Kind(), "a sized value")
	}
	return respond(value.NewInteger(int64(n))), nil
}

func opKeys(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	prefix := ""
	if len(req.Args) == 1 {
		prefix = string(req.Args[0])
	}
	keys := e.store.Keys(prefix)
	elems := make([][]byte, len(keys))
	for i, k := range keys {
		elems[i] = []byte(k)
	}
	return respond(value.NewList(elems)), nil
}

func opStats(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	stats := e.store.Stats()
	e.sink.RecordStoreStats(stats.ShardCount, stats.KeyCount)

	v := value.NewMap()
	m, _ := v.MapRef()
	m["shard_count"] = []byte(strconv.Itoa(stats.ShardCount))
	m["key_count"] = []byte(strconv.Itoa(stats.KeyCount))
	m["distribution_quality"] = []byte(strconv.FormatFloat(stats.Quality.DistributionQuality, 'f', 3, 64))
	return respond(v), nil
}
