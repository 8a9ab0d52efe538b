package engine

import (
	"context"
	"math"

	"github.com/tkv-io/tkv/lib/store"
	"github.com/tkv-io/tkv/lib/value"
)

func init() {
	registerFeature(OpIncrement, 0, 0, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return applyDelta(e, req, "increment", nil, false)
	})
	registerFeature(OpDecrement, 0, 0, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return applyDelta(e, req, "decrement", nil, true)
	})
	registerFeature(OpIncrementBy, 1, 1, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return applyDelta(e, req, "increment:by", req.Args[0], false)
	})
	registerFeature(OpDecrementBy, 1, 1, func(ctx context.Context, e *engineImpl, req *Request) (*Response, error) {
		return applyDelta(e, req, "decrement:by", req.Args[0], true)
	})
	registerFeature(OpCompareSet, 2, 2, opCompareSet)
}

// applyDelta implements the four increment/decrement features. A nil
// rawDelta means a step of one. Absent keys are materialized as Integer
// (or Float when the request tags the kind); overflow is rejected, the
// stored value stays unchanged.
func applyDelta(e *engineImpl, req *Request, op string, rawDelta []byte, negate bool) (*Response, error) {
	targetKind := value.KindInteger
	if req.Kind != nil {
		targetKind = *req.Kind
	}
	if targetKind != value.KindInteger && targetKind != value.KindFloat {
		return nil, NewError(ErrCTypeMismatch, "%s: requires int or float, not %s", op, targetKind)
	}

	var payload *value.Value
	_, err := e.update(req.Key, true, func(en *store.Entry, loaded bool) (store.EntryOp, error) {
		if !loaded {
			en.Value = value.ZeroOf(targetKind)
		}

		switch en.Value.Kind() {
		case value.KindInteger:
			delta := int64(1)
			if rawDelta != nil {
				n, err := parseInt(op, rawDelta)
				if err != nil {
					return store.EntryKeep, err
				}
				delta = n
			}
			cur, _ := en.Value.IntegerRef()
			next, err := addCheckedInt(op, *cur, delta, negate)
			if err != nil {
				return store.EntryKeep, err
			}
			*cur = next
			payload = value.NewInteger(next)

		case value.KindFloat:
			delta := float64(1)
			if rawDelta != nil {
				f, err := parseFloat(op, rawDelta)
				if err != nil {
					return store.EntryKeep, err
				}
				delta = f
			}
			cur, _ := en.Value.FloatRef()
			next, err := addCheckedFloat(op, *cur, delta, negate)
			if err != nil {
				return store.EntryKeep, err
			}
			*cur = next
			payload = value.NewFloat(next)

		default:
			return store.EntryKeep, errTypeMismatch(req.Key, en.Value.Kind(), "int or float")
		}

		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(payload), nil
}

// addCheckedInt applies cur +/- delta, rejecting results outside the
// int64 range instead of wrapping. Overflow is detected on the wrapped
// result, which also covers delta == math.MinInt64.
func addCheckedInt(op string, cur, delta int64, negate bool) (int64, error) {
	var next int64
	if negate {
		next = cur - delta
		if (delta > 0 && next > cur) || (delta < 0 && next < cur) {
			return 0, NewError(ErrCArithmeticOverflow, "%s: result exceeds int64 range", op)
		}
	} else {
		next = cur + delta
		if (delta > 0 && next < cur) || (delta < 0 && next > cur) {
			return 0, NewError(ErrCArithmeticOverflow, "%s: result exceeds int64 range", op)
		}
	}
	return next, nil
}

// addCheckedFloat rejects results leaving the finite range when both
// operands were finite (IEEE NaN propagates unchanged).
func addCheckedFloat(op string, cur, delta float64, negate bool) (float64, error) {
	if negate {
		delta = -delta
	}
	next := cur + delta
	if math.IsInf(next, 0) && !math.IsInf(cur, 0) && !math.IsInf(delta, 0) {
		return 0, NewError(ErrCArithmeticOverflow, "%s: result exceeds float64 range", op)
	}
	return next, nil
}

// cas atomically replaces the value if it currently equals the expected
// argument. The payload reports whether the swap happened; the key must
// exist and hold a scalar variant.
func opCompareSet(_ context.Context, e *engineImpl, req *Request) (*Response, error) {
	var swapped bool
	_, err := e.update(req.Key, false, func(en *store.Entry, _ bool) (store.EntryOp, error) {
		kind := en.Value.Kind()
		switch kind {
		case value.KindList, value.KindMap, value.KindSet:
			return store.EntryKeep, errTypeMismatch(req.Key, kind, "a scalar value")
		}

		expected, err := parseValue("cas", kind, req.Args[:1])
		if err != nil {
			return store.EntryKeep, err
		}
		desired, err := parseValue("cas", kind, req.Args[1:2])
		if err != nil {
			return store.EntryKeep, err
		}

		if !en.Value.Equal(expected) {
			return store.EntryKeep, nil
		}
		en.Value = desired
		swapped = true
		return store.EntryStore, nil
	})
	if err != nil {
		return nil, err
	}
	return respond(value.NewBoolean(swapped)), nil
}
