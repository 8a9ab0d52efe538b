package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tkv-io/tkv/lib/engine"
	"github.com/tkv-io/tkv/lib/value"
	"github.com/tkv-io/tkv/lib/watch"
)

// EngineFactory is a function that creates a new instance of an IEngine
// implementation.
type EngineFactory func() engine.IEngine

// RunEngineTests runs a comprehensive conformance suite for an IEngine
// implementation.
func RunEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("TypedValues", func(t *testing.T) {
			testTypedValues(t, factory())
		})

		t.Run("TypeContract", func(t *testing.T) {
			testTypeContract(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("SetNX", func(t *testing.T) {
			testSetNX(t, factory())
		})

		t.Run("IncrementDecrement", func(t *testing.T) {
			testIncrementDecrement(t, factory())
		})

		t.Run("Overflow", func(t *testing.T) {
			testOverflow(t, factory())
		})

		t.Run("CompareSet", func(t *testing.T) {
			testCompareSet(t, factory())
		})

		t.Run("Append&StrRange", func(t *testing.T) {
			testAppendStrRange(t, factory())
		})

		t.Run("Length", func(t *testing.T) {
			testLength(t, factory())
		})

		t.Run("ListOps", func(t *testing.T) {
			testListOps(t, factory())
		})

		t.Run("SetOps", func(t *testing.T) {
			testSetOps(t, factory())
		})

		t.Run("MapOps", func(t *testing.T) {
			testMapOps(t, factory())
		})

		t.Run("Rename&Keys", func(t *testing.T) {
			testRenameKeys(t, factory())
		})

		t.Run("KeyExpiry", func(t *testing.T) {
			testKeyExpiry(t, factory())
		})

		t.Run("Wait", func(t *testing.T) {
			testWait(t, factory())
		})

		t.Run("BadRequests", func(t *testing.T) {
			testBadRequests(t, factory())
		})

		t.Run("ConcurrentIncrements", func(t *testing.T) {
			testConcurrentIncrements(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func rawArgs(args ...string) [][]byte {
	out := make([][]byte, len(args))
	for i, a := range args {
		out[i] = []byte(a)
	}
	return out
}

func kindOf(k value.Kind) *value.Kind {
	return &k
}

// dispatch executes an operation and fails the test on any error.
func dispatch(t testing.TB, e engine.IEngine, req *engine.Request) *engine.Response {
	t.Helper()
	resp, err := e.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected %s on %q to succeed, got %v", req.Op, req.Key, err)
	}
	return resp
}

func call(t testing.TB, e engine.IEngine, op, key string, args ...string) *engine.Response {
	t.Helper()
	return dispatch(t, e, &engine.Request{Op: op, Key: key, Args: rawArgs(args...)})
}

// mustFail executes an operation and asserts the returned error code.
func mustFail(t testing.TB, e engine.IEngine, code engine.ErrCode, op, key string, args ...string) {
	t.Helper()
	_, err := e.Dispatch(context.Background(), &engine.Request{Op: op, Key: key, Args: rawArgs(args...)})
	if err == nil {
		t.Fatalf("Expected %s on %q to fail with %s, got success", op, key, code)
	}
	if got := engine.CodeOf(err); got != code {
		t.Fatalf("Expected %s on %q to fail with %s, got %s (%v)", op, key, code, got, err)
	}
}

func wantInteger(t testing.TB, resp *engine.Response, want int64) {
	t.Helper()
	if resp.Payload == nil {
		t.Fatalf("Expected integer payload %d, got empty response", want)
	}
	n, ok := resp.Payload.IntegerRef()
	if !ok {
		t.Fatalf("Expected integer payload, got %s", resp.Payload.Kind())
	}
	if *n != want {
		t.Fatalf("Expected payload %d, got %d", want, *n)
	}
}

func wantBoolean(t testing.TB, resp *engine.Response, want bool) {
	t.Helper()
	if resp.Payload == nil {
		t.Fatalf("Expected boolean payload %v, got empty response", want)
	}
	b, ok := resp.Payload.BooleanRef()
	if !ok {
		t.Fatalf("Expected boolean payload, got %s", resp.Payload.Kind())
	}
	if *b != want {
		t.Fatalf("Expected payload %v, got %v", want, *b)
	}
}

func wantValue(t testing.TB, resp *engine.Response, want *value.Value) {
	t.Helper()
	if resp.Payload == nil {
		t.Fatalf("Expected payload %s, got empty response", want)
	}
	if !resp.Payload.Equal(want) {
		t.Fatalf("Expected payload %s, got %s", want, resp.Payload)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, e engine.IEngine) {
	defer e.Close()

	call(t, e, "set", "test-key", "test-value1")
	wantValue(t, call(t, e, "get", "test-key"), value.NewBytes([]byte("test-value1")))

	// overwrite keeps the variant
	call(t, e, "set", "test-key", "test-value2")
	wantValue(t, call(t, e, "get", "test-key"), value.NewBytes([]byte("test-value2")))

	// reading an absent key is not an error, just empty
	resp := call(t, e, "get", "nonexistent-key")
	if resp.Payload != nil {
		t.Errorf("Expected empty payload for nonexistent key, got %s", resp.Payload)
	}

	// the returned value must be a copy, not a view into the store
	retrieved := call(t, e, "get", "test-key").Payload
	b, _ := retrieved.BytesRef()
	(*b)[0] = 'X'
	wantValue(t, call(t, e, "get", "test-key"), value.NewBytes([]byte("test-value2")))
}

func testTypedValues(t *testing.T, e engine.IEngine) {
	defer e.Close()

	cases := []struct {
		key  string
		kind value.Kind
		args []string
		want *value.Value
	}{
		{"k-bool", value.KindBoolean, []string{"true"}, value.NewBoolean(true)},
		{"k-int", value.KindInteger, []string{"-42"}, value.NewInteger(-42)},
		{"k-float", value.KindFloat, []string{"2.5"}, value.NewFloat(2.5)},
		{"k-string", value.KindString, []string{"héllo"}, value.NewString("héllo")},
		{"k-list", value.KindList, []string{"a", "b"}, value.NewList([][]byte{[]byte("a"), []byte("b")})},
		{"k-set", value.KindSet, []string{"x", "y", "x"}, value.NewSet([]byte("x"), []byte("y"))},
	}

	for _, tc := range cases {
		dispatch(t, e, &engine.Request{Op: "set", Key: tc.key, Args: rawArgs(tc.args...), Kind: kindOf(tc.kind)})
		wantValue(t, call(t, e, "get", tc.key), tc.want)

		resp := call(t, e, "type", tc.key)
		s, _ := resp.Payload.StringRef()
		if *s != tc.kind.String() {
			t.Errorf("Expected type %q for key %s, got %q", tc.kind, tc.key, *s)
		}
		wantBoolean(t, call(t, e, "is", tc.key, tc.kind.String()), true)
	}

	// malformed encodings are rejected up front
	_, err := e.Dispatch(context.Background(), &engine.Request{
		Op: "set", Key: "k-bad", Args: rawArgs("not-a-number"), Kind: kindOf(value.KindInteger),
	})
	if engine.CodeOf(err) != engine.ErrCInvalidArgument {
		t.Errorf("Expected InvalidArgument for malformed integer, got %v", err)
	}
}

func testTypeContract(t *testing.T, e engine.IEngine) {
	defer e.Close()

	dispatch(t, e, &engine.Request{Op: "set", Key: "counter", Args: rawArgs("1"), Kind: kindOf(value.KindInteger)})

	// re-typing an existing key is refused
	_, err := e.Dispatch(context.Background(), &engine.Request{
		Op: "set", Key: "counter", Args: rawArgs("text"), Kind: kindOf(value.KindString),
	})
	if engine.CodeOf(err) != engine.ErrCTypeMismatch {
		t.Errorf("Expected TypeMismatch when re-typing a key, got %v", err)
	}

	// an untagged overwrite keeps the stored variant
	call(t, e, "set", "counter", "7")
	wantValue(t, call(t, e, "get", "counter"), value.NewInteger(7))

	// structural ops refuse scalar keys and vice versa
	mustFail(t, e, engine.ErrCTypeMismatch, "list:push:back", "counter", "x")
	call(t, e, "list:push:back", "k-list", "x")
	mustFail(t, e, engine.ErrCTypeMismatch, "increment", "k-list")
}

func testDelete(t *testing.T, e engine.IEngine) {
	defer e.Close()

	call(t, e, "set", "test-key", "v")
	wantBoolean(t, call(t, e, "exists", "test-key"), true)

	wantBoolean(t, call(t, e, "delete", "test-key"), true)
	wantBoolean(t, call(t, e, "exists", "test-key"), false)

	// idempotent: deleting again is not an error
	wantBoolean(t, call(t, e, "delete", "test-key"), false)
}

func testSetNX(t *testing.T, e engine.IEngine) {
	defer e.Close()

	wantBoolean(t, call(t, e, "set:nx", "test-key", "first"), true)
	wantBoolean(t, call(t, e, "set:nx", "test-key", "second"), false)
	wantValue(t, call(t, e, "get", "test-key"), value.NewBytes([]byte("first")))
}

func testIncrementDecrement(t *testing.T, e engine.IEngine) {
	defer e.Close()

	// absent key materializes as integer zero
	wantInteger(t, call(t, e, "increment", "counter"), 1)
	wantInteger(t, call(t, e, "increment", "counter"), 2)
	wantInteger(t, call(t, e, "decrement", "counter"), 1)
	wantInteger(t, call(t, e, "increment:by", "counter", "10"), 11)
	wantInteger(t, call(t, e, "decrement:by", "counter", "5"), 6)
	wantInteger(t, call(t, e, "increment:by", "counter", "-6"), 0)

	// float counters via the kind tag
	resp := dispatch(t, e, &engine.Request{
		Op: "increment:by", Key: "gauge", Args: rawArgs("0.5"), Kind: kindOf(value.KindFloat),
	})
	f, ok := resp.Payload.FloatRef()
	if !ok || *f != 0.5 {
		t.Errorf("Expected float payload 0.5, got %s", resp.Payload)
	}

	// non-numeric keys are refused
	call(t, e, "set", "blob", "xx")
	mustFail(t, e, engine.ErrCTypeMismatch, "increment", "blob")
}

func testOverflow(t *testing.T, e engine.IEngine) {
	defer e.Close()

	maxInt := fmt.Sprintf("%d", int64(1)<<62)
	dispatch(t, e, &engine.Request{Op: "set", Key: "big", Args: rawArgs(maxInt), Kind: kindOf(value.KindInteger)})
	mustFail(t, e, engine.ErrCArithmeticOverflow, "increment:by", "big", maxInt)

	// the stored value must be untouched after a rejected overflow
	wantValue(t, call(t, e, "get", "big"), value.NewInteger(int64(1)<<62))

	minInt := "-9223372036854775808"
	dispatch(t, e, &engine.Request{Op: "set", Key: "small", Args: rawArgs(minInt), Kind: kindOf(value.KindInteger)})
	mustFail(t, e, engine.ErrCArithmeticOverflow, "decrement", "small")
	wantValue(t, call(t, e, "get", "small"), value.NewInteger(-9223372036854775808))
}

func testCompareSet(t *testing.T, e engine.IEngine) {
	defer e.Close()

	call(t, e, "set", "test-key", "old")
	wantBoolean(t, call(t, e, "cas", "test-key", "wrong", "new"), false)
	wantValue(t, call(t, e, "get", "test-key"), value.NewBytes([]byte("old")))

	wantBoolean(t, call(t, e, "cas", "test-key", "old", "new"), true)
	wantValue(t, call(t, e, "get", "test-key"), value.NewBytes([]byte("new")))

	// cas requires existence and a scalar variant
	mustFail(t, e, engine.ErrCKeyNotFound, "cas", "nonexistent-key", "a", "b")
	call(t, e, "list:push:back", "a-list", "x")
	mustFail(t, e, engine.ErrCTypeMismatch, "cas", "a-list", "a", "b")
}

func testAppendStrRange(t *testing.T, e engine.IEngine) {
	defer e.Close()

	// append materializes absent keys as bytes
	call(t, e, "append", "blob", "ab")
	wantValue(t, call(t, e, "append", "blob", "cd"), value.NewBytes([]byte("abcd")))
	wantValue(t, call(t, e, "str:range", "blob", "1", "3"), value.NewBytes([]byte("bc")))

	// string append validates UTF-8 and ranges by rune index
	dispatch(t, e, &engine.Request{Op: "set", Key: "text", Args: rawArgs("häl"), Kind: kindOf(value.KindString)})
	call(t, e, "append", "text", "lo")
	wantValue(t, call(t, e, "str:range", "text", "0", "3"), value.NewString("häl"))
	_, err := e.Dispatch(context.Background(), &engine.Request{
		Op: "append", Key: "text", Args: [][]byte{[]byte("ok"), {0xff, 0xfe}},
	})
	if engine.CodeOf(err) != engine.ErrCInvalidArgument {
		t.Errorf("Expected InvalidArgument for invalid UTF-8 append, got %v", err)
	}
	// a rejected append must not have applied the earlier, valid chunks
	wantValue(t, call(t, e, "get", "text"), value.NewString("hällo"))

	// out-of-bounds ranges are rejected, not clamped
	mustFail(t, e, engine.ErrCInvalidArgument, "str:range", "blob", "0", "100")
	mustFail(t, e, engine.ErrCInvalidArgument, "str:range", "blob", "3", "1")
	mustFail(t, e, engine.ErrCKeyNotFound, "str:range", "nonexistent-key", "0", "1")
}

func testLength(t *testing.T, e engine.IEngine) {
	defer e.Close()

	call(t, e, "set", "blob", "abcd")
	wantInteger(t, call(t, e, "length", "blob"), 4)

	// string length counts runes, not bytes
	dispatch(t, e, &engine.Request{Op: "set", Key: "text", Args: rawArgs("héllo"), Kind: kindOf(value.KindString)})
	wantInteger(t, call(t, e, "length", "text"), 5)

	call(t, e, "list:push:back", "a-list", "a", "b", "c")
	wantInteger(t, call(t, e, "length", "a-list"), 3)

	mustFail(t, e, engine.ErrCKeyNotFound, "length", "nonexistent-key")
}

func testListOps(t *testing.T, e engine.IEngine) {
	defer e.Close()

	wantInteger(t, call(t, e, "list:push:back", "l", "b", "c"), 2)
	wantInteger(t, call(t, e, "list:push:front", "l", "a"), 3)
	wantValue(t, call(t, e, "list:range", "l", "0", "3"),
		value.NewList([][]byte{[]byte("a"), []byte("b"), []byte("c")}))

	// negative indices count from the end
	wantValue(t, call(t, e, "list:index", "l", "-1"), value.NewBytes([]byte("c")))
	call(t, e, "list:set", "l", "1", "B")
	wantValue(t, call(t, e, "list:index", "l", "1"), value.NewBytes([]byte("B")))

	wantValue(t, call(t, e, "list:pop:front", "l"), value.NewBytes([]byte("a")))
	wantValue(t, call(t, e, "list:pop:back", "l"), value.NewBytes([]byte("c")))
	wantInteger(t, call(t, e, "length", "l"), 1)

	// draining the list keeps the (empty) entry; popping it is empty, not an error
	call(t, e, "list:pop:back", "l")
	resp := call(t, e, "list:pop:back", "l")
	if resp.Payload != nil {
		t.Errorf("Expected empty payload when popping empty list, got %s", resp.Payload)
	}
	wantBoolean(t, call(t, e, "exists", "l"), true)

	mustFail(t, e, engine.ErrCInvalidArgument, "list:index", "l", "0")
	mustFail(t, e, engine.ErrCKeyNotFound, "list:pop:front", "nonexistent-key")

	// range is clamped instead of rejected
	call(t, e, "list:push:back", "l", "x", "y")
	wantValue(t, call(t, e, "list:range", "l", "-100", "100"),
		value.NewList([][]byte{[]byte("x"), []byte("y")}))
}

func testSetOps(t *testing.T, e engine.IEngine) {
	defer e.Close()

	wantInteger(t, call(t, e, "set:add", "s1", "a", "b", "c"), 3)
	wantInteger(t, call(t, e, "set:add", "s1", "b", "d"), 1)
	wantInteger(t, call(t, e, "set:card", "s1"), 4)

	wantBoolean(t, call(t, e, "set:has", "s1", "a"), true)
	wantBoolean(t, call(t, e, "set:has", "s1", "z"), false)

	wantInteger(t, call(t, e, "set:remove", "s1", "a", "z"), 1)
	wantInteger(t, call(t, e, "set:card", "s1"), 3)

	call(t, e, "set:add", "s2", "c", "e")

	// union/inter aggregate one key at a time; absent keys are empty sets
	wantValue(t, call(t, e, "set:union", "s1", "s2", "nonexistent-key"),
		value.NewList([][]byte{[]byte("b"), []byte("c"), []byte("d"), []byte("e")}))
	wantValue(t, call(t, e, "set:inter", "s1", "s2"),
		value.NewList([][]byte{[]byte("c")}))
	wantValue(t, call(t, e, "set:inter", "s1", "nonexistent-key"),
		value.NewList(nil))

	mustFail(t, e, engine.ErrCKeyNotFound, "set:card", "nonexistent-key")
	call(t, e, "set", "blob", "x")
	mustFail(t, e, engine.ErrCTypeMismatch, "set:add", "blob", "a")
	mustFail(t, e, engine.ErrCTypeMismatch, "set:union", "s1", "blob")
}

func testMapOps(t *testing.T, e engine.IEngine) {
	defer e.Close()

	wantInteger(t, call(t, e, "map:set", "m", "f1", "v1", "f2", "v2"), 2)
	wantInteger(t, call(t, e, "map:set", "m", "f1", "v1b"), 0)
	wantValue(t, call(t, e, "map:get", "m", "f1"), value.NewBytes([]byte("v1b")))
	wantInteger(t, call(t, e, "map:card", "m"), 2)
	wantValue(t, call(t, e, "map:fields", "m"),
		value.NewList([][]byte{[]byte("f1"), []byte("f2")}))

	wantInteger(t, call(t, e, "map:del", "m", "f2", "missing"), 1)
	wantInteger(t, call(t, e, "map:card", "m"), 1)

	// a missing field reports not-found, like a missing key
	mustFail(t, e, engine.ErrCKeyNotFound, "map:get", "m", "f2")
	mustFail(t, e, engine.ErrCKeyNotFound, "map:get", "nonexistent-key", "f")
	mustFail(t, e, engine.ErrCInvalidArgument, "map:set", "m", "odd-args", "v", "dangling")

	call(t, e, "set", "blob", "x")
	mustFail(t, e, engine.ErrCTypeMismatch, "map:fields", "blob")
}

func testRenameKeys(t *testing.T, e engine.IEngine) {
	defer e.Close()

	call(t, e, "set", "user:1", "alice")
	call(t, e, "set", "user:2", "bob")
	call(t, e, "set", "other", "x")

	resp := call(t, e, "keys", "", "user:")
	l, _ := resp.Payload.ListRef()
	if len(*l) != 2 {
		t.Errorf("Expected 2 keys with prefix user:, got %d", len(*l))
	}

	call(t, e, "rename", "user:1", "user:3")
	wantBoolean(t, call(t, e, "exists", "user:1"), false)
	wantValue(t, call(t, e, "get", "user:3"), value.NewBytes([]byte("alice")))

	mustFail(t, e, engine.ErrCKeyNotFound, "rename", "nonexistent-key", "dest")
}

func testKeyExpiry(t *testing.T, e engine.IEngine) {
	defer e.Close()

	call(t, e, "set", "short-lived", "v")
	call(t, e, "expire", "short-lived", "50")

	resp := call(t, e, "ttl", "short-lived")
	n, _ := resp.Payload.IntegerRef()
	if *n < 0 || *n > 50 {
		t.Errorf("Expected remaining ttl in [0, 50]ms, got %d", *n)
	}

	wantBoolean(t, call(t, e, "exists", "short-lived"), true)
	time.Sleep(100 * time.Millisecond)
	wantBoolean(t, call(t, e, "exists", "short-lived"), false)

	// persist disarms a pending deadline
	call(t, e, "set", "kept", "v")
	call(t, e, "expire", "kept", "50")
	wantBoolean(t, call(t, e, "persist", "kept"), true)
	wantInteger(t, call(t, e, "ttl", "kept"), -1)
	time.Sleep(100 * time.Millisecond)
	wantBoolean(t, call(t, e, "exists", "kept"), true)

	// a plain set clears the previous deadline
	call(t, e, "set", "reset", "v")
	call(t, e, "expire", "reset", "50")
	call(t, e, "set", "reset", "v2")
	time.Sleep(100 * time.Millisecond)
	wantBoolean(t, call(t, e, "exists", "reset"), true)

	mustFail(t, e, engine.ErrCInvalidArgument, "expire", "kept", "0")
	mustFail(t, e, engine.ErrCKeyNotFound, "expire", "nonexistent-key", "100")
}

func testWait(t *testing.T, e engine.IEngine) {
	defer e.Close()

	// zero timeout: a pure snapshot check, never blocks
	resp := dispatch(t, e, &engine.Request{
		Op: "wait", Key: "flag", Args: rawArgs("exists"), Timeout: 0,
	})
	if resp.Outcome != watch.OutcomeTimedOut {
		t.Errorf("Expected immediate timeout for unsatisfied zero-timeout wait, got %s", resp.Outcome)
	}

	call(t, e, "set", "flag", "v")
	resp = dispatch(t, e, &engine.Request{
		Op: "wait", Key: "flag", Args: rawArgs("exists"), Timeout: 0,
	})
	if resp.Outcome != watch.OutcomeSatisfied {
		t.Errorf("Expected satisfied zero-timeout wait, got %s", resp.Outcome)
	}
	wantValue(t, resp, value.NewBytes([]byte("v")))

	// a blocked waiter is woken by the write that satisfies it
	done := make(chan *engine.Response, 1)
	go func() {
		r, err := e.Dispatch(context.Background(), &engine.Request{
			Op: "wait", Key: "handoff", Args: rawArgs("exists"), Timeout: 2 * time.Second,
		})
		if err != nil {
			t.Errorf("Expected wait to succeed, got %v", err)
		}
		done <- r
	}()

	time.Sleep(20 * time.Millisecond)
	call(t, e, "set", "handoff", "payload")

	select {
	case r := <-done:
		if r.Outcome != watch.OutcomeSatisfied {
			t.Errorf("Expected satisfied wait, got %s", r.Outcome)
		}
		wantValue(t, r, value.NewBytes([]byte("payload")))
	case <-time.After(2 * time.Second):
		t.Fatal("Expected waiter to be woken by set")
	}

	// "changed" anchors on the current state
	go func() {
		r, _ := e.Dispatch(context.Background(), &engine.Request{
			Op: "wait", Key: "handoff", Args: rawArgs("changed"), Timeout: 2 * time.Second,
		})
		done <- r
	}()
	time.Sleep(20 * time.Millisecond)
	call(t, e, "delete", "handoff")

	select {
	case r := <-done:
		if r.Outcome != watch.OutcomeSatisfied {
			t.Errorf("Expected deletion to satisfy changed-wait, got %s", r.Outcome)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected waiter to be woken by delete")
	}

	// context cancellation resolves as a defined outcome, not an error
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		r, err := e.Dispatch(ctx, &engine.Request{
			Op: "wait", Key: "never", Args: rawArgs("exists"), Timeout: -1,
		})
		if err != nil {
			t.Errorf("Expected cancelled wait to succeed, got %v", err)
		}
		done <- r
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case r := <-done:
		if r.Outcome != watch.OutcomeCancelled {
			t.Errorf("Expected cancelled outcome, got %s", r.Outcome)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected waiter to observe cancellation")
	}

	mustFail(t, e, engine.ErrCInvalidArgument, "wait", "flag", "no-such-condition")
}

func testBadRequests(t *testing.T, e engine.IEngine) {
	defer e.Close()

	mustFail(t, e, engine.ErrCUnknownOperation, "frobnicate", "k")
	mustFail(t, e, engine.ErrCInvalidArgument, "set", "k") // missing value
	mustFail(t, e, engine.ErrCInvalidArgument, "increment:by", "k", "1", "2")
	mustFail(t, e, engine.ErrCInvalidArgument, "increment:by", "k", "NaN-ish")
	mustFail(t, e, engine.ErrCInvalidArgument, "is", "k", "no-such-kind")
}

func testConcurrentIncrements(t *testing.T, e engine.IEngine) {
	defer e.Close()

	const (
		workers    = 16
		iterations = 500
	)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if _, err := e.Dispatch(context.Background(), &engine.Request{
					Op: "increment", Key: "shared-counter",
				}); err != nil {
					t.Errorf("Expected concurrent increment to succeed, got %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	wantValue(t, call(t, e, "get", "shared-counter"), value.NewInteger(workers*iterations))
}

func testRealisticUsage(t *testing.T, e engine.IEngine) {
	defer e.Close()

	// a small session-store style workload mixing the variants
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("session:%d", i)
		call(t, e, "map:set", key, "user", fmt.Sprintf("user-%d", i), "hits", "0")
		call(t, e, "expire", key, "60000")
		call(t, e, "set:add", "sessions:active", fmt.Sprintf("%d", i))
		call(t, e, "increment", "stats:sessions")
	}

	wantInteger(t, call(t, e, "set:card", "sessions:active"), 100)
	wantValue(t, call(t, e, "get", "stats:sessions"), value.NewInteger(100))

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("session:%d", i)
		call(t, e, "delete", key)
		call(t, e, "set:remove", "sessions:active", fmt.Sprintf("%d", i))
		call(t, e, "decrement", "stats:sessions")
	}

	wantInteger(t, call(t, e, "set:card", "sessions:active"), 50)
	wantValue(t, call(t, e, "get", "stats:sessions"), value.NewInteger(50))

	resp := call(t, e, "keys", "", "session:")
	l, _ := resp.Payload.ListRef()
	if len(*l) != 50 {
		t.Errorf("Expected 50 remaining sessions, got %d", len(*l))
	}

	resp = call(t, e, "stats", "")
	if resp.Payload == nil {
		t.Error("Expected stats payload")
	}
}
