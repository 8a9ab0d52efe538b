package engine

// OpID is the wire-stable identifier of a feature operation. Names are
// the canonical lookup key for dispatch; the byte ids exist so that a
// protocol layer can transmit operations compactly.
type OpID uint8

const (
	// numeric
	OpIncrement   OpID = 0
	OpDecrement   OpID = 1
	OpIncrementBy OpID = 2
	OpDecrementBy OpID = 3
	OpCompareSet  OpID = 4

	// generic / existence
	OpSet     OpID = 10
	OpGet     OpID = 11
	OpDelete  OpID = 12
	OpExists  OpID = 13
	OpIs      OpID = 14
	OpRename  OpID = 15
	OpType    OpID = 16
	OpSetNX   OpID = 17
	OpExpire  OpID = 18
	OpPersist OpID = 19

	// bytes / string
	OpAppend   OpID = 20
	OpLength   OpID = 21
	OpKeys     OpID = 22
	OpStrRange OpID = 23
	OpTTL      OpID = 24

	// list
	OpListPushFront OpID = 30
	OpListPushBack  OpID = 31
	OpListPopFront  OpID = 32
	OpListPopBack   OpID = 33
	OpListIndex     OpID = 34
	OpListSet       OpID = 35
	OpListRange     OpID = 36

	// set
	OpSetAdd    OpID = 40
	OpSetRemove OpID = 41
	OpSetHas    OpID = 42
	OpSetCard   OpID = 43
	OpSetUnion  OpID = 44
	OpSetInter  OpID = 45

	// map
	OpMapGet    OpID = 50
	OpMapSet    OpID = 51
	OpMapDel    OpID = 52
	OpMapFields OpID = 53
	OpMapCard   OpID = 54

	// diagnostics
	OpEcho  OpID = 100
	OpStats OpID = 101

	// blocking
	OpWait OpID = 110
)

// Name returns the canonical operation name.
func (id OpID) Name() string {
	if n, ok := opNames[id]; ok {
		return n
	}
	return "unknown"
}

func (id OpID) String() string {
	return id.Name()
}

var opNames = map[OpID]string{
	OpIncrement:     "increment",
	OpDecrement:     "decrement",
	OpIncrementBy:   "increment:by",
	OpDecrementBy:   "decrement:by",
	OpCompareSet:    "cas",
	OpSet:           "set",
	OpGet:           "get",
	OpDelete:        "delete",
	OpExists:        "exists",
	OpIs:            "is",
	OpRename:        "rename",
	OpType:          "type",
	OpSetNX:         "set:nx",
	OpExpire:        "expire",
	OpPersist:       "persist",
	OpTTL:           "ttl",
	OpAppend:        "append",
	OpLength:        "length",
	OpKeys:          "keys",
	OpStrRange:      "str:range",
	OpListPushFront: "list:push:front",
	OpListPushBack:  "list:push:back",
	OpListPopFront:  "list:pop:front",
	OpListPopBack:   "list:pop:back",
	OpListIndex:     "list:index",
	OpListSet:       "list:set",
	OpListRange:     "list:range",
	OpSetAdd:        "set:add",
	OpSetRemove:     "set:remove",
	OpSetHas:        "set:has",
	OpSetCard:       "set:card",
	OpSetUnion:      "set:union",
	OpSetInter:      "set:inter",
	OpMapGet:        "map:get",
	OpMapSet:        "map:set",
	OpMapDel:        "map:del",
	OpMapFields:     "map:fields",
	OpMapCard:       "map:card",
	OpEcho:          "echo",
	OpStats:         "stats",
	OpWait:          "wait",
}

// opIDsByName is the inverse of opNames, built once at init.
var opIDsByName = func() map[string]OpID {
	m := make(map[string]OpID, len(opNames))
	for id, name := range opNames {
		m[name] = id
	}
	return m
}()

// OpIDFromString resolves an operation name. The boolean return value
// indicates whether the name is known.
func OpIDFromString(s string) (OpID, bool) {
	id, ok := opIDsByName[s]
	return id, ok
}
