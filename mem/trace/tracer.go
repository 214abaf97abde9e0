// Package trace provides hooks that trace what happens in tag stores.
package trace

import (
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/skewcache/datarecording"
	"github.com/sarchlab/skewcache/mem/cache/tagging"
	"github.com/sarchlab/skewcache/sim/hooking"
)

// TagEventTable is the name of the table that the DB tracer writes into.
const TagEventTable = "tag_events"

// tagEventEntry represents a tag store event in the database
type tagEventEntry struct {
	ID             string
	Seq            uint64
	Store          string
	What           string
	Address        uint64
	Secure         bool
	Hit            bool
	MicrotagReject bool
	SetID          int
	WayID          int
}

type named interface {
	Name() string
}

var eventNames = map[*hooking.HookPos]string{
	tagging.HookPosTagLookup:     "lookup",
	tagging.HookPosTagInsert:     "insert",
	tagging.HookPosTagEvict:      "evict",
	tagging.HookPosTagInvalidate: "invalidate",
}

// decode extracts the event from a hook context. It returns false if the
// context does not come from a tag store.
func decode(ctx hooking.HookCtx) (what, store string, e tagging.TagEvent, ok bool) {
	what, ok = eventNames[ctx.Pos]
	if !ok {
		return "", "", e, false
	}

	e, ok = ctx.Item.(tagging.TagEvent)
	if !ok {
		return "", "", e, false
	}

	if n, isNamed := ctx.Domain.(named); isNamed {
		store = n.Name()
	}

	return what, store, e, true
}

// A tracer is a hook that prints the events of tag stores as text lines.
type tracer struct {
	hooking.LogHookBase

	seq uint64
}

// NewTracer creates a new Tracer.
func NewTracer(logger *log.Logger) hooking.LogHook {
	t := new(tracer)
	t.LogHookBase = hooking.NewLogHookBase(logger)

	return t
}

// Func logs one line per tag store event.
func (t *tracer) Func(ctx hooking.HookCtx) {
	what, store, e, ok := decode(ctx)
	if !ok {
		return
	}

	t.seq++

	domain := "non-secure"
	if e.Secure {
		domain = "secure"
	}

	if ctx.Pos != tagging.HookPosTagLookup {
		t.Printf("%s, %d, %s, 0x%x, %s, [%d][%d]\n",
			what, t.seq, store, e.Address, domain,
			e.Block.SetID, e.Block.WayID)

		return
	}

	switch {
	case e.Hit:
		t.Printf("%s, %d, %s, 0x%x, %s, hit, [%d][%d]\n",
			what, t.seq, store, e.Address, domain,
			e.Block.SetID, e.Block.WayID)
	case e.MicrotagReject:
		t.Printf("%s, %d, %s, 0x%x, %s, miss, microtag\n",
			what, t.seq, store, e.Address, domain)
	default:
		t.Printf("%s, %d, %s, 0x%x, %s, miss\n",
			what, t.seq, store, e.Address, domain)
	}
}

// A dbTracer is a hook that records the events of tag stores into a
// database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder

	seq uint64
}

// NewDBTracer creates a new database-based Tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) hooking.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable(TagEventTable, tagEventEntry{})

	return t
}

// Func inserts one row per tag store event.
func (t *dbTracer) Func(ctx hooking.HookCtx) {
	what, store, e, ok := decode(ctx)
	if !ok {
		return
	}

	t.seq++

	entry := tagEventEntry{
		ID:             xid.New().String(),
		Seq:            t.seq,
		Store:          store,
		What:           what,
		Address:        e.Address,
		Secure:         e.Secure,
		Hit:            e.Hit,
		MicrotagReject: e.MicrotagReject,
		SetID:          -1,
		WayID:          -1,
	}

	if e.Block != nil {
		entry.SetID = e.Block.SetID
		entry.WayID = e.Block.WayID
	}

	t.dataRecorder.InsertData(TagEventTable, entry)
}
