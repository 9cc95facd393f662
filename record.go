// FILE: lixenwraith/logtree/record.go
package logtree

import (
	"time"

	"github.com/lixenwraith/logtree/formatter"
)

// Record is one emitted log event. It is built once per emitting call and
// shared read-only by every node and transport that receives it.
type Record struct {
	Logger    *Logger // originating node
	Level     Level
	Timestamp time.Time // wall clock, millisecond resolution
	Args      []any
}

func newRecord(l *Logger, level Level, args []any) Record {
	return Record{
		Logger:    l,
		Level:     level,
		Timestamp: time.UnixMilli(time.Now().UnixMilli()),
		Args:      args,
	}
}

// entry converts the record for the formatter
func (r Record) entry() formatter.Entry {
	e := formatter.Entry{
		Level: int(r.Level),
		Time:  r.Timestamp,
		Args:  r.Args,
	}
	if r.Logger != nil {
		e.Name = r.Logger.Name()
	}
	return e
}

// bufferedRecord is a held record together with its forceful flag
type bufferedRecord struct {
	record   Record
	forceful bool
}
