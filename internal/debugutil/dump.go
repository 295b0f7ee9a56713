// Package debugutil provides value-internals dump helpers for DEBUG
// OBJECT-style introspection and panic/error diagnostics, adapted from
// the teacher's pkg/fmtt error-chain printer into a value-dump form
// built on the same go-spew dependency.
package debugutil

import (
	"errors"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// dumper is configured once for deterministic, depth-bounded output —
// unbounded spew output on a large container value would itself be a
// memory-reporting footgun.
var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	MaxDepth:                6,
}

// Dump renders v's internal structure for DEBUG OBJECT / crash-report
// style diagnostics. Never parsed by clients; for human eyes only.
func Dump(v any) string {
	return dumper.Sdump(v)
}

// DumpErrorChain renders err and every error it wraps, one per line,
// innermost last — the same chain-walking the teacher's printe.go did
// for HTTP handler errors, ported here for panics recovered at the
// command-dispatch boundary.
func DumpErrorChain(err error) string {
	if err == nil {
		return "<nil>"
	}
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		b.WriteString(e.Error())
		b.WriteByte('\n')
	}
	return b.String()
}
