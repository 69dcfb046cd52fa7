package logger

import (
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

var (
	auditMu  sync.Mutex
	auditLog *log.Logger
)

// SetAuditWriter directs user event records (submissions, chapter moves, resizes) to w.
// A nil writer disables the audit trail.
func SetAuditWriter(w io.Writer) {
	auditMu.Lock()
	defer auditMu.Unlock()
	if w == nil {
		auditLog = nil
		return
	}
	auditLog = log.New(w, "", log.LstdFlags)
}

// AuditEnabled reports whether an audit writer is installed.
func AuditEnabled() bool {
	auditMu.Lock()
	defer auditMu.Unlock()
	return auditLog != nil
}

// Audit writes one line: "[EVENT][kind][session] k=v k=v". Keys are sorted so lines diff cleanly.
func Audit(kind, session string, fields map[string]string) {
	auditMu.Lock()
	l := auditLog
	auditMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[EVENT]")
	if kind != "" {
		b.WriteString("[")
		b.WriteString(kind)
		b.WriteString("]")
	}
	if session != "" {
		b.WriteString("[")
		b.WriteString(session)
		b.WriteString("]")
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(quoteIfNeeded(fields[k]))
	}
	l.Print(b.String())
}

// quoteIfNeeded quotes values holding separators or control characters so an event stays on one line.
func quoteIfNeeded(v string) string {
	if v == "" || strings.ContainsAny(v, " \"=\\") || strings.IndexFunc(v, unicode.IsControl) >= 0 {
		return strconv.Quote(v)
	}
	return v
}
