package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
)

// handlerSlot boxes the installed handler; atomic.Pointer cannot hold an
// interface directly.
type handlerSlot struct{ h ErrorHandler }

var installed atomic.Pointer[handlerSlot]

func init() {
	installed.Store(&handlerSlot{h: &LogHandler{}})
}

// SetHandler installs h as the process-wide receiver of reported errors and
// returns the handler it replaces. Nil installs a LogHandler on
// slog.Default().
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = &LogHandler{}
	}
	return installed.Swap(&handlerSlot{h: h}).h
}

// Handler returns the installed handler.
func Handler() ErrorHandler {
	return installed.Load().h
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Report hands a failed framework operation to the installed handler.
func Report(err *WeftError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleError(err)
}

// ReportPanic hands a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandlePanic(err)
}

// ReportCycleError hands an abandoned render cycle to the installed handler.
func ReportCycleError(err *CycleError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	Handler().HandleCycleError(err)
}

// NewPanicError wraps a value recovered during op. A ConsistencyError names
// the operation whose invariant broke, and that name wins over op.
func NewPanicError(op string, r any) *PanicError {
	if ce, ok := r.(*ConsistencyError); ok && ce.Op != "" {
		op = ce.Op
	}
	return &PanicError{Op: op, Value: r, StackTrace: CaptureStack(), Timestamp: time.Now()}
}

// Recover reports a panic in op and lets the caller carry on. Use it
// directly in a defer statement.
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(NewPanicError(op, r))
	}
}

// RecoverWithCallback is Recover followed by callback with the panic value,
// for callers that turn the panic into a result.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		ReportPanic(NewPanicError(op, r))
		if callback != nil {
			callback(r)
		}
	}
}

const pkgPrefix = "github.com/go-drift/weft/pkg/errors."

// recoveryFrames are the helpers that sit between a panic and CaptureStack.
var recoveryFrames = map[string]bool{
	pkgPrefix + "CaptureStack":        true,
	pkgPrefix + "NewPanicError":       true,
	pkgPrefix + "Recover":             true,
	pkgPrefix + "RecoverWithCallback": true,
}

// CaptureStack returns the calling goroutine's stack as "function\n\tfile:line"
// entries. Runtime frames and the recovery helpers are left out, so a stack
// taken while recovering starts at the code that panicked.
func CaptureStack() string {
	var pcs [48]uintptr
	n := runtime.Callers(1, pcs[:])
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, "runtime.") && !recoveryFrames[f.Function] {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		}
		if !more {
			break
		}
	}
	return sb.String()
}
