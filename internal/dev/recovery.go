package dev

import (
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/vango-dev/ssg/internal/errors"
	"github.com/vango-dev/ssg/pkg/devgraph"
)

// ErrorRecovery turns request failures into error pages instead of letting
// them take the dev server down. Traces go through the bundler's stack
// fixer so they point at original sources.
type ErrorRecovery struct {
	fixer  devgraph.StackFixer
	reload *ReloadServer
	log    *slog.Logger
}

// NewErrorRecovery creates an error recovery handler. Reload may be nil.
func NewErrorRecovery(fixer devgraph.StackFixer, reload *ReloadServer, log *slog.Logger) *ErrorRecovery {
	if fixer == nil {
		fixer = devgraph.Static(nil)
	}
	return &ErrorRecovery{fixer: fixer, reload: reload, log: log}
}

// Stack returns the fixed-up trace for err. Coded errors include their
// detail and cause.
func (r *ErrorRecovery) Stack(err error, trace []byte) string {
	var b strings.Builder
	var e *errors.Error
	if errors.As(err, &e) {
		b.WriteString(e.FormatCompact())
		if e.Wrapped != nil {
			b.WriteString("\n")
			b.WriteString(e.Wrapped.Error())
		}
	} else {
		b.WriteString(err.Error())
	}
	if len(trace) > 0 {
		b.WriteString("\n\n")
		b.Write(trace)
	}
	return r.fixer.FixStack(b.String())
}

// Fail logs err, notifies browsers and writes a 500 page with the stack.
func (r *ErrorRecovery) Fail(w http.ResponseWriter, req *http.Request, err error, trace []byte) {
	stack := r.Stack(err, trace)
	r.log.Error("Request failed", "path", req.URL.Path, "error", err, "stack", stack)
	if r.reload != nil {
		r.reload.NotifyError(stack)
	}
	r.WritePage(w, http.StatusInternalServerError, "Render Error", stack)
}

// WritePage writes an error page, with the reload client when browsers
// can be notified.
func (r *ErrorRecovery) WritePage(w http.ResponseWriter, status int, title, message string) {
	page := ErrorPage(title, message)
	if r.reload != nil {
		page = InjectClient(page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	io.WriteString(w, page)
}

// Middleware recovers panics from next as error pages.
func (r *ErrorRecovery) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			err, ok := p.(error)
			if !ok {
				err = fmt.Errorf("%v", p)
			}
			r.Fail(w, req, errors.New("E700").WithPath(req.URL.Path).Wrap(err), debug.Stack())
		}()
		next.ServeHTTP(w, req)
	})
}

// ErrorPage returns a minimal HTML page with the message preformatted.
func ErrorPage(title, message string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: system-ui; padding: 40px; background: #1a1a1a; color: #fff;">
<h1 style="color: #ff5555;">%s</h1>
<pre style="white-space: pre-wrap; background: #111; padding: 20px; border-radius: 8px;">%s</pre>
</body>
</html>`, html.EscapeString(title), html.EscapeString(title), html.EscapeString(message))
}
