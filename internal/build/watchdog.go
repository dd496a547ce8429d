package build

import (
	"log/slog"
	"time"
)

// Watchdog arms a timer that calls exit(0) after grace. The caller stops
// the timer once the process is ready to exit on its own. A zero grace
// disables it.
func Watchdog(grace time.Duration, log *slog.Logger, exit func(int)) *time.Timer {
	if grace <= 0 {
		return nil
	}
	return time.AfterFunc(grace, func() {
		log.Warn("Process still alive after build, forcing exit. Some handles were left open.", "grace", grace)
		exit(0)
	})
}
