package common

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// crashLogDir is where crash reports land. Set once at startup via
// InstallCrashHandler.
var crashLogDir = "./logs"

// InstallCrashHandler prepares the crash report directory. Call early
// in main, before anything that can panic.
func InstallCrashHandler(logDir string) {
	if logDir != "" {
		crashLogDir = logDir
	}
	if err := os.MkdirAll(crashLogDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "crash handler: cannot create %s: %v\n", crashLogDir, err)
	}
}

// WriteCrashFile dumps a crash report for an unrecovered panic and
// returns the report path. Falls back to stderr when the file cannot
// be written; crash reporting must never panic itself.
func WriteCrashFile(panicVal interface{}, stackTrace string) string {
	path := filepath.Join(crashLogDir, fmt.Sprintf("bursa-crash-%s.log", time.Now().Format("2006-01-02T15-04-05")))

	var report strings.Builder
	fmt.Fprintf(&report, "bursa crash report\n")
	fmt.Fprintf(&report, "time: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&report, "version: %s\n", GetFullVersion())
	fmt.Fprintf(&report, "runtime: %s %s/%s, %d goroutines\n\n",
		runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.NumGoroutine())

	fmt.Fprintf(&report, "panic: %v\n\n%s\n", panicVal, stackTrace)

	fmt.Fprintf(&report, "all goroutines:\n%s\n", allGoroutineStacks())

	if err := os.WriteFile(path, []byte(report.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "crash handler: cannot write %s: %v\n%s", path, err, report.String())
		return ""
	}

	fmt.Fprintf(os.Stderr, "fatal panic: %v\ncrash report: %s\n", panicVal, path)
	return path
}

// GetStackTrace returns the current goroutine's stack.
func GetStackTrace() string {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// allGoroutineStacks captures every goroutine's stack, growing the
// buffer until it fits (capped at 16MB).
func allGoroutineStacks() string {
	buf := make([]byte, 64*1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) || len(buf) >= 16*1024*1024 {
			return string(buf[:n])
		}
		buf = make([]byte, len(buf)*2)
	}
}
