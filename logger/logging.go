// Package logger wires up the process-wide structured logger used by every
// component instead of fmt.Println. SSH_DEBUG=true (§6) lowers the level
// to DEBUG, which makes the SSH dial path's per-profile dial attempts
// visible; the profile that connects is logged at INFO either way.
package logger

import (
	"os"

	"github.com/netauto/sessioncore/schema"
	"github.com/op/go-logging"
)

// Log is the shared logger instance, injected into components via a field
// rather than looked up mid-call.
var Log schema.Logger

// Debug reports whether SSH_DEBUG=true was set at process start.
var Debug bool

func init() {
	format := logging.MustStringFormatter(
		`%{color}%{time:15:04:05.000} %{shortfile} %{shortfunc} ▶ %{level:.4s} %{id:03x}%{color:reset} %{message}`,
	)

	log := logging.MustGetLogger("sessioncore")
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	backendFormatter := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(backendFormatter)

	Debug = os.Getenv("SSH_DEBUG") == "true"
	if Debug {
		leveled.SetLevel(logging.DEBUG, "")
	} else {
		leveled.SetLevel(logging.INFO, "")
	}
	logging.SetBackend(leveled)

	Log = log
}
