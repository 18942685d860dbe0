// Package logging configures the process-wide structured logger.
package logging

import (
	"os"
	"path/filepath"

	"github.com/powerman/structlog"
)

// Init sets the key layout of structlog.DefaultLogger. Call once from main
// before any logging.
func Init(level string) {
	structlog.DefaultLogger.
		SetPrefixKeys(
			structlog.KeyApp, structlog.KeyPID, structlog.KeyLevel, structlog.KeyUnit, structlog.KeyTime,
		).
		SetDefaultKeyvals(
			structlog.KeyApp, filepath.Base(os.Args[0]),
			structlog.KeySource, structlog.Auto,
		).
		SetSuffixKeys(structlog.KeyStack, structlog.KeySource).
		SetKeysFormat(map[string]string{
			structlog.KeyTime:   " %[2]s",
			structlog.KeySource: " %6[2]s",
			structlog.KeyUnit:   " %6[2]s",
		})
	if level != "" {
		structlog.DefaultLogger.SetLogLevel(structlog.ParseLevel(level))
	}
}
