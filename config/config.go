/*
	Helpers for loading contextual config.

	Config here means "things that are the operator's concerns, not a
	caller's": which ref a relative path promotes to, and how loud the
	library should log. As in the teacher's own config package, this is
	read once by CLI wiring at process start and threaded in explicitly —
	library code never reads an environment variable itself, since doing so
	would be wrong the moment gitjfs is driven remotely rather than in the
	same process as its caller.
*/
package config

import (
	"os"

	"github.com/sirupsen/logrus"

	"go.polydawn.net/gitjfs/rev"
)

// GetDefaultRef returns the GITJFS_DEFAULT_REF environment variable, or
// rev.Default ("refs/heads/main") when it is unset. Nothing in this module
// calls it: relative paths are always promoted to absolute with
// rev.Default (gpath.Path.ToAbsolutePath), whatever the variable says.
func GetDefaultRef() string {
	if v := os.Getenv("GITJFS_DEFAULT_REF"); v != "" {
		return v
	}
	return rev.Default
}

// GetLogLevel returns the logrus level this process should log at. The
// default value is logrus.InfoLevel; this can be overridden by the
// GITJFS_LOG_LEVEL environment variable (any value logrus.ParseLevel
// accepts, e.g. "debug", "warn"). An unparseable value falls back to the
// default rather than failing process startup.
func GetLogLevel() logrus.Level {
	v := os.Getenv("GITJFS_LOG_LEVEL")
	if v == "" {
		return logrus.InfoLevel
	}
	level, err := logrus.ParseLevel(v)
	if err != nil {
		logrus.WithError(err).Warnf("gitjfs: ignoring unparseable GITJFS_LOG_LEVEL %q", v)
		return logrus.InfoLevel
	}
	return level
}
