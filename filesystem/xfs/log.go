package xfs

import "github.com/sirupsen/logrus"

// log is the package-level logger. The original implementation this core
// is modeled after used a module-level logging.getLogger(__name__), off by
// default (level CRITICAL) and overridable by an environment variable; here
// the caller wires verbosity directly with SetLogger instead of env vars.
var log logrus.FieldLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}()

// SetLogger replaces the package logger, e.g. with a *logrus.Entry carrying
// request-scoped fields, or a logger at DebugLevel to trace B+tree descent,
// skipped directory blocks, and inode cache evictions.
func SetLogger(l logrus.FieldLogger) {
	log = l
}
