package tftp

import (
	log "github.com/sirupsen/logrus"
)

// logger is the package-level logger used by the Engine and Facade. Callers
// embedding this client may call SetLogger to redirect output, the same way
// the teacher stack exposes package-level logrus control.
var logger = log.StandardLogger()

// SetLogger replaces the logger used for all subsequent transfers.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}
