package engine

import (
	"github.com/sirupsen/logrus"
)

func (e *Engine) logEntry() *logrus.Entry {
	entry := e.log.WithComponent("engine")
	if e.sessionID != "" {
		entry = entry.WithField("session_id", e.sessionID)
	}
	return entry
}
