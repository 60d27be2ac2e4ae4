package engine

import (
	"strings"

	"github.com/google/uuid"
)

func newSessionID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	if len(raw) > 12 {
		return raw[:12]
	}
	return raw
}
