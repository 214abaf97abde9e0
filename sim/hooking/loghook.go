package hooking

import (
	"log"
)

// A LogHook is a hook that is responsible for recording information from the
// hookable objects in text form.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase creates a LogHookBase that writes with the given logger.
// A nil logger writes to the standard logger.
func NewLogHookBase(logger *log.Logger) LogHookBase {
	if logger == nil {
		logger = log.Default()
	}

	return LogHookBase{Logger: logger}
}
