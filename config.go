package depot

import "go.uber.org/zap"

// Config holds package-wide settings shared by every storage.
var Config config = config{logger: zap.NewNop()}

type config struct {
	logger *zap.Logger
}

// SetLogger replaces the logger used by storages and system drivers. A nil logger
// disables logging.
func (c *config) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
}

func (c *config) Logger() *zap.Logger {
	return c.logger
}
