package kit

import "go.uber.org/zap"

// NewLogger builds the production logger every component shares. Level is a
// zap level string ("debug", "info", ...); anything unparseable means info.
func NewLogger(service, level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.InitialFields = map[string]any{"service": service}

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}

	l, _ := cfg.Build()
	return l
}
