package logger

import "go.uber.org/fx"

// Module wires the application slog logger.
var Module = fx.Provide(New)
