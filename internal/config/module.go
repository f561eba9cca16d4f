package config

import "go.uber.org/fx"

// Module provides *Config loaded from file, environment and flags.
var Module = fx.Provide(Load)
