package xsd

// A Config holds settings that affect how schema documents are parsed.
// The zero value is ready to use.
type Config struct {
	logger   Logger
	loglevel int
	targetNS string
}

func (cfg *Config) logf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 0 {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) debugf(format string, v ...interface{}) {
	if cfg.debugging() {
		cfg.logger.Printf(format, v...)
	}
}

func (cfg *Config) debugging() bool {
	return cfg.logger != nil && cfg.loglevel > 3
}

// An Option is used to customize a Config.
type Option func(*Config) Option

// The Option method is used to configure an existing configuration.
// The return value of the Option method can be used to revert the
// final option to its previous setting.
func (cfg *Config) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(cfg)
	}
	return previous
}

// Types implementing the Logger interface can receive
// debug information from the parser.
// The Logger interface is implemented by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// LogOutput specifies an optional Logger for information about
// skipped content and debug traces of the parser.
func LogOutput(l Logger) Option {
	return func(cfg *Config) Option {
		prev := cfg.logger
		cfg.logger = l
		return LogOutput(prev)
	}
}

// LogLevel sets the verbosity of messages sent to the log
// configured with the LogOutput option. The level parameter should
// be a positive integer between 1 and 5, with 5 providing the greatest
// verbosity.
func LogLevel(level int) Option {
	return func(cfg *Config) Option {
		prev := cfg.loglevel
		cfg.loglevel = level
		return LogLevel(prev)
	}
}

// TargetNamespace sets the namespace that unprefixed QNames in the
// schema expand to. If it is not set, the targetNamespace attribute
// of the <schema> element is used.
func TargetNamespace(ns string) Option {
	return func(cfg *Config) Option {
		prev := cfg.targetNS
		cfg.targetNS = ns
		return TargetNamespace(prev)
	}
}
