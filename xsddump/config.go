package xsddump

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/CognitoIQ/go-xsd/xsd"
)

// A Config holds settings for parsing schema documents and encoding
// their trees.
type Config struct {
	logger   Logger
	loglevel int
	targetNS string
	format   string
	indent   bool
	// if not empty, only these types are dumped
	types  []string
	parser xsd.Config
}

func (cfg *Config) logf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 0 {
		cfg.logger.Printf(format, v...)
	}
}

// An Option is used to customize a Config.
type Option func(*Config) Option

// DefaultOptions are used by the xsdparse command.
var DefaultOptions = []Option{
	Format("json"),
	Indent(true),
}

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
// debug information from the parser and the encoder.
// The Logger interface is implemented by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// LogOutput specifies an optional Logger for warnings and debug
// information.
func LogOutput(l Logger) Option {
	return func(cfg *Config) Option {
		prev := cfg.logger
		cfg.logger = l
		cfg.parser.Option(xsd.LogOutput(l))
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
		cfg.parser.Option(xsd.LogLevel(level))
		return LogLevel(prev)
	}
}

// TargetNamespace sets the target namespace the schemas are parsed
// with, overriding their targetNamespace attribute.
func TargetNamespace(ns string) Option {
	return func(cfg *Config) Option {
		prev := cfg.targetNS
		cfg.targetNS = ns
		cfg.parser.Option(xsd.TargetNamespace(ns))
		return TargetNamespace(prev)
	}
}

// Format selects the output encoding, "json" or "yaml".
func Format(format string) Option {
	return func(cfg *Config) Option {
		prev := cfg.format
		cfg.format = format
		return Format(prev)
	}
}

// Indent selects indented JSON output. YAML output is always
// indented.
func Indent(indent bool) Option {
	return func(cfg *Config) Option {
		prev := cfg.indent
		cfg.indent = indent
		return Indent(prev)
	}
}

// OnlyTypes restricts the dumped types to the named ones. Elements
// and groups are still dumped in full.
func OnlyTypes(names ...string) Option {
	return func(cfg *Config) Option {
		prev := cfg.types
		cfg.types = names
		return OnlyTypes(prev...)
	}
}

// An Encoder writes a stream of values in the configured format.
// Values after the first are separated by a newline in JSON, and by
// a document separator in YAML.
type Encoder struct {
	json *json.Encoder
	yaml *yaml.Encoder
}

// NewEncoder returns an Encoder writing to w.
func (cfg *Config) NewEncoder(w io.Writer) (*Encoder, error) {
	switch cfg.format {
	case "", "json":
		enc := json.NewEncoder(w)
		if cfg.indent {
			enc.SetIndent("", "  ")
		}
		return &Encoder{json: enc}, nil
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &Encoder{yaml: enc}, nil
	}
	return nil, fmt.Errorf("xsddump: unknown output format %q", cfg.format)
}

// Encode writes v to the stream.
func (e *Encoder) Encode(v interface{}) error {
	if e.json != nil {
		return e.json.Encode(v)
	}
	return e.yaml.Encode(v)
}

// Close flushes buffered output.
func (e *Encoder) Close() error {
	if e.yaml != nil {
		return e.yaml.Close()
	}
	return nil
}

// Tree converts doc, keeping only the types selected with OnlyTypes.
func (cfg *Config) Tree(doc *xsd.Document) *Document {
	tree := Convert(doc)
	if tree.Schema == nil || len(cfg.types) == 0 {
		return tree
	}
	keep := make(map[string]bool, len(cfg.types))
	for _, name := range cfg.types {
		keep[name] = true
	}
	selected := tree.Schema.Types[:0]
	for _, n := range tree.Schema.Types {
		if keep[n.Name] {
			selected = append(selected, n)
		} else {
			cfg.logf("xsddump: leaving out type %s", n.Name)
		}
	}
	tree.Schema.Types = selected
	return tree
}

// Encode writes the tree form of doc to w.
func (cfg *Config) Encode(w io.Writer, doc *xsd.Document) error {
	enc, err := cfg.NewEncoder(w)
	if err != nil {
		return err
	}
	if err := enc.Encode(cfg.Tree(doc)); err != nil {
		return err
	}
	return enc.Close()
}
