package xsddump

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CognitoIQ/go-xsd/internal/commandline"
	"github.com/CognitoIQ/go-xsd/xsd"
)

// Settings read from the file given with -config. Command-line flags
// take precedence.
type settings struct {
	TargetNamespace string   `yaml:"targetNamespace"`
	Format          string   `yaml:"format"`
	Output          string   `yaml:"output"`
	Indent          *bool    `yaml:"indent"`
	Types           []string `yaml:"types"`
}

func loadSettings(filename string) (*settings, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var s settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &s, nil
}

func (s *settings) options() []Option {
	var opts []Option
	if s.TargetNamespace != "" {
		opts = append(opts, TargetNamespace(s.TargetNamespace))
	}
	if s.Format != "" {
		opts = append(opts, Format(s.Format))
	}
	if s.Indent != nil {
		opts = append(opts, Indent(*s.Indent))
	}
	if len(s.Types) > 0 {
		opts = append(opts, OnlyTypes(s.Types...))
	}
	return opts
}

// GenCLI parses the schema files named in arguments and writes their
// trees, their type order or their imports. GenCLI is meant to be
// called as part of a command, and can be used to change the behavior
// of the xsdparse command in ways that its command-line arguments do
// not allow. The arguments are the same as those passed to the
// xsdparse command.
func (cfg *Config) GenCLI(arguments ...string) error {
	var (
		types      commandline.Strings
		fs         = flag.NewFlagSet("xsdparse", flag.ExitOnError)
		output     = fs.String("o", "", "name of the output file (default standard output)")
		format     = fs.String("format", "", "output format, json or yaml")
		targetNS   = fs.String("ns", "", "target namespace to parse the schemas with")
		configFile = fs.String("config", "", "YAML file with default settings")
		order      = fs.Bool("order", false, "print the names of types in dependency order")
		imports    = fs.Bool("imports", false, "print the schemas imported by each file")
		verbose    = fs.Bool("v", false, "print verbose output")
		debug      = fs.Bool("vv", false, "print debug output")
	)
	fs.Var(&types, "type", "only dump the named type (can be used multiple times)")
	fs.Parse(arguments)
	if fs.NArg() == 0 {
		return errors.New("Usage: xsdparse [-ns xmlns] [-format json|yaml] [-o file] [-config file] [-order | -imports] [-type name] file.xsd ...")
	}
	if *order && *imports {
		return errors.New("-order and -imports cannot be used together")
	}

	if *configFile != "" {
		s, err := loadSettings(*configFile)
		if err != nil {
			return err
		}
		cfg.Option(s.options()...)
		if *output == "" {
			*output = s.Output
		}
	}
	if *debug {
		cfg.Option(LogLevel(5))
	} else if *verbose {
		cfg.Option(LogLevel(1))
	}
	if *targetNS != "" {
		cfg.Option(TargetNamespace(*targetNS))
	}
	if *format != "" {
		cfg.Option(Format(*format))
	}
	if len(types) > 0 {
		cfg.Option(OnlyTypes(types...))
	}

	// The output file is only created once every schema has parsed.
	var values []interface{}
	for _, filename := range fs.Args() {
		doc, err := cfg.parseFile(filename)
		if err != nil {
			return err
		}
		switch {
		case *order:
			values = append(values, cfg.typeOrder(doc))
		case *imports:
			values = append(values, Convert(doc).importList())
		default:
			values = append(values, cfg.Tree(doc))
		}
	}

	if *output == "" {
		return cfg.encodeAll(os.Stdout, values)
	}
	file, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := cfg.encodeAll(file, values); err != nil {
		file.Close()
		os.Remove(*output)
		return err
	}
	return file.Close()
}

func (cfg *Config) encodeAll(w io.Writer, values []interface{}) error {
	enc, err := cfg.NewEncoder(w)
	if err != nil {
		return err
	}
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return enc.Close()
}

func (cfg *Config) parseFile(filename string) (*xsd.Document, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg.logf("xsdparse: parsing %s", filename)
	doc, err := cfg.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

func (cfg *Config) typeOrder(doc *xsd.Document) []string {
	if doc.Schema == nil {
		return []string{}
	}
	return doc.Schema.TypeOrderFunc(func(typ, dep string) {
		cfg.logf("xsdparse: %s and %s refer to each other, %s comes first", typ, dep, typ)
	})
}

func (d *Document) importList() []Import {
	if d.Schema == nil || d.Schema.Imports == nil {
		return []Import{}
	}
	return d.Schema.Imports
}
