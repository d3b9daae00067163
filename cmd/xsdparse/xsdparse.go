// Command xsdparse parses XML Schema documents and prints the parsed
// model as JSON or YAML.
//
//	xsdparse [-ns xmlns] [-format json|yaml] [-o file] [-config file] [-order | -imports] [-type name] file.xsd ...
//
// By default, xsdparse writes one document per schema file to standard
// output. With -order, it writes the names of the types in each schema
// in dependency order; with -imports, the schemas each file imports.
// A YAML file given with -config may set targetNamespace, format,
// output, indent and types; command-line flags take precedence.
package main

import (
	"log"
	"os"

	"github.com/CognitoIQ/go-xsd/xsddump"
)

func main() {
	log.SetFlags(0)
	var cfg xsddump.Config
	cfg.Option(xsddump.DefaultOptions...)
	cfg.Option(xsddump.LogOutput(log.New(os.Stderr, "", 0)))
	if err := cfg.GenCLI(os.Args[1:]...); err != nil {
		log.Fatal(err)
	}
}
