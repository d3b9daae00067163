// Package commandline contains helper types for collecting
// command-line arguments.
package commandline // import "github.com/CognitoIQ/go-xsd/internal/commandline"

import "strings"

// The Strings type can be used to collect multiple command-line options,
// in the order provided.
type Strings []string

func (s *Strings) String() string {
	return strings.Join(*s, ",")
}

// Set appends val, so that a flag of type Strings may be repeated.
func (s *Strings) Set(val string) error {
	*s = append(*s, val)
	return nil
}
