// Package config parses luminac's command-line flags. It generalizes the
// teacher's manual os.Args walk in cmd/sentra/main.go into a small typed
// Options struct, staying on hand-rolled parsing rather than reaching for a
// flag library — the teacher never does either, so neither do we.
package config

import "fmt"

// Options holds one invocation's fully-parsed flags.
type Options struct {
	Input        string
	Output       string
	Verbose      bool
	IncludePaths []string
	Help         bool
}

// Parse walks args (not including the subcommand word) in the style of the
// teacher's main(): a manual switch over known flag spellings, falling
// through to the first bare word as the positional input path.
func Parse(args []string) (*Options, error) {
	opts := &Options{Output: "a.out"}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			opts.Help = true
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
		case arg == "-o" || arg == "--output":
			val, err := nextValue(args, &i, arg)
			if err != nil {
				return nil, err
			}
			opts.Output = val
		case arg == "-i" || arg == "--includePath":
			val, err := nextValue(args, &i, arg)
			if err != nil {
				return nil, err
			}
			opts.IncludePaths = append(opts.IncludePaths, val)
		case len(arg) > 0 && arg[0] == '-':
			return nil, fmt.Errorf("unknown flag %q", arg)
		default:
			if opts.Input != "" {
				return nil, fmt.Errorf("unexpected extra argument %q", arg)
			}
			opts.Input = arg
		}
	}

	if !opts.Help && opts.Input == "" {
		return nil, fmt.Errorf("no input file given")
	}
	return opts, nil
}

// nextValue consumes the argument following a flag, advancing i in place.
func nextValue(args []string, i *int, flag string) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("flag %s requires a value", flag)
	}
	*i++
	return args[*i], nil
}
