// Package flagx picks single flags out of the command line before the full
// flag set is parsed. Config loaders use it to find -c (JSON file) and -e
// (.env file) without tripping over each other's flags.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// FilterArgs keeps the flags named in names, with their values, and drops
// everything else. It understands "-f value" and "-f=value"; a leading
// double dash is equivalent to a single one. A value that starts with a dash
// is never consumed.
func FilterArgs(args []string, names ...string) []string {
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[strings.TrimLeft(n, "-")] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, _, inline := strings.Cut(args[i], "=")
		if !strings.HasPrefix(name, "-") || !allowed[strings.TrimLeft(name, "-")] {
			continue
		}
		out = append(out, args[i])
		if !inline && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}

// Value returns the value of the last occurrence of any of names in args,
// or "" when none is set.
func Value(args []string, names ...string) string {
	var v string
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&v, strings.TrimLeft(n, "-"), "", "")
	}
	_ = fs.Parse(FilterArgs(args, names...))
	return v
}

// ConfigFile returns the JSON config path given with -c or -config.
func ConfigFile() string {
	return Value(os.Args[1:], "-c", "-config")
}

// EnvFile returns the .env path given with -e or -env.
func EnvFile() string {
	return Value(os.Args[1:], "-e", "-env")
}
