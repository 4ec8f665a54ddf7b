// Package flagx lets several loaders share os.Args: each one keeps only the
// flags it owns and parses them with its own flag.FlagSet.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps the arguments in args that belong to the flags named in
// owned, preserving order. Both "-k value" and "-k=value" are recognised; a
// following argument is taken as the value unless it starts with '-'.
// The result is never nil.
func FilterArgs(args []string, owned []string) []string {
	want := make(map[string]bool, len(owned))
	for _, f := range owned {
		want[f] = true
	}

	kept := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, found := strings.Cut(arg, "="); found && strings.HasPrefix(arg, "-") {
			if want[name] {
				kept = append(kept, arg)
			}
			continue
		}

		if !want[arg] {
			continue
		}
		kept = append(kept, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			kept = append(kept, args[i+1])
			i++
		}
	}

	return kept
}

// ConfigFile returns the JSON config path given with -c or -config, or ""
// when neither is present. With both, the last one wins.
func ConfigFile() string {
	return configFileFrom(os.Args[1:])
}

func configFileFrom(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config"}))

	return path
}
