package cli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSubcommand is returned when no known subcommand is provided.
var ErrNoSubcommand = errors.New("missing subcommand: usage: stepcm <analyze|compare|bom|geometry|interfaces|validate|baseline|serve> [flags] [refs...]")

// ErrMissingFlagValue is returned when a flag requires a value but none is provided.
var ErrMissingFlagValue = errors.New("flag requires a value")

// Subcommand represents the CLI subcommand.
type Subcommand string

const (
	SubcommandAnalyze    Subcommand = "analyze"
	SubcommandCompare    Subcommand = "compare"
	SubcommandBOM        Subcommand = "bom"
	SubcommandGeometry   Subcommand = "geometry"
	SubcommandInterfaces Subcommand = "interfaces"
	SubcommandValidate   Subcommand = "validate"
	SubcommandBaseline   Subcommand = "baseline"
	SubcommandServe      Subcommand = "serve"
)

// Command represents the parsed CLI input.
type Command struct {
	Subcommand Subcommand
	Refs       []string // model or baseline references, in order
	Action     string   // baseline action: save|list|show|delete

	Component     string // --component <name> (geometry)
	OutPath       string // --out <path> (compare report file)
	TolerancePath string // --tolerances <path>
	BaselineDir   string // --baseline-dir <path>
	ExtractorURL  string // --extractor-url <url>
	JSONOutput    bool   // --json
}

// refCount is the number of positional references each subcommand takes.
var refCount = map[Subcommand]int{
	SubcommandAnalyze:    1,
	SubcommandCompare:    2,
	SubcommandBOM:        1,
	SubcommandGeometry:   1,
	SubcommandInterfaces: 1,
	SubcommandValidate:   1,
	SubcommandServe:      0,
}

// ParseArgs parses CLI arguments into a Command.
// It expects args to be os.Args[1:] (excluding the program name).
func ParseArgs(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, ErrNoSubcommand
	}

	sub := Subcommand(args[0])
	if _, ok := refCount[sub]; !ok && sub != SubcommandBaseline {
		return Command{}, ErrNoSubcommand
	}

	cmd := Command{Subcommand: sub}

	var positional []string
	i := 1
	for i < len(args) {
		arg := args[i]

		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			switch flagName {
			case "component":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.Component = args[i]
			case "out":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.OutPath = args[i]
			case "tolerances":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.TolerancePath = args[i]
			case "baseline-dir":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.BaselineDir = args[i]
			case "extractor-url":
				if i+1 >= len(args) {
					return Command{}, ErrMissingFlagValue
				}
				i++
				cmd.ExtractorURL = args[i]
			case "json":
				cmd.JSONOutput = true
			default:
				return Command{}, fmt.Errorf("unknown flag: --%s", flagName)
			}
			i++
			continue
		}

		positional = append(positional, arg)
		i++
	}

	if sub == SubcommandBaseline {
		return parseBaseline(cmd, positional)
	}

	want := refCount[sub]
	if len(positional) != want {
		return Command{}, fmt.Errorf("%s takes %d reference(s), got %d", sub, want, len(positional))
	}
	cmd.Refs = positional
	return cmd, nil
}

// parseBaseline validates the baseline store actions.
func parseBaseline(cmd Command, positional []string) (Command, error) {
	if len(positional) == 0 {
		return Command{}, errors.New("usage: stepcm baseline <save|list|show|delete> [ref|id]")
	}

	cmd.Action = positional[0]
	rest := positional[1:]

	switch cmd.Action {
	case "list":
		if len(rest) != 0 {
			return Command{}, errors.New("baseline list takes no arguments")
		}
	case "save", "show", "delete":
		if len(rest) != 1 {
			return Command{}, fmt.Errorf("baseline %s takes exactly one argument", cmd.Action)
		}
		cmd.Refs = rest
	default:
		return Command{}, fmt.Errorf("unknown baseline action: %s", cmd.Action)
	}
	return cmd, nil
}
