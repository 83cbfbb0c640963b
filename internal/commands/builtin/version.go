package builtin

import (
	"context"

	"cmdshell/internal/output"
	"cmdshell/internal/version"
	"cmdshell/pkg/shelltypes"
)

// VersionCommand reports the cmdshell version.
type VersionCommand struct{}

// Name returns the command name "version" for registration and lookup.
func (c *VersionCommand) Name() string {
	return "version"
}

// Description returns a brief description of what the version command does.
func (c *VersionCommand) Description() string {
	return "Show version information, check a version constraint or compare two versions"
}

// Usage returns the syntax for the version command.
func (c *VersionCommand) Usage() string {
	return "version [-v] | version check <constraint> | version compare <v1> <v2>"
}

// Execute prints the version banner, the detailed build information with -v, or
// exits 0 or 1 depending on whether the running version satisfies a constraint.
// compare prints how two versions order, as "v1 < v2", "v1 = v2" or "v1 > v2".
func (c *VersionCommand) Execute(_ context.Context, _ shelltypes.Shell, cl *shelltypes.CommandLine) (int, error) {
	printer := output.NewPrinter(cl.Stdout, output.PlainText())

	var text string
	switch {
	case len(cl.Args) == 0:
		text = version.GetFormattedVersion()
	case len(cl.Args) == 1 && cl.Args[0] == "-v":
		text = version.GetDetailedVersion()
	case len(cl.Args) == 2 && cl.Args[0] == "check":
		ok, err := version.Satisfies(cl.Args[1])
		if err != nil {
			return 2, err
		}
		if !ok {
			return 1, nil
		}
		return 0, nil
	case len(cl.Args) == 3 && cl.Args[0] == "compare":
		order, err := version.CompareVersions(cl.Args[1], cl.Args[2])
		if err != nil {
			return 2, err
		}
		printer.Printf("%s %s %s\n", cl.Args[1], [...]string{"<", "=", ">"}[order+1], cl.Args[2])
		return 0, nil
	default:
		return usageError(c)
	}

	printer.Println(text)
	return 0, nil
}
