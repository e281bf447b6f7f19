package utils

import (
	"flag"
)

type options struct {
	function     string
	outputFormat string
	visualize    bool
	noColorize   bool
	verbose      bool
}

var opts = &options{}

type optInterface struct{}

func Opts() optInterface {
	return optInterface{}
}

func (optInterface) NoColorize() bool {
	return opts.noColorize
}

func (optInterface) Verbose() bool {
	return opts.verbose
}

func (optInterface) Visualize() bool {
	return opts.visualize
}

func (optInterface) Function() string {
	return opts.function
}

func (optInterface) OutputFormat() string {
	return opts.outputFormat
}

// ParseArgs declares and parses the command line flags of the driver.
func ParseArgs() (args []string) {
	flag.StringVar(&opts.function, "function", "",
		"Restrict the run to programs whose name contains the given string.")
	flag.StringVar(&opts.outputFormat, "format", "svg",
		"Output format used when rendering control-flow graphs.")
	flag.BoolVar(&opts.visualize, "visualize", false,
		"Render the control-flow graph of every processed program.")
	flag.BoolVar(&opts.noColorize, "nocolorize", false,
		"Disable colorization of console output.")
	flag.BoolVar(&opts.verbose, "verbose", false,
		"Enable verbose logging.")

	flag.Parse()
	return flag.Args()
}
