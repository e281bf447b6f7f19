package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/cs-au-dk/kea/analysis/absint"
	"github.com/cs-au-dk/kea/analysis/cfg"
	tu "github.com/cs-au-dk/kea/testutil"
	"github.com/cs-au-dk/kea/utils"

	"github.com/fatih/color"
)

var opts = utils.Opts()

func main() {
	utils.ParseArgs()

	prog := tu.Suite()

	if opts.Visualize() {
		for _, fn := range prog.Functions() {
			if !include(fn) {
				continue
			}
			path, err := fn.Visualize("cfg-", opts.OutputFormat())
			if err != nil {
				log.Fatalln("Rendering", fn.Name(), "failed:", err)
			}
			log.Println("Rendered", path)
		}
	}

	log.Println("Analyzing", len(prog.Functions()), "functions...")
	res := absint.Analyze(prog)

	for _, fn := range prog.Functions() {
		name := fn.Name()
		if !include(fn) || !tu.IsScenario(name) {
			continue
		}

		verdict := color.GreenString("silent")
		if res.Reported(name) {
			verdict = color.RedString("reported")
		}
		status := color.GreenString("✓")
		if res.Reported(name) != tu.ExpectReport(name) {
			status = color.New(color.FgRed, color.Bold).Sprint("MISMATCH")
		}
		fmt.Printf("%-50s %-10s %s\n", name, verdict, status)

		if ds := res.Diagnostics(name); !ds.Empty() {
			utils.VerbosePrint("%s\n", ds)
		}
	}

	if ms := tu.Mismatches(prog, res); len(ms) > 0 {
		log.Println("Verdicts deviating from their labels:", strings.Join(ms, ", "))
		os.Exit(1)
	}
}

func include(fn *cfg.Function) bool {
	return strings.Contains(fn.Name(), opts.Function())
}
