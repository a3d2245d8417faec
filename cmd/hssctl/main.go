// Command hssctl drives the hss library from the command line: compress a
// matrix, apply it to a vector, solve a linear system, or benchmark all
// three across a range of sizes, all reading their input from a YAML
// fixture file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hssmat/hss/pkg/logging"
)

var (
	log *logging.Logger
	tel *telemetry
)

func main() {
	log = logging.New(logging.Config{Level: logging.LevelInfo, Service: "hssctl"})
	defer log.Close()

	var err error
	tel, err = setupTelemetry(os.Stderr, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hssctl: telemetry setup:", err)
		os.Exit(1)
	}
	defer func() {
		if err := tel.shutdown(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, "hssctl: telemetry shutdown:", err)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hssctl:", err)
		os.Exit(1)
	}
}
