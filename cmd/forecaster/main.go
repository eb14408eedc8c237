/*
main.go - Application entry point

PURPOSE:
  Entry point for the forecaster CLI. All behavior lives in the cmd
  package: `forecaster serve` runs the HTTP API, `forecaster forecast`
  prints monthly summaries to the terminal.

SEE ALSO:
  - cmd/root.go: Command tree and configuration
  - api/server.go: Router configuration
*/
package main

import (
	"os"

	"github.com/warp/forecast-engine/cmd/forecaster/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
