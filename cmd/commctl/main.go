/*
commctl - command-line access to the commission engine

PURPOSE:
  Runs the same services as the HTTP server directly against the sqlite
  database: compute and post commissions, print statistics, export the
  monthly workbook, load demo scenarios and send checklist reminders.

GLOBAL FLAGS:
  --config  Config file (default: $CONFIG_PATH or ./config/local.yaml)
  --db      SQLite database path, overrides storage_path

EXAMPLES:
  commctl scenario demo-fleet
  commctl compute davi --period 2025-03
  commctl post davi --period 2025-02
  commctl stats --period 2025-02
  commctl report --period 2025-03 --out comissoes.xlsx
  commctl remind
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
