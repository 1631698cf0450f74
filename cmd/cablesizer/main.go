// cablesizer — PV Conductor Sizing Tool
//
// Sizes conductor cross-sections for photovoltaic plant circuits from
// ampacity derating and voltage-drop criteria under IEC or NEC rules.
//
// Build:
//   go build -o cablesizer ./cmd/cablesizer
package main

import "github.com/piwi3910/CableSizer/internal/cli"

func main() {
	cli.Execute()
}
