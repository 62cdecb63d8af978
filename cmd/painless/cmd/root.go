// Package cmd is the painless CLI's cobra command tree: compile, run and
// disassemble a script against the standard whitelist, grounded on the
// teacher's own cmd/dwscript/cmd root/compile/run split.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "painless",
	Short: "Painless script compiler and runner",
	Long: `painless compiles and runs Painless scripts: the sandboxed
expression/scripting language embedded in search-engine document
contexts.

It exposes the same three-stage pipeline the embedding library uses —
parse, analyze, emit — as standalone compile and run subcommands
(compile --disassemble prints the bytecode) for local iteration on a
script outside of a running search cluster.`,
	Version: Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))
}
