package cmd

import (
	"fmt"
	"os"

	"github.com/painless-lang/painless/internal/settings"
	"github.com/painless-lang/painless/internal/vm"
	"github.com/painless-lang/painless/pkg/painless"
	"github.com/spf13/cobra"
)

var (
	compileManifest   string
	compileDisasm     bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Painless script and report diagnostics",
	Long: `Compile runs a script through the parse/analyze/emit pipeline
without executing it, surfacing every diagnostic the analyzer and emitter
collect. Pass --disassemble to print the compiled bytecode alongside a
clean compile.`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVar(&compileManifest, "manifest", "", "YAML build manifest overriding default compile settings")
	compileCmd.Flags().BoolVar(&compileDisasm, "disassemble", false, "print the compiled bytecode")
}

func compileScript(_ *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	s := settings.Default()
	if compileManifest != "" {
		mf, err := loadManifest(compileManifest)
		if err != nil {
			return err
		}
		s = mf.Settings
	}

	reg := painless.NewRegistry()
	exe, err := painless.Compile(string(source), args[0], reg, s)
	if err != nil {
		if ce, ok := err.(*painless.CompileError); ok {
			for _, pe := range ce.Parse {
				fmt.Fprintln(os.Stderr, pe.Error())
			}
			if ce.Report != nil {
				for _, d := range ce.Report.Diagnostics {
					fmt.Fprintln(os.Stderr, d.Format(string(source), false))
				}
			}
		}
		return err
	}

	fmt.Printf("compiled %s: %d function(s)\n", args[0], len(exe.Functions))
	if compileDisasm {
		fmt.Println(vm.Disassemble(exe.Entry))
		for name, fn := range exe.Functions {
			fmt.Printf("\nfunction %s:\n%s\n", name, vm.Disassemble(fn.Chunk))
		}
	}
	return nil
}
