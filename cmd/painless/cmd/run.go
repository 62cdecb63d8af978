package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/painless-lang/painless/internal/settings"
	"github.com/painless-lang/painless/pkg/painless"
	"github.com/spf13/cobra"
)

var (
	runParamsFile string
	runManifest   string
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Compile and run a Painless script",
	Long: `Run compiles a Painless script and executes it once against an
optional JSON parameter document (the "params"/"ctx"/"doc"/"_score"
bindings a search-time evaluation would supply).

Examples:
  # Run a script with no bindings
  painless run script.pless

  # Run with params/doc/ctx supplied as a JSON file
  painless run script.pless --params bindings.json`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runParamsFile, "params", "", "JSON file supplying params/ctx/doc/_score bindings")
	runCmd.Flags().StringVar(&runManifest, "manifest", "", "YAML build manifest overriding default compile settings")
}

func runScript(_ *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	s := settings.Default()
	if runManifest != "" {
		mf, err := loadManifest(runManifest)
		if err != nil {
			return err
		}
		s = mf.Settings
	}

	params, err := loadParams(runParamsFile)
	if err != nil {
		return err
	}

	reg := painless.NewRegistry()
	result, err := painless.Execute(string(source), reg, s, params)
	if err != nil {
		return err
	}
	fmt.Println(formatResult(result))
	return nil
}

func loadParams(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var params map[string]any
	if err := json.Unmarshal(buf, &params); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return params, nil
}

func loadManifest(path string) (*settings.BuildManifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	mf, err := settings.LoadManifest(f)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return mf, nil
}

func formatResult(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
