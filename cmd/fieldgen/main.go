// Command fieldgen is the generator CLI of spec.md §4.9: it turns the
// compile-time header registry (internal/fieldreg) into the per-direction
// known-header dictionaries, each its own self-contained package under
// --out (default internal/fieldgen/generated). These are the printed
// equivalent of the headers package's hand-written runtime, not a
// dependency of it; see the schema type's doc in headers/schema.go.
package main

import (
	"github.com/spf13/cobra"

	"github.com/hexinfra/fielddict/cmd/fieldgen/internal/run"
	"github.com/hexinfra/fielddict/internal/diag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		diag.UseExitln(err)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldgen",
		Short: "Generate the HTTP known-header dictionaries",
	}
	root.AddCommand(newGenerateCmd(), newVerifyCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	var direction, out, configPath string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the generated dictionary file(s) to --out",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.Generate(direction, out, configPath)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "all", "request|response|trailer|all")
	cmd.Flags().StringVar(&out, "out", "internal/fieldgen/generated", "output directory; each direction gets its own <out>/<direction> package")
	cmd.Flags().StringVar(&configPath, "config", "", "optional generator override YAML file")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var out, configPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Fail if the checked-in dictionaries differ from a fresh generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run.Verify(out, configPath)
		},
	}
	cmd.Flags().StringVar(&out, "out", "internal/fieldgen/generated", "directory to verify against")
	cmd.Flags().StringVar(&configPath, "config", "", "optional generator override YAML file")
	return cmd
}
