package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type canonicalizeOptions struct {
	file   string
	output string
}

func newCanonicalizeCmd() *cobra.Command {
	opts := &canonicalizeOptions{}

	cmd := &cobra.Command{
		Use:   "canonicalize",
		Short: "Rewrite a structure source with canonical SMILES",
		Long: `Writes "<canonical smiles> <name>" for every structure that parses.  Unnamed
structures receive generated names.  Skipped structures and the totals are
reported on stderr.`,
		RunE: withCLIContext(func(cmd *cobra.Command, cliCtx *CLIContext) error {
			w, closeOutput, err := openOutput(cmd, opts.output)
			if err != nil {
				return err
			}
			res, err := cliCtx.Runtime.Service.Canonicalize(cmd.Context(), opts.file, w)
			if cerr := closeOutput(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			for _, f := range res.Failures {
				printSkipped(cmd.ErrOrStderr(), opts.file, f.Structure, f.Name, f.Err.Error())
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d written, %d skipped\n", res.Written, res.Skipped)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "structure source (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to FILE instead of stdout")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

//Personal.AI order the ending
