package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	domainMol "github.com/turtacn/chemsim/internal/domain/molecule"
	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

type matrixOptions struct {
	file   string
	output string
}

func newMatrixCmd() *cobra.Command {
	opts := &matrixOptions{}

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the full similarity matrix of a set",
		Long: `Prints the N×N similarity matrix of one structure source as a space-separated
table.  The first line holds the column names; every following line starts
with the row name.`,
		RunE: withCLIContext(func(cmd *cobra.Command, cliCtx *CLIContext) error {
			m, err := cliCtx.Runtime.Service.IntraMatrix(cmd.Context(), opts.file)
			if err != nil {
				return err
			}
			w, closeOutput, err := openOutput(cmd, opts.output)
			if err != nil {
				return err
			}
			if err := writeMatrix(w, m); err != nil {
				_ = closeOutput()
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to write matrix")
			}
			return closeOutput()
		}),
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "structure source (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the matrix to FILE instead of stdout")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// writeMatrix renders m as a space-separated table.  An empty matrix writes
// nothing.
func writeMatrix(w io.Writer, m *domainMol.Matrix) error {
	if m == nil || m.Rows() == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(m.ColNames, " "))
	sb.WriteByte('\n')
	for i := 0; i < m.Rows(); i++ {
		sb.WriteString(m.RowNames[i])
		for j := 0; j < m.Cols(); j++ {
			sb.WriteByte(' ')
			sb.WriteString(mtypes.FormatScore(m.At(i, j)))
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

//Personal.AI order the ending
