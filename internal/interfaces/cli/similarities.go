package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemsim/internal/application/reporting"
	"github.com/turtacn/chemsim/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemsim/pkg/errors"
	mtypes "github.com/turtacn/chemsim/pkg/types/molecule"
)

// ErrPublishNotConfigured is returned by --publish when object storage is
// disabled.
var ErrPublishNotConfigured = errors.New(errors.ErrCodeConfigInvalid, "report publishing requires storage.minio.enabled")

type similaritiesOptions struct {
	file1   string
	file2   string
	output  string
	format  string
	publish bool
}

func newSimilaritiesCmd() *cobra.Command {
	opts := &similaritiesOptions{}

	cmd := &cobra.Command{
		Use:   "similarities",
		Short: "Report the most similar molecule for every molecule of a set",
		Long: `Without --file2 every molecule of --file1 is paired with the most similar
other molecule of the same set.  With --file2 every molecule of --file1 is
paired with the most similar molecule of --file2.  A --file2 source that
does not exist is matched as an empty set and every row reads "None None".

Sources are structure files ("<smiles> [<name>]" per line), "-" for standard
input, s3://bucket/key objects or chembl:ID[,ID...] from the local mirror.
Structures that cannot be parsed are listed on stderr.`,
		Example: `  chemsim similarities -f1 set1.smi
  chemsim similarities --file1 query.smi --file2 s3://libraries/reference.smi -o out.txt
  chemsim similarities -f1 set1.smi --format json --publish`,
		RunE: withCLIContext(func(cmd *cobra.Command, cliCtx *CLIContext) error {
			return runSimilarities(cmd, cliCtx, opts)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&opts.file1, "file1", "", "query structures (required; -f1 is accepted)")
	f.StringVar(&opts.file2, "file2", "", "reference structures (-f2 is accepted)")
	f.StringVarP(&opts.output, "output", "o", "", "write the report to FILE instead of stdout")
	f.StringVar(&opts.format, "format", string(reporting.FormatText), "report format: text|json")
	f.BoolVar(&opts.publish, "publish", false, "also upload the report to object storage")
	_ = cmd.MarkFlagRequired("file1")

	return cmd
}

func runSimilarities(cmd *cobra.Command, cliCtx *CLIContext, opts *similaritiesOptions) error {
	format, err := reporting.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if opts.publish && cliCtx.Runtime.Publisher == nil {
		return ErrPublishNotConfigured
	}

	ctx := cmd.Context()
	var report *mtypes.SimilarityReport
	if opts.file2 == "" {
		report, err = cliCtx.Runtime.Service.IntraReport(ctx, opts.file1)
	} else {
		report, err = cliCtx.Runtime.Service.InterReport(ctx, opts.file1, opts.file2)
	}
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(cmd, opts.output)
	if err != nil {
		return err
	}
	if err := reporting.Render(w, report, format); err != nil {
		_ = closeOutput()
		return err
	}
	if err := closeOutput(); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to write report").WithDetail(opts.output)
	}

	for _, f := range report.Failures {
		printSkipped(cmd.ErrOrStderr(), f.Source, f.Structure, f.Name, f.Reason)
	}
	cliCtx.Logger.Info("report written",
		logging.String("run_id", report.RunID),
		logging.Int("rows", len(report.Rows)),
		logging.Int("failures", len(report.Failures)))

	if opts.publish {
		uri, err := cliCtx.Runtime.Publisher.Publish(ctx, report, format)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "published %s\n", uri)
	}
	return nil
}

// printSkipped reports one rejected input line on w.
func printSkipped(w io.Writer, source, structure, name, reason string) {
	if source == "" {
		fmt.Fprintf(w, "skipped %s %s: %s\n", structure, name, reason)
		return
	}
	fmt.Fprintf(w, "skipped %s %s in %s: %s\n", structure, name, source, reason)
}

//Personal.AI order the ending
