package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/chemsim/pkg/errors"
)

type chemblOptions struct {
	ids     []string
	idsFile string
	output  string
}

func newChEMBLCmd() *cobra.Command {
	opts := &chemblOptions{}

	cmd := &cobra.Command{
		Use:   "chembl",
		Short: "Export structures for ChEMBL ids from the local mirror",
		Long: `Looks up canonical structures in the local ChEMBL mirror and writes them as a
structure file, "<smiles> <chembl id>" per line, in the order requested.
Ids the mirror does not know are listed on stderr.  Requires chembl.enabled.`,
		Example: `  chemsim chembl --ids CHEMBL25,CHEMBL1201585 -o actives.smi
  chemsim chembl --ids-file ids.txt`,
		RunE: withCLIContext(func(cmd *cobra.Command, cliCtx *CLIContext) error {
			ids, err := collectIDs(opts)
			if err != nil {
				return err
			}
			w, closeOutput, err := openOutput(cmd, opts.output)
			if err != nil {
				return err
			}
			res, err := cliCtx.Runtime.Service.ExportChEMBL(cmd.Context(), ids, w)
			if cerr := closeOutput(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if len(res.Missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "not found: %s\n", strings.Join(res.Missing, ","))
			}
			return nil
		}),
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.ids, "ids", nil, "comma-separated ChEMBL ids")
	f.StringVar(&opts.idsFile, "ids-file", "", "file with ChEMBL ids, separated by commas or whitespace")
	f.StringVarP(&opts.output, "output", "o", "", "write to FILE instead of stdout")

	return cmd
}

// collectIDs merges --ids and --ids-file.  Normalization and de-duplication
// happen in the repository.
func collectIDs(opts *chemblOptions) ([]string, error) {
	ids := append([]string(nil), opts.ids...)
	if opts.idsFile != "" {
		data, err := os.ReadFile(opts.idsFile)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NotFound("ids file not found").WithDetail(opts.idsFile)
			}
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read ids file").WithDetail(opts.idsFile)
		}
		ids = append(ids, strings.FieldsFunc(string(data), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})...)
	}
	if len(ids) == 0 {
		return nil, errors.InvalidParam("no ChEMBL ids given; use --ids or --ids-file")
	}
	return ids, nil
}

//Personal.AI order the ending
