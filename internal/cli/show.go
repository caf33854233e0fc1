package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shaunharker/conley-morse-database/internal/render"
	"github.com/shaunharker/conley-morse-database/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database  string
	ModelHash string // list filter
	Emit      string // rendering of a single atlas
}

// ListResult holds the stored atlas catalogue.
type ListResult struct {
	Atlases []store.AtlasRecord `json:"atlases"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show [atlas-id]",
		Short: "List stored atlases or render one",
		Long: `List the atlases stored in a database, oldest first, or render the
atlas with the given ID.

Examples:
  cmdb-atlas show --db ./atlases.db
  cmdb-atlas show --db ./atlases.db --model <hash> --format json
  cmdb-atlas show --db ./atlases.db <atlas-id> --emit json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return runShow(opts, id, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.ModelHash, "model", "", "list only atlases of this model hash")
	cmd.Flags().StringVar(&opts.Emit, "emit", "xml", "atlas rendering (xml|json)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runShow(opts *ShowOptions, id string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	emit, err := render.ParseFormat(opts.Emit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidOption, err.Error(), nil)
	}

	// Check database exists; show never creates one
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()

	ctx := cmd.Context()
	if id == "" {
		records, err := st.ListAtlases(ctx, opts.ModelHash)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		return outputAtlasList(formatter, records)
	}

	a, rec, err := st.ReadAtlas(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("atlas not found: %s", id), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}
	formatter.VerboseLog("Atlas %s: model %s (%s), seq %d", rec.ID, rec.ModelName, rec.ModelHash, rec.Seq)

	return render.Write(formatter.Writer, a, emit)
}

// outputAtlasList prints the catalogue.
func outputAtlasList(formatter *OutputFormatter, records []store.AtlasRecord) error {
	if formatter.Format == "json" {
		return formatter.Success(ListResult{Atlases: records})
	}

	if len(records) == 0 {
		fmt.Fprintln(formatter.Writer, "No atlases stored.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tID\tMODEL\tHASH\tDIM\tREGIONS\tORDERING")
	for _, r := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Seq, r.ID, r.ModelName, shortHash(r.ModelHash), r.Dimension, r.RegionCount, r.Ordering)
	}
	return tw.Flush()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
