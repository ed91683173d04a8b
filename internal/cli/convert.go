package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/layout-editor/backend/internal/codegen"
	"github.com/layout-editor/backend/internal/importer"
	"github.com/layout-editor/backend/internal/logging"
	"github.com/layout-editor/backend/internal/treeview"
	"github.com/spf13/cobra"
)

type convertOpts struct {
	in  string
	out string
}

func newExportCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a layout file as an HTML document",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())
			prog := logging.NewProgress(logger)

			store, err := readLayout(opts.in)
			if err != nil {
				return err
			}
			logger.Debug("layout loaded", "containers", store.Len())

			html, err := codegen.GenerateAll(store.All())
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			w, closeOut, err := output(opts.out, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, html); err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}
			if opts.out != "" {
				prog.Done(fmt.Sprintf("Exported %d containers to %s", store.Len(), opts.out))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "layout JSON file")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output HTML file (default stdout)")
	cmd.MarkFlagRequired("in")
	return cmd
}

func newImportCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Read containers from an HTML document into a layout file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.FromContext(cmd.Context())
			prog := logging.NewProgress(logger)

			markup, err := os.ReadFile(opts.in)
			if err != nil {
				return fmt.Errorf("read html: %w", err)
			}

			res, err := importer.Parse(string(markup))
			if err != nil {
				var ie *importer.Error
				if errors.As(err, &ie) {
					return fmt.Errorf("%s: %s", ie.Code, ie.Message)
				}
				return err
			}
			logger.Debug("html parsed", "containers", len(res.Order), "roots", len(res.Roots()))

			w, closeOut, err := output(opts.out, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := writeLayout(w, res.List()); err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}
			if opts.out != "" {
				prog.Done(fmt.Sprintf("Imported %d containers to %s", len(res.Order), opts.out))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.in, "in", "i", "", "HTML file")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output layout JSON file (default stdout)")
	cmd.MarkFlagRequired("in")
	return cmd
}

func newTreeCmd() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tree-view forest of a layout file",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := readLayout(in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(treeview.ToTreeView(store.All()))
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "layout JSON file")
	cmd.MarkFlagRequired("in")
	return cmd
}
