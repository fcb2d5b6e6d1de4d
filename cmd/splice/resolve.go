package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/splice/internal/errors"
	"github.com/vango-dev/splice/pkg/render"
)

func resolveCmd(flags *globalFlags) *cobra.Command {
	var (
		pretty bool
		page   bool
		title  string
	)

	cmd := &cobra.Command{
		Use:   "resolve <instance.json>",
		Short: "Resolve an instance fixture and print its HTML",
		Long: `Read an instance tree from a JSON fixture ("-" for stdin), reconcile it
against the template table, project its slots and print the result.

Examples:
  splice resolve testdata/page.json
  splice resolve --pretty --page --title Preview - < page.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E150").
					WithDetail("resolve takes exactly one instance fixture")
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return errors.New("E150").Wrap(err)
			}
			inst, err := decodeInstance(data)
			if err != nil {
				return errors.New("E150").WithDetail(err.Error())
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg)
			if err != nil {
				return err
			}
			registry, _, err := loadRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			eng := newEngine(cfg, registry, logger, nil)
			if _, err := eng.Resolve(cmd.Context(), inst); err != nil {
				return err
			}

			r := render.NewRenderer(render.RendererConfig{Pretty: pretty, Strict: true})
			out := cmd.OutOrStdout()
			if page {
				return r.RenderPage(out, render.PageData{Title: title, Body: inst})
			}
			if err := r.RenderToWriter(out, inst); err != nil {
				return err
			}
			_, err = io.WriteString(out, "\n")
			return err
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the output")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the output in a full HTML document")
	cmd.Flags().StringVar(&title, "title", "splice", "Document title with --page")

	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}
