package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/splice/internal/artifact"
	"github.com/vango-dev/splice/internal/errors"
)

func convertCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <dest>",
		Short: "Re-encode a template table",
		Long: `Load the configured template table and write it to dest. The codec and
compression are taken from the destination extension.

Examples:
  splice convert build/templates.json
  splice convert -t build/templates.json s3://builds/app/templates.cbor.zst`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("E150").
					WithDetail("convert takes exactly one destination").
					WithSuggestion("splice convert build/templates.cbor.zst")
			}
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			table, from, err := loadTable(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			dest := args[0]
			to, err := artifact.Store(cmd.Context(), dest, table, objectStore(cfg, dest))
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s (%s, %d bytes) -> %s (%s, %d bytes), %d templates",
				from.Source, from.Format, from.Size, to.Source, to.Format, to.Size, to.Templates)
			return nil
		},
	}
	return cmd
}
