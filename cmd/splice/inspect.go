package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/splice/internal/artifact"
	"github.com/vango-dev/splice/pkg/identity"
	"github.com/vango-dev/splice/pkg/template"
)

func inspectCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON bool
		keys   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a template table",
		Long: `Load the configured template table and print its digest, format,
owned root and invocation sites.

Examples:
  splice inspect
  splice inspect -t build/templates.cbor.zst --keys
  splice inspect -t s3://builds/app/templates.msgpack --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			table, info, err := loadTable(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			return printInspect(cmd.OutOrStdout(), table, info, asJSON, keys)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVarP(&keys, "keys", "k", false, "List the identity keys of every template")

	return cmd
}

// siteSummary describes one table entry.
type siteSummary struct {
	Location    string         `json:"location"`
	Tag         string         `json:"tag"`
	Sites       int            `json:"sites"`
	Fingerprint string         `json:"fingerprint"`
	Keys        []identity.Key `json:"keys,omitempty"`
}

type inspectReport struct {
	Source    string        `json:"source"`
	Format    string        `json:"format"`
	Digest    string        `json:"digest"`
	Size      int           `json:"size"`
	Version   int           `json:"version"`
	Root      string        `json:"root"`
	Templates []siteSummary `json:"templates"`
}

func printInspect(w io.Writer, table *template.Table, info artifact.Info, asJSON, withKeys bool) error {
	report := inspectReport{
		Source:  info.Source,
		Format:  info.Format.String(),
		Digest:  info.Digest,
		Size:    info.Size,
		Version: table.Version,
		Root:    table.Root,
	}
	for _, e := range table.Templates {
		keys := identity.Stream(e.Template)
		s := siteSummary{
			Location:    e.Location.String(),
			Tag:         e.Template.Tag,
			Sites:       len(keys),
			Fingerprint: fmt.Sprintf("%016x", identity.Fingerprint(e.Template)),
		}
		if withKeys {
			s.Keys = keys
		}
		report.Templates = append(report.Templates, s)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "Source:    %s\n", report.Source)
	fmt.Fprintf(w, "Format:    %s (%d bytes)\n", report.Format, report.Size)
	fmt.Fprintf(w, "Digest:    %s\n", report.Digest)
	fmt.Fprintf(w, "Root:      %s\n", report.Root)
	fmt.Fprintf(w, "Templates: %d\n\n", len(report.Templates))
	for _, s := range report.Templates {
		fmt.Fprintf(w, "  %-40s <%s> %d sites %s\n", s.Location, s.Tag, s.Sites, s.Fingerprint)
		for _, k := range s.Keys {
			fmt.Fprintf(w, "      %s\n", k)
		}
	}
	return nil
}
