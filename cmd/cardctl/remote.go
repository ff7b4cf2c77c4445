package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/b2breeze/internal/server"
)

func newScanCommand(root *rootOptions) *cobra.Command {
	var async bool
	cmd := &cobra.Command{
		Use:   "scan <card-file>",
		Short: "Upload a card image or PDF to cardscand and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			c, closer, err := root.dial()
			if err != nil {
				return err
			}
			defer closer.Close()

			resp, err := c.ScanCard(cmd.Context(), &server.ScanCardRequest{
				Filename: filepath.Base(args[0]),
				Data:     data,
				Async:    async,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().BoolVar(&async, "async", false, "queue the scan instead of waiting for it")
	return cmd
}

func newExportCommand(root *rootOptions) *cobra.Command {
	var out, query, category string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download contacts as an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, closer, err := root.dial()
			if err != nil {
				return err
			}
			defer closer.Close()

			resp, err := c.ExportContacts(cmd.Context(), &server.ExportContactsRequest{Query: query, Category: category})
			if err != nil {
				return err
			}
			if out == "" {
				out = resp.Filename
			}
			if err := os.WriteFile(out, resp.XLSX, 0o644); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(resp.XLSX))
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default contacts-YYYYMMDD.xlsx)")
	cmd.Flags().StringVar(&query, "query", "", "match name, company or email")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	return cmd
}

func newContactsCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "Browse the contact wallet",
	}

	var (
		query, category string
		limit, offset   int
		asJSON          bool
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, closer, err := root.dial()
			if err != nil {
				return err
			}
			defer closer.Close()

			resp, err := c.ListContacts(cmd.Context(), &server.ListContactsRequest{
				Query: query, Category: category, Limit: limit, Offset: offset,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tEMAIL\tPHONE\tCATEGORY")
			for _, ct := range resp.Contacts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", ct.ID, ct.Name, ct.Company, ct.Email, ct.Phone, ct.Category)
			}
			fmt.Fprintf(tw, "\n%d of %d\n", len(resp.Contacts), resp.Total)
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&query, "query", "", "match name, company or email")
	list.Flags().StringVar(&category, "category", "", "only this category")
	list.Flags().IntVar(&limit, "limit", 50, "page size")
	list.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	list.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	cmd.AddCommand(list)
	return cmd
}
