package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"monotributo/internal/core"
	"monotributo/internal/importer"
	"monotributo/internal/services"
)

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List or add clients",
	}

	list := &cobra.Command{
		Use:   "list [search]",
		Short: "List the session's clients, optionally filtered by name or CUIT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			clients, err := services.NewClientService(a.repo).Search(cmd.Context(), a.session, term)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCUIT\tCATEGORY")
			for _, c := range clients {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.CUIT, c.Category)
			}
			return tw.Flush()
		},
	}

	var in core.Client
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			in.Name = args[0]
			c, err := services.NewClientService(a.repo).Create(cmd.Context(), a.session, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created client %s (%s, category %s)\n", c.ID, c.Name, c.Category)
			return nil
		},
	}
	add.Flags().StringVar(&in.CUIT, "cuit", "", "client CUIT")
	add.Flags().StringVar(&in.Category, "category", "", "monotributo category (A-K)")

	cmd.AddCommand(list, add)
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var (
		clientID  string
		format    string
		direction string
	)
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import invoice exports into a client's ledger",
		Example: `  ledgerctl import -s me@example.com --client c1 ventas.csv
  ledgerctl import -s me@example.com --client c1 --direction compra compras.xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			d, err := core.ParseDirection(direction)
			if err != nil {
				return err
			}
			svc := a.invoices()
			for _, path := range args {
				var f importer.Format
				if format == "" {
					f, err = importer.FormatFromFilename(filepath.Base(path))
				} else {
					f, err = importer.ParseFormat(format)
				}
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				out, err := svc.Import(cmd.Context(), a.scope(clientID), f, data, d)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				fmt.Fprintf(a.out, "%s: parsed %d, accepted %d, duplicates %d, skipped %d\n",
					filepath.Base(path), out.Parsed, out.Accepted, out.Duplicates, len(out.Skipped))
				for _, w := range out.Warnings {
					fmt.Fprintf(a.out, "  line %d: %s\n", w.Line, w.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringVar(&format, "format", "", "csv, txt or xlsx (default: from the file extension)")
	cmd.Flags().StringVar(&direction, "direction", "sale", "sale or purchase")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		clientID  string
		direction string
		period    core.Period
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			d, err := core.ParseDirection(direction)
			if err != nil {
				return err
			}
			if period.Start != "" || period.End != "" {
				if err := period.Validate(); err != nil {
					return err
				}
			}
			view, err := a.invoices().List(cmd.Context(), a.scope(clientID), d, period)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "DATE\tTYPE\tPOS\tNUMBER\tTOTAL\tDESCRIPTION\t")
			for _, inv := range view.Invoices {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
					inv.Date, inv.InvoiceType, inv.PointOfSale, inv.Number,
					core.FormatPesos(inv.TotalAmount), inv.Description)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\n%s: %d invoices\n", d.Label(), len(view.Invoices))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringVar(&direction, "direction", "sale", "sale or purchase")
	cmd.Flags().StringVar(&period.Start, "start", "", "first month, YYYY-MM")
	cmd.Flags().StringVar(&period.End, "end", "", "last month, YYYY-MM")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print a client's totals and category usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(a); err != nil {
				return err
			}
			s, err := a.invoices().Summary(cmd.Context(), a.scope(clientID))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Client\t%s (%s)\n", s.ClientName, s.ClientID)
			fmt.Fprintf(tw, "Category\t%s\n", s.Category)
			fmt.Fprintf(tw, "Sales\t%s (%d invoices)\n", core.FormatPesos(s.Totals.SalesTotal), s.SalesCount)
			fmt.Fprintf(tw, "Credit notes\t%s\n", core.FormatPesos(s.Totals.NCSales))
			fmt.Fprintf(tw, "Purchases\t%s (%d invoices)\n", core.FormatPesos(s.Totals.PurchasesTotal), s.PurchasesCount)
			fmt.Fprintf(tw, "Category limit\t%s\n", core.FormatPesos(s.Usage.Limit.MaxBilling))
			fmt.Fprintf(tw, "Usage\t%.1f%%\n", s.Usage.Percent)
			if s.OverLimit {
				fmt.Fprintln(tw, "Status\tOVER LIMIT")
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report CLIENT_ID",
		Short: "Print the public report of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := services.NewReportService(a.repo, nil).PublicReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s, category %s\n", r.ClientName, r.Category)
			fmt.Fprintf(a.out, "Billed %s of %s (%.1f%%)\n", core.FormatPesos(r.SalesTotal), core.FormatPesos(r.MaxBilling), r.Percent)
			fmt.Fprintf(a.out, "Monthly quota %s, next renewal %s\n", core.FormatPesos(r.MonthlyQuota), r.NextRenewal)
			return nil
		},
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the category limits and the known invoice types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tMAX BILLING\tMONTHLY QUOTA")
			for _, c := range core.Categories2026 {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Category, core.FormatPesos(c.MaxBilling), core.FormatPesos(c.MonthlyQuota))
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "CODE\tINVOICE TYPE\t")
			codes := make([]string, 0, len(core.InvoiceTypes))
			for code := range core.InvoiceTypes {
				codes = append(codes, code)
			}
			sort.Strings(codes)
			for _, code := range codes {
				fmt.Fprintf(tw, "%s\t%s\t\n", code, core.InvoiceTypes[code])
			}
			return tw.Flush()
		},
	}
}
