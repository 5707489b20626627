package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"procurement/internal/config"
	"procurement/internal/database"
	"procurement/internal/hierarchy"
	"procurement/internal/model"
	"procurement/internal/report"
	"procurement/internal/repository"
	"procurement/internal/service"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the CLI. Settings come from flags first, then the same
// environment variables the API server reads.
func newRootCmd(out io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "procurectl",
		Short:         "Procurement approval admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().String("directory", "configs/users.yml", "user directory file")
	root.PersistentFlags().Bool("json", false, "output JSON")
	_ = v.BindPFlag("USER_DIRECTORY_FILE", root.PersistentFlags().Lookup("directory"))
	_ = v.BindPFlag("json", root.PersistentFlags().Lookup("json"))

	root.AddCommand(directoryCmd(v, out), reportCmd(v, out))
	return root
}

func loadDirectory(v *viper.Viper) (*hierarchy.Directory, error) {
	return hierarchy.LoadFile(v.GetString("USER_DIRECTORY_FILE"))
}

func directoryCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	dir := &cobra.Command{Use: "directory", Short: "Inspect the user directory"}
	dir.AddCommand(
		&cobra.Command{
			Use:   "validate",
			Short: "Check the directory for cycles and bad reporting lines",
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := loadDirectory(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "ok: %d users, %d roots\n", d.Len(), len(d.Roots()))
				return nil
			},
		},
		&cobra.Command{
			Use:   "tree",
			Short: "Print the reporting tree",
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := loadDirectory(v)
				if err != nil {
					return err
				}
				lw := list.NewWriter()
				lw.SetOutputMirror(out)
				lw.SetStyle(list.StyleConnectedRounded)
				for _, root := range d.Roots() {
					appendSubtree(lw, d, root)
				}
				lw.Render()
				return nil
			},
		},
		&cobra.Command{
			Use:   "hash-password <password>",
			Short: "Print a bcrypt hash for the password_hash field",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(hash))
				return nil
			},
		},
	)
	return dir
}

func appendSubtree(lw list.Writer, d *hierarchy.Directory, u model.User) {
	lw.AppendItem(fmt.Sprintf("%s (%s, %s)", u.Name, u.ID, u.Role))
	subs := d.DirectSubordinates(u.ID)
	if len(subs) == 0 {
		return
	}
	lw.Indent()
	for _, s := range subs {
		appendSubtree(lw, d, s)
	}
	lw.UnIndent()
}

func reportCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	rep := &cobra.Command{Use: "report", Short: "Cost reports from the request store"}

	flags := rep.PersistentFlags()
	flags.String("mode", string(report.ModeApproved), "approved or projection")
	flags.String("viewer", "", "user id to report for (defaults to the first state user)")
	flags.String("db-driver", "postgres", "postgres or sqlite")
	flags.String("sqlite-path", "procurement.db", "sqlite database file")
	_ = v.BindPFlag("mode", flags.Lookup("mode"))
	_ = v.BindPFlag("viewer", flags.Lookup("viewer"))
	_ = v.BindPFlag("DB_DRIVER", flags.Lookup("db-driver"))
	_ = v.BindPFlag("SQLITE_PATH", flags.Lookup("sqlite-path"))

	rep.AddCommand(
		&cobra.Command{
			Use:   "budget",
			Short: "Category and item rollup for the viewer's subtree",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, viewer, err := openReports(v)
				if err != nil {
					return err
				}
				cost, err := svc.Budget(cmd.Context(), viewer, report.Mode(v.GetString("mode")))
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return writeJSON(out, cost)
				}
				renderBudget(out, cost)
				return nil
			},
		},
		&cobra.Command{
			Use:   "districts",
			Short: "Grand total per district",
			RunE: func(cmd *cobra.Command, args []string) error {
				svc, viewer, err := openReports(v)
				if err != nil {
					return err
				}
				rollup, err := svc.Districts(cmd.Context(), viewer, report.Mode(v.GetString("mode")))
				if err != nil {
					return err
				}
				if v.GetBool("json") {
					return writeJSON(out, rollup)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(out)
				tw.AppendHeader(table.Row{"District", "Total Cost"})
				for name, r := range rollup {
					tw.AppendRow(table.Row{name, r.GrandTotal.StringFixed(2)})
				}
				tw.SortBy([]table.SortBy{{Name: "District", Mode: table.Asc}})
				tw.Render()
				return nil
			},
		},
	)
	return rep
}

func openReports(v *viper.Viper) (service.ReportService, string, error) {
	d, err := loadDirectory(v)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.FromEnv(v.GetString)
	if err != nil {
		return nil, "", err
	}
	db, err := database.NewConnection(cfg.DB)
	if err != nil {
		return nil, "", fmt.Errorf("database connection failed: %w", err)
	}

	viewer := v.GetString("viewer")
	if viewer == "" {
		for _, u := range d.Roots() {
			if u.Role == model.RoleState {
				viewer = u.ID
				break
			}
		}
	}
	return service.NewReportService(repository.NewRequestRepository(db), d), viewer, nil
}

func renderBudget(out io.Writer, cost report.CostReport) {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.AppendHeader(table.Row{"Category", "Item", "Quantity", "Total Cost"})
	for _, cat := range cost.Categories {
		for _, it := range cat.Items {
			tw.AppendRow(table.Row{cat.Category, it.ItemName, it.TotalQuantity, it.TotalCost.StringFixed(2)})
		}
		tw.AppendSeparator()
	}
	tw.AppendFooter(table.Row{"", "", "Grand total", cost.GrandTotal.StringFixed(2)})
	tw.Render()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

