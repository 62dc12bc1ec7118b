package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"review_mapper/internal/app"
	"review_mapper/internal/shared"
	"review_mapper/internal/storage/sqldb"
)

type runtime struct {
	cfg    shared.Config
	output string
	db     *sql.DB
	svc    *app.ReviewService
}

func newRootCmd(cfg shared.Config) *cobra.Command {
	rt := &runtime{cfg: cfg}
	root := &cobra.Command{
		Use:           "reviewctl",
		Short:         "Manage employee reviews",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.output != "json" && rt.output != "yaml" {
				return fmt.Errorf("--output must be json or yaml")
			}
			return rt.open(cmd.Context())
		},
		PersistentPostRun: func(*cobra.Command, []string) { rt.close() },
	}
	root.PersistentFlags().StringVar(&rt.cfg.DBDriver, "driver", cfg.DBDriver, "database driver (mysql|sqlite)")
	root.PersistentFlags().StringVar(&rt.output, "output", "json", "output format (json|yaml)")

	root.AddCommand(newSchemaCmd(rt), newReviewCmd(rt))
	return root
}

func (rt *runtime) open(ctx context.Context) error {
	db, d, err := sqldb.Open(ctx, rt.cfg.DBDriver, rt.cfg.DSN())
	if err != nil {
		return err
	}
	employees := sqldb.NewEmployeeLookup(db)
	rt.db = db
	rt.svc = app.NewReviewService(sqldb.New(db, d, employees, sqldb.WithLogger(log.Logger)), employees)
	return nil
}

func (rt *runtime) close() {
	if rt.db != nil {
		_ = rt.db.Close()
	}
}

func (rt *runtime) print(w io.Writer, v any) error {
	if rt.output == "yaml" {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSchemaCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "schema", Short: "Create or drop the reviews table"}
	cmd.AddCommand(
		&cobra.Command{
			Use:  "create",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := rt.svc.CreateSchema(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reviews table ready")
				return nil
			},
		},
		&cobra.Command{
			Use:  "drop",
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := rt.svc.DropSchema(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "reviews table dropped")
				return nil
			},
		},
	)
	return cmd
}

func newReviewCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{Use: "review", Short: "Create, inspect and change reviews"}

	var in app.CreateReview
	create := &cobra.Command{
		Use:  "create",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := rt.svc.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), v)
		},
	}
	create.Flags().IntVar(&in.Year, "year", 0, "review year (>= 2000)")
	create.Flags().StringVar(&in.Summary, "summary", "", "review summary")
	create.Flags().Int64Var(&in.EmployeeID, "employee", 0, "employee id")
	_ = create.MarkFlagRequired("year")
	_ = create.MarkFlagRequired("summary")
	_ = create.MarkFlagRequired("employee")

	get := &cobra.Command{
		Use:  "get ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := rt.svc.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), v)
		},
	}

	list := &cobra.Command{
		Use:  "list",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vs, err := rt.svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), vs)
		},
	}

	var (
		year       int
		summary    string
		employeeID int64
	)
	update := &cobra.Command{
		Use:  "update ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch app.UpdateReview
			if cmd.Flags().Changed("year") {
				patch.Year = &year
			}
			if cmd.Flags().Changed("summary") {
				patch.Summary = &summary
			}
			if cmd.Flags().Changed("employee") {
				patch.EmployeeID = &employeeID
			}
			v, err := rt.svc.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return rt.print(cmd.OutOrStdout(), v)
		},
	}
	update.Flags().IntVar(&year, "year", 0, "new review year")
	update.Flags().StringVar(&summary, "summary", "", "new summary")
	update.Flags().Int64Var(&employeeID, "employee", 0, "new employee id")

	del := &cobra.Command{
		Use:  "delete ID",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := rt.svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "review %d deleted\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, get, list, update, del)
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid review id %q", s)
	}
	return id, nil
}
