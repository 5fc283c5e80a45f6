package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vetta-app/vetta/internal/repositories"
	"github.com/vetta-app/vetta/internal/sqlite"
)

var sqliteURL string

func init() {
	// A missing .env file is fine; the flags carry their own defaults.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVar(&sqliteURL, "sqlite-url", defaultSQLiteURL(), "SQLite URL")

	createDealerCmd.Flags().String("name", "", "dealership name")
	createDealerCmd.Flags().String("slug", "", "URL-safe dealership identifier")
	_ = createDealerCmd.MarkFlagRequired("name")
	_ = createDealerCmd.MarkFlagRequired("slug")
	rootCmd.AddCommand(createDealerCmd)

	listAssessmentsCmd.Flags().String("dealer", "", "dealer name, slug, or ID")
	_ = listAssessmentsCmd.MarkFlagRequired("dealer")
	rootCmd.AddCommand(listAssessmentsCmd)
}

func defaultSQLiteURL() string {
	if url, ok := os.LookupEnv("VETTA_SQLITE_URL"); ok {
		return url
	}
	return "./vetta.sqlite"
}

var rootCmd = &cobra.Command{
	Use:  "vetta-cli",
	Long: `Admin utilities for the Vetta risk-assessment service`,
}

var createDealerCmd = &cobra.Command{
	Use:   "create-dealer",
	Short: "Provision a dealership and print its API key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("name")
		slug, _ := cmd.Flags().GetString("slug")

		dbs, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		dealer, err := repositories.NewDealerRepository(dbs, quietLogger()).Create(cmd.Context(), name, slug)
		if err != nil {
			return err
		}

		cmd.Printf("created dealer %s (%s)\n", dealer.Name, dealer.ID)
		cmd.Printf("API key: %s\n", dealer.APIKey)
		return nil
	},
}

var listAssessmentsCmd = &cobra.Command{
	Use:   "list-assessments",
	Short: "List a dealership's assessments, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, _ := cmd.Flags().GetString("dealer")

		dbs, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() {
			_ = dbs.Close()
		}()

		logger := quietLogger()
		dealer, err := repositories.NewDealerRepository(dbs, logger).GetByKey(cmd.Context(), key)
		if err != nil {
			return err
		}
		assessments, err := repositories.NewAssessmentRepository(dbs, logger).List(cmd.Context(), dealer.ID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tSTATUS\tMODE\tRISK\tCUSTOMER\tCREATED")
		for _, a := range assessments {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				a.ID, a.Status, a.Mode, a.RiskScore, a.CustomerName.String, a.CreatedAt)
		}
		return w.Flush()
	},
}

func openDatabase() (*sqlite.Database, error) {
	return sqlite.NewDatabase(sqliteURL, quietLogger())
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
