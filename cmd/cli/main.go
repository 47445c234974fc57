package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/artistpay/settler/internal/adapter/ingest"
	postgresRepo "github.com/artistpay/settler/internal/adapter/repository/postgres"
	"github.com/artistpay/settler/internal/domain"
	"github.com/artistpay/settler/internal/usecase"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "settler",
		Short: "Artist settlement CLI",
		Long:  `A command line interface for running settlement batches and inspecting results.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the settler API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(reportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// runCmd executes a settlement batch locally from CSV exports, without a
// running server.
func runCmd() *cobra.Command {
	var (
		revenuePath string
		costPath    string
		workers     int
		tolerance   string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a settlement batch from CSV ledgers",
		RunE: func(cmd *cobra.Command, args []string) error {
			revenue, cost, declared, err := ingest.LoadLedgers(revenuePath, costPath)
			if err != nil {
				return err
			}

			opts := []usecase.BatchOption{usecase.WithWorkers(workers)}
			if t, err := decimal.NewFromString(tolerance); err == nil {
				opts = append(opts, usecase.WithTolerance(t))
			}

			idGen := postgresRepo.NewULIDGenerator()
			settlementUC := usecase.NewSettlementUseCase(idGen)
			batchUC := usecase.NewBatchUseCase(settlementUC, idGen, zerolog.Nop(), opts...)

			run, err := batchUC.Run(cmd.Context(), usecase.RunInput{
				Revenue:  revenue,
				Cost:     cost,
				Declared: declared,
			})
			if err != nil {
				return err
			}

			if asJSON {
				printJSON(run)
				return nil
			}

			printRunSummary(run)
			return nil
		},
	}

	cmd.Flags().StringVar(&revenuePath, "revenue", "", "Path to the revenue ledger CSV")
	cmd.Flags().StringVar(&costPath, "costs", "", "Path to the cost ledger CSV")
	cmd.Flags().IntVar(&workers, "workers", 4, "Number of concurrent workers")
	cmd.Flags().StringVar(&tolerance, "tolerance", "1", "Reconciliation tolerance")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run as JSON")
	cmd.MarkFlagRequired("revenue")
	cmd.MarkFlagRequired("costs")

	return cmd
}

// reportCmd fetches a persisted run from the API.
func reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <run-id>",
		Short: "Fetch a persisted run from the API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			resp, err := client.Get(baseURL + "/api/v1/runs/" + args[0])
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(body))
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			printJSON(result)
			return nil
		},
	}
}

func printRunSummary(run *domain.BatchRun) {
	fmt.Printf("Run %s: %d artists, %d settled, %d failed\n",
		run.ID, run.Result.TotalArtists, len(run.Result.Succeeded), len(run.Result.Failed))

	for _, s := range run.Result.Succeeded {
		fmt.Printf("  %-30s revenue %12s payable %12s\n",
			truncate(s.Artist, 30), s.TotalRevenue.StringFixed(2), s.Distribution.PayableAmount.StringFixed(2))
	}

	for _, f := range run.Result.Failed {
		fmt.Printf("  %-30s FAILED: %s\n", truncate(f.Artist, 30), f.Reason)
	}

	for _, a := range run.Result.NotAttempted {
		fmt.Printf("  %-30s NOT ATTEMPTED\n", truncate(a, 30))
	}

	if run.Reconciliation != nil {
		status := "PASSED"
		if !run.Reconciliation.Matches {
			status = "FAILED"
		}
		fmt.Printf("Reconciliation %s (tolerance %s)\n", status, run.Reconciliation.Tolerance)

		for _, c := range run.Reconciliation.Checks {
			fmt.Printf("  %s: declared %s recomputed %s delta %s\n",
				c.Name, c.Declared, c.Recomputed, c.Delta)
		}
	}
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
