package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/talentscout/hiring-assistant/internal/export"
	"github.com/talentscout/hiring-assistant/internal/logger"
	"github.com/talentscout/hiring-assistant/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored candidates as CSV, or summarize the pool",
	Run: func(cmd *cobra.Command, _ []string) {
		runExport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "-", "output file, - for stdout")
	exportCmd.Flags().Bool("stats", false, "print pool statistics as JSON instead of CSV")
	exportCmd.Flags().String("email", "", "print all submissions for one candidate email as JSON")
}

func runExport(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st, closeStore, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating a store", zap.Error(err))
	}
	defer closeStore()

	records, err := st.LoadAll(ctx)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	if stats, _ := cmd.Flags().GetBool("stats"); stats {
		if err := printJSON(store.Stats(records)); err != nil {
			logger.Fatal("printing statistics", zap.Error(err))
		}
		return
	}

	if email, _ := cmd.Flags().GetString("email"); email != "" {
		matches := store.FindByEmail(records, email)
		if len(matches) == 0 {
			logger.Fatal("no candidate found", zap.String("email", email))
		}
		if err := printJSON(matches); err != nil {
			logger.Fatal("printing candidate", zap.Error(err))
		}
		return
	}

	output, _ := cmd.Flags().GetString("output")

	out := os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			logger.Fatal("creating output file", zap.Error(err))
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, records); err != nil {
		logger.Fatal("writing export", zap.Error(err))
	}

	if output != "-" {
		fmt.Printf("exported %d candidate(s) to %s\n", len(records), output)
	}
}
