package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/talentscout/hiring-assistant/internal/export"
	"github.com/talentscout/hiring-assistant/internal/interview"
	"github.com/talentscout/hiring-assistant/internal/logger"
	"github.com/talentscout/hiring-assistant/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSummary     = "View conversation summary"
	PromptDiagnostics = "Run diagnostics"
	PromptExport      = "Export candidates to CSV"
	PromptQuit        = "Quit"
)

var menu = promptui.Select{
	Label: "Interview finished. What next?",
	Items: []string{PromptSummary, PromptDiagnostics, PromptExport, PromptQuit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive screening interview in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("export-file", "e", "candidates.csv", "target file for the CSV export menu action")

	viper.BindPFlag("export-file", runCmd.Flags().Lookup("export-file"))
}

// run drives one interview on stdin/stdout, then offers recruiter actions.
func run(_ *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hiring assistant", zap.String("version", version))

	if err := config.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	st, closeStore, err := newStore(ctx, config, logger)
	if err != nil {
		logger.Fatal("creating a store", zap.Error(err))
	}
	defer closeStore()

	engine := newEngine(newCompleter(ctx, config, logger), st, config, logger)

	fmt.Println("\nAssistant: " + engine.Greeting(ctx))

	scanner := bufio.NewScanner(os.Stdin)
	for engine.Stage() != interview.StageCompleted {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			logger.Info("input closed, ending interview")
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		fmt.Println("\nAssistant: " + engine.ProcessMessage(ctx, input))
	}

	if err := scanner.Err(); err != nil {
		logger.Fatal("reading input", zap.Error(err))
	}

	if err := runMenu(ctx, engine, st); err != nil {
		logger.Fatal("running the menu", zap.Error(err))
	}
}

func runMenu(ctx context.Context, engine *interview.Engine, st store.Store) error {
	for {
		_, choice, err := menu.Run()
		if err != nil {
			// ^C and ^D on the menu mean quit, not failure.
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}

		switch choice {
		case PromptSummary:
			if err := printJSON(engine.Summary()); err != nil {
				return err
			}
		case PromptDiagnostics:
			if err := printJSON(engine.RunDiagnostics(ctx)); err != nil {
				return err
			}
		case PromptExport:
			if err := exportToFile(ctx, st, viper.GetString("export-file")); err != nil {
				return err
			}
		case PromptQuit:
			return nil
		}
	}
}

func printJSON(v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(pretty))

	return nil
}

func exportToFile(ctx context.Context, st store.Store, path string) error {
	records, err := st.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading candidates: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := export.WriteCSV(f, records); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	fmt.Printf("exported %d candidate(s) to %s\n", len(records), path)

	return nil
}
