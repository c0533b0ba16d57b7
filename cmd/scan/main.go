// Command scan runs the originality pipeline against local files without
// postgres or redis: results live in process memory and are printed as a
// report. It talks to the same reference providers as the worker. The
// submit subcommand instead hands the document to the worker fleet over
// the scan queue.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/paperlens/originality/internal/config"
	"github.com/paperlens/originality/internal/core/classify"
	"github.com/paperlens/originality/internal/core/domain"
	"github.com/paperlens/originality/internal/core/normalize"
	"github.com/paperlens/originality/internal/core/ports"
	"github.com/paperlens/originality/internal/core/similarity"
	"github.com/paperlens/originality/internal/core/usecase"
	cachemem "github.com/paperlens/originality/internal/infrastructure/cache/memory"
	"github.com/paperlens/originality/internal/infrastructure/extractor"
	"github.com/paperlens/originality/internal/infrastructure/gateway"
	"github.com/paperlens/originality/internal/infrastructure/providers"
	natsqueue "github.com/paperlens/originality/internal/infrastructure/queue/nats"
	storemem "github.com/paperlens/originality/internal/infrastructure/repository/memory"
	"github.com/paperlens/originality/internal/observability/logging"
)

func main() {
	root := &cobra.Command{
		Use:           "scan",
		Short:         "Originality scanning from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newFileCommand(), newCompareCommand(), newSubmitCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newFileCommand() *cobra.Command {
	var owner string
	var strategyName string

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Scan one document (txt, md or pdf) against the reference providers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := extractor.FromFile(args[0])
			if err != nil {
				return err
			}

			cfg := config.Load()
			cfg.ScoringStrategy = strategyName
			scanUC, err := buildScanUseCase(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.ScanTimeoutSeconds)*time.Second)
			defer cancel()

			scan, err := scanUC.StartScan(ctx, args[0], owner, content)
			if err != nil {
				return err
			}
			printReport(cmd, scan)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "cli", "owner identity for memoization")
	cmd.Flags().StringVar(&strategyName, "strategy", "ensemble", "scoring strategy: ensemble or a provider name")
	return cmd
}

func newCompareCommand() *cobra.Command {
	var windowSize int

	cmd := &cobra.Command{
		Use:   "compare <new-draft> <prior-draft>",
		Short: "Compare two drafts by fingerprint overlap",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newDraft, err := extractor.FromFile(args[0])
			if err != nil {
				return err
			}
			priorDraft, err := extractor.FromFile(args[1])
			if err != nil {
				return err
			}

			norm := normalize.New(normalize.Rules{})
			comparison, err := usecase.NewDraftCompareUseCase(norm, windowSize).
				CompareDrafts(cmd.Context(), newDraft, priorDraft)
			if err != nil {
				return err
			}

			cmd.Printf("fingerprint overlap: %.1f%%\n", comparison.FingerprintOverlap)
			cmd.Printf("word coverage:       %.1f%%\n", comparison.WordCoverage)
			return nil
		},
	}
	cmd.Flags().IntVar(&windowSize, "window", 0, "fingerprint window size in words (0 = default)")
	return cmd
}

func newSubmitCommand() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Enqueue a document on the scan queue for the worker fleet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := extractor.FromFile(args[0])
			if err != nil {
				return err
			}

			cfg := config.Load()
			queue, err := natsqueue.New(cfg.NATSURL, cfg.NATSRequestSubject, cfg.NATSCompletedSubject)
			if err != nil {
				return err
			}
			defer queue.Close()

			err = queue.PublishScanRequest(cmd.Context(), ports.ScanRequest{
				SubjectID: args[0],
				OwnerID:   owner,
				Content:   content,
			})
			if err != nil {
				return err
			}
			cmd.Printf("submitted %s to %s\n", args[0], cfg.NATSRequestSubject)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "cli", "owner identity for memoization")
	return cmd
}

func buildScanUseCase(cfg config.Config) (*usecase.ScanUseCase, error) {
	logger := logging.NewTextLogger("scan-cli", cfg.LogLevel)

	rules, err := config.LoadRules(cfg.ScanRulesPath)
	if err != nil {
		return nil, err
	}
	norm := normalize.New(normalize.Rules{
		StopWords:        rules.StopWords,
		AcademicPhrases:  rules.AcademicPhrases,
		MinSentenceChars: rules.MinSentenceChars,
	})

	// The CLI scores on surface signals only; embedding backends stay a
	// worker concern.
	scorer := similarity.New(norm, nil, nil, similarity.Config{}, logger)
	var strategy usecase.ScoringStrategy
	if cfg.ScoringStrategy == "" || cfg.ScoringStrategy == "ensemble" {
		strategy = usecase.NewEnsembleStrategy(scorer)
	} else {
		strategy = usecase.NewSingleProviderStrategy(scorer, cfg.ScoringStrategy)
	}

	sourceGateway := gateway.NewMulti(
		[]ports.SourceProvider{
			providers.NewCrossRef(cfg.CrossrefMailto),
			providers.NewSemanticScholar(cfg.SemanticScholarAPIKey),
			providers.NewSerper(cfg.SerperAPIKey),
		},
		gateway.Config{
			CallInterval:     time.Duration(cfg.GatewayCallIntervalMS) * time.Millisecond,
			MaxSentenceRunes: cfg.GatewayMaxSentenceRunes,
		},
		logger,
		nil,
	)

	return usecase.NewScanUseCase(
		storemem.NewStore(),
		sourceGateway,
		strategy,
		classify.New(norm, classify.DefaultConfig()),
		norm,
		cachemem.NewCache(),
		usecase.ScanConfig{
			RetentionFloor:  cfg.RetentionFloor,
			SentenceTimeout: time.Duration(cfg.SentenceTimeoutSeconds) * time.Second,
		},
		logger,
	), nil
}

func printReport(cmd *cobra.Command, scan *domain.Scan) {
	cmd.Printf("scan %s\n", scan.ID)
	cmd.Printf("overall score:  %.1f%%\n", scan.OverallScore)
	cmd.Printf("classification: %s\n", scan.Classification)
	cmd.Printf("matches:        %d\n", len(scan.Matches))
	for _, match := range scan.Matches {
		cmd.Printf("\n  [%s] %.1f%% (confidence %.0f)\n", match.Classification, match.SimilarityScore, match.Confidence)
		cmd.Printf("  sentence: %s\n", match.SentenceText)
		cmd.Printf("  source:   %s (%s)\n", match.SourceURL, match.SourceDatabase)
	}
}
