package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/synaptica-ai/mobility/pkg/assessment"
	"github.com/synaptica-ai/mobility/pkg/clinical"
	"github.com/synaptica-ai/mobility/pkg/common/config"
	"github.com/synaptica-ai/mobility/pkg/common/logger"
	"github.com/synaptica-ai/mobility/pkg/common/models"
	"github.com/synaptica-ai/mobility/pkg/storage"
	"gopkg.in/yaml.v3"
)

func main() {
	logger.Init("mobility-batch")
	logger.Log.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:   "mobility-batch",
		Short: "Offline mobility assessment scoring",
	}
	rootCmd.PersistentFlags().String("vocabulary", config.Load().VocabularyPath, "Path to a YAML vocabulary file")
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(vocabularyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadVocabulary(cmd *cobra.Command) (clinical.Vocabulary, error) {
	path, _ := cmd.Flags().GetString("vocabulary")
	return clinical.LoadVocabulary(path)
}

func scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSON-lines file of base risk results into Parquet",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")
			output, _ := cmd.Flags().GetString("output")
			strict, _ := cmd.Flags().GetBool("strict")

			vocab, err := loadVocabulary(cmd)
			if err != nil {
				return err
			}

			in, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer in.Close()

			writer, err := storage.NewLakehouseWriter(output)
			if err != nil {
				return err
			}

			summary, scoreErr := score(in, writer, assessment.NewEngine(vocab), assessment.NewValidator(strict))
			if err := writer.Close(); err != nil && scoreErr == nil {
				scoreErr = err
			}
			if scoreErr != nil {
				return scoreErr
			}

			logger.Log.WithFields(map[string]interface{}{
				"input":    input,
				"output":   output,
				"scored":   summary.Scored,
				"rejected": summary.Rejected,
			}).Info("Batch scoring complete")
			fmt.Fprintf(cmd.OutOrStdout(), "scored %d, rejected %d\n", summary.Scored, summary.Rejected)
			return nil
		},
	}
	cmd.Flags().String("input", "", "JSON-lines file of base risk results")
	cmd.Flags().String("output", "assessments.parquet", "Parquet output path")
	cmd.Flags().Bool("strict", false, "Reject unrecognised enum values")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func vocabularyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vocabulary",
		Short: "Print the active vocabulary as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := loadVocabulary(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(vocab)
		},
	}
}

type rowWriter interface {
	Write(row storage.AssessmentRow) error
}

type summary struct {
	Scored   int
	Rejected int
}

const maxLineBytes = 4 * 1024 * 1024

// score assesses one base result per line. Undecodable or invalid lines are
// logged and counted; blank lines are skipped.
func score(r io.Reader, w rowWriter, engine *assessment.Engine, validator assessment.Validator) (summary, error) {
	var s summary
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var base models.BaseRiskResult
		if err := json.Unmarshal([]byte(text), &base); err != nil {
			s.Rejected++
			logger.Log.WithError(err).WithField("line", line).Warn("Skipping undecodable line")
			continue
		}
		if _, err := validator.Validate(base); err != nil {
			s.Rejected++
			logger.Log.WithError(err).WithField("line", line).Warn("Skipping invalid line")
			continue
		}

		row := storage.NewAssessmentRow(fmt.Sprintf("line-%d", line), engine.Augment(base))
		if err := w.Write(row); err != nil {
			return s, err
		}
		s.Scored++
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("read input: %w", err)
	}
	return s, nil
}
