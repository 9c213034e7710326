package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-uieval/predict"
)

var (
	predictImages  string
	predictOut     string
	predictWorkers int
	predictModel   string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate prediction files for a directory of screenshots",
	Long: `Send every image in --images to the vision model and write one
<name>.json box file per image to --out, ready for "uieval evaluate".

The API key is read from OPENAI_API_KEY or predict.api_key in the config.

Examples:
  uieval predict --images screenshots --out predictions
  uieval predict --images screenshots --out predictions --model gpt-4o-mini --workers 8`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictImages, "images", "", "image directory (required)")
	predictCmd.Flags().StringVar(&predictOut, "out", "", "output directory for prediction files (required)")
	predictCmd.Flags().IntVar(&predictWorkers, "workers", 0, "concurrent requests (default from config, 4)")
	predictCmd.Flags().StringVar(&predictModel, "model", "", "model name (default from config, gpt-4o)")
	_ = predictCmd.MarkFlagRequired("images")
	_ = predictCmd.MarkFlagRequired("out")
}

func runPredict(cmd *cobra.Command, args []string) error {
	if !cmd.Flags().Changed("workers") {
		predictWorkers = cfg.Predict.Workers
	}

	client, err := newPredictClient()
	if err != nil {
		return err
	}

	res, err := predict.Batch(cmd.Context(), client, predictImages, predictOut, predictWorkers, logger)
	if err != nil {
		return fmt.Errorf("batch prediction: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d prediction files to %s\n", len(res.Written), predictOut)
	if len(res.Failed) > 0 {
		fmt.Fprintf(out, "Failed: %d\n", len(res.Failed))
		for _, name := range res.Failed {
			fmt.Fprintf(out, "  %s\n", name)
		}
	}
	return nil
}

func newPredictClient() (*predict.Client, error) {
	model := cfg.Predict.Model
	if predictModel != "" {
		model = predictModel
	}

	opts := []predict.Option{
		predict.WithModel(model),
		predict.WithMaxTokens(cfg.Predict.MaxTokens),
		predict.WithMaxSide(cfg.Predict.MaxSide),
		predict.WithPrompt(cfg.Predict.Prompt),
		predict.WithLogger(logger),
	}
	if cfg.Predict.BaseURL != "" {
		opts = append(opts, predict.WithBaseURL(cfg.Predict.BaseURL))
	}

	client, err := predict.NewClient(cfg.Predict.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("create prediction client: %w", err)
	}
	return client, nil
}
