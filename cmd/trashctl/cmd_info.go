package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"trashvision/internal/config"
	"trashvision/internal/training"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show project, iteration, and tag details",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return cmdInfo(cmd.Context(), configPath)
		},
	}
}

func cmdInfo(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateTraining(); err != nil {
		return err
	}
	if cfg.Prediction.ProjectID == "" {
		return fmt.Errorf("missing required config: prediction.project_id")
	}

	client := training.NewClient(cfg.Training.Endpoint, cfg.Training.Key)
	projectID := cfg.Prediction.ProjectID

	project, err := client.GetProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetching project: %w", err)
	}

	fmt.Printf("Project:  %s\n", project.Name)
	fmt.Printf("ID:       %s\n", project.ID)
	if project.Description != "" {
		fmt.Printf("About:    %s\n", project.Description)
	}
	fmt.Println()

	iterations, err := client.GetIterations(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetching iterations: %w", err)
	}

	fmt.Println("Iterations:")
	published := 0
	for _, it := range iterations {
		fmt.Printf("  %s (%s)\n", it.Name, it.Status)
		if it.PublishName != "" {
			published++
			fmt.Printf("    published as: %s\n", it.PublishName)

			if perf, err := client.GetIterationPerformance(ctx, projectID, it.ID); err == nil {
				fmt.Printf("    precision: %.2f%%  recall: %.2f%%  AP: %.2f%%\n",
					perf.Precision*100, perf.Recall*100, perf.AveragePrecision*100)
			}
		}
	}
	if len(iterations) == 0 {
		fmt.Println("  (none)")
	}
	fmt.Println()

	tags, err := client.GetTags(ctx, projectID)
	if err != nil {
		return fmt.Errorf("fetching tags: %w", err)
	}

	fmt.Println("Tags:")
	for _, t := range tags {
		fmt.Printf("  %s: %d images\n", t.Name, t.ImageCount)
	}
	fmt.Println()

	// Sanity-check that the configured published name actually exists; a
	// mismatch here is what the prediction fallback loop papers over.
	configured := cfg.Prediction.PublishedName
	found := false
	for _, it := range iterations {
		if it.PublishName == configured {
			found = true
			break
		}
	}

	if found {
		fmt.Printf("Configured published name %q exists.\n", configured)
	} else {
		fmt.Printf("WARNING: configured published name %q not found.\n", configured)
		fmt.Println("Available published names:")
		for _, it := range iterations {
			if it.PublishName != "" {
				fmt.Printf("  %s\n", it.PublishName)
			}
		}
	}

	return nil
}
