package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"trashvision/internal/config"
	"trashvision/internal/notifier"
	"trashvision/internal/training"
)

func newTrainCmd() *cobra.Command {
	var (
		projectName string
		publishName string
		dataDir     string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Upload labeled samples, train the project, and publish the iteration",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return cmdTrain(cmd.Context(), configPath, projectName, publishName, dataDir)
		},
	}

	cmd.Flags().StringVar(&projectName, "project-name", "RecycleSmart", "Custom Vision project name")
	cmd.Flags().StringVar(&publishName, "publish-name", "trashvision-v1", "name to publish the trained iteration under")
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "directory holding Recyclable/ and Nonrecyclable/ sample folders")

	return cmd
}

func cmdTrain(ctx context.Context, configPath, projectName, publishName, dataDir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateTraining(); err != nil {
		return err
	}

	client := training.NewClient(cfg.Training.Endpoint, cfg.Training.Key)
	uploader := training.NewUploader(client)

	project, stats, err := uploader.SyncDataset(ctx, projectName, dataDir)
	if err != nil {
		return fmt.Errorf("syncing dataset: %w", err)
	}
	log.Printf("[UPLOAD] done: %d recyclable, %d nonrecyclable", stats.Recyclable, stats.Nonrecyclable)

	iteration, err := uploader.Train(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("training: %w", err)
	}
	log.Printf("[TRAIN] completed, iteration %s", iteration.ID)

	published := ""
	if cfg.Training.PredictionResourceID != "" {
		if err := client.PublishIteration(ctx, project.ID, iteration.ID, publishName, cfg.Training.PredictionResourceID); err != nil {
			return fmt.Errorf("publishing iteration: %w", err)
		}
		published = publishName
		log.Printf("[PUBLISH] published as %s", publishName)
	} else {
		log.Printf("[PUBLISH] skipped: no prediction resource id configured")
	}

	if cfg.Notifier.TelegramToken != "" {
		nt := notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
		if err := nt.Notify(ctx, notifier.Notification{
			Project:     project.Name,
			Iteration:   iteration.Name,
			PublishName: published,
			Uploaded:    stats.Total(),
		}); err != nil {
			log.Printf("[ERROR] notify: %v", err)
		}
	}

	fmt.Println("Done. Use these values in the server config:")
	fmt.Printf("  prediction.project_id:     %s\n", project.ID)
	if published != "" {
		fmt.Printf("  prediction.published_name: %s\n", published)
	}

	return nil
}
