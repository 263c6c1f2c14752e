package training

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// uploadBatchSize is the Custom Vision limit per images/files call.
const uploadBatchSize = 64

// The two folder names under the data dir, doubling as tag names.
const (
	TagRecyclable    = "Recyclable"
	TagNonrecyclable = "Nonrecyclable"
)

// Uploader pushes a labeled sample folder into a Custom Vision project and
// drives training.
type Uploader struct {
	client *Client
}

func NewUploader(client *Client) *Uploader {
	return &Uploader{client: client}
}

// UploadStats reports how many files went up per tag.
type UploadStats struct {
	Recyclable    int
	Nonrecyclable int
}

func (s UploadStats) Total() int { return s.Recyclable + s.Nonrecyclable }

// SyncDataset finds or creates the project, reconciles the two tags, and
// uploads every file under <dataDir>/Recyclable and <dataDir>/Nonrecyclable.
func (u *Uploader) SyncDataset(ctx context.Context, projectName, dataDir string) (*Project, UploadStats, error) {
	var stats UploadStats

	project, err := u.findOrCreateProject(ctx, projectName)
	if err != nil {
		return nil, stats, err
	}

	recyclableTag, err := u.ensureTag(ctx, project.ID, TagRecyclable)
	if err != nil {
		return nil, stats, err
	}
	nonrecyclableTag, err := u.ensureTag(ctx, project.ID, TagNonrecyclable)
	if err != nil {
		return nil, stats, err
	}

	stats.Recyclable, err = u.uploadFolder(ctx, project.ID, filepath.Join(dataDir, TagRecyclable), recyclableTag.ID)
	if err != nil {
		return nil, stats, err
	}
	stats.Nonrecyclable, err = u.uploadFolder(ctx, project.ID, filepath.Join(dataDir, TagNonrecyclable), nonrecyclableTag.ID)
	if err != nil {
		return nil, stats, err
	}

	return project, stats, nil
}

// Train starts a training run and polls until the iteration completes.
func (u *Uploader) Train(ctx context.Context, projectID string) (*Iteration, error) {
	iteration, err := u.client.TrainProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	for iteration.Status != "Completed" {
		if iteration.Status == "Failed" {
			return nil, fmt.Errorf("training failed for iteration %s", iteration.ID)
		}
		log.Printf("[TRAIN] status: %s", iteration.Status)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}

		iteration, err = u.client.GetIteration(ctx, projectID, iteration.ID)
		if err != nil {
			return nil, err
		}
	}

	return iteration, nil
}

func (u *Uploader) findOrCreateProject(ctx context.Context, name string) (*Project, error) {
	projects, err := u.client.GetProjects(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.Name == name {
			log.Printf("[PROJECT] using existing %s (%s)", p.Name, p.ID)
			return &p, nil
		}
	}
	log.Printf("[PROJECT] creating %s", name)
	return u.client.CreateProject(ctx, name)
}

// ensureTag reuses an existing tag regardless of case, creating it only when
// truly absent. Creating a duplicate tag is an API error.
func (u *Uploader) ensureTag(ctx context.Context, projectID, name string) (*Tag, error) {
	tags, err := u.client.GetTags(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		if strings.EqualFold(t.Name, name) {
			return &t, nil
		}
	}
	log.Printf("[TAG] creating %s", name)
	return u.client.CreateTag(ctx, projectID, name)
}

func (u *Uploader) uploadFolder(ctx context.Context, projectID, dir, tagID string) (int, error) {
	entries, err := collectImages(dir, tagID)
	if err != nil {
		return 0, err
	}
	log.Printf("[UPLOAD] %s: %d files", dir, len(entries))

	for i := 0; i < len(entries); i += uploadBatchSize {
		end := i + uploadBatchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := u.client.UploadImages(ctx, projectID, entries[i:end]); err != nil {
			return i, fmt.Errorf("upload %s batch %d: %w", dir, i/uploadBatchSize+1, err)
		}
	}

	return len(entries), nil
}

// collectImages reads every regular file directly under dir and tags it.
func collectImages(dir, tagID string) ([]ImageEntry, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory not found: %w", err)
	}

	var entries []ImageEntry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, err
		}
		entries = append(entries, ImageEntry{
			Name:     de.Name(),
			Contents: data,
			TagIDs:   []string{tagID},
		})
	}

	return entries, nil
}
