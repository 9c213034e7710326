package predict

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-uieval/internal/corpus"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
}

// BatchResult summarizes a batch prediction run.
type BatchResult struct {
	Written []string // prediction files written, relative to the output dir
	Failed  []string // images whose prediction failed
}

// Batch predicts every image in imageDir and writes <name>.json files into
// outDir, so that they pair with ground truth files of the same stem. A
// failed image is logged and listed in Failed; the run continues.
func Batch(ctx context.Context, p Predictor, imageDir, outDir string, workers int, logger *slog.Logger) (*BatchResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}

	images, err := ListImages(imageDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, name := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out := strings.TrimSuffix(name, filepath.Ext(name)) + ".json"
			err := predictOne(gctx, p, filepath.Join(imageDir, name), filepath.Join(outDir, out))

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("prediction failed", "image", name, "error", err)
				result.Failed = append(result.Failed, name)
				return nil
			}
			logger.Debug("prediction written", "image", name, "file", out)
			result.Written = append(result.Written, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(result.Written)
	sort.Strings(result.Failed)
	return &result, nil
}

func predictOne(ctx context.Context, p Predictor, imagePath, outPath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	boxes, err := p.Predict(ctx, data)
	if err != nil {
		return err
	}
	return corpus.Write(outPath, boxes)
}

// ListImages returns the image file names directly inside dir, sorted.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
