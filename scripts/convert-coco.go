//go:build ignore

// Convert a COCO-style detection annotation file into per-image ground truth
// box files. Only categories that name a UI element kind are kept.
// Usage: go run ./scripts/convert-coco.go -in annotations.json -out testdata/ground_truth
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	uieval "github.com/jamesainslie/go-uieval"
	"github.com/jamesainslie/go-uieval/internal/corpus"
)

// cocoFile is the subset of the COCO detection format this script reads.
type cocoFile struct {
	Images []struct {
		ID       int    `json:"id"`
		FileName string `json:"file_name"`
	} `json:"images"`
	Annotations []struct {
		ImageID    int       `json:"image_id"`
		CategoryID int       `json:"category_id"`
		BBox       []float64 `json:"bbox"` // x, y, width, height
	} `json:"annotations"`
	Categories []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
}

func main() {
	in := flag.String("in", "", "COCO annotation file (required)")
	outDir := flag.String("out", "testdata/ground_truth", "output directory")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "error: -in required")
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", *in, err)
		os.Exit(1)
	}

	var coco cocoFile
	if err := json.Unmarshal(data, &coco); err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding %s: %v\n", *in, err)
		os.Exit(1)
	}

	// Category IDs that map onto a known element kind, with the tag to emit.
	tags := make(map[int]string)
	for _, c := range coco.Categories {
		if cat, ok := uieval.ParseCategory(c.Name); ok {
			tags[c.ID] = cat.String()
		} else {
			fmt.Printf("Ignoring category %q\n", c.Name)
		}
	}

	boxes := make(map[int][]uieval.Box)
	dropped := 0
	for _, a := range coco.Annotations {
		tag, ok := tags[a.CategoryID]
		if !ok || len(a.BBox) != 4 {
			dropped++
			continue
		}
		x, y, w, h := a.BBox[0], a.BBox[1], a.BBox[2], a.BBox[3]
		boxes[a.ImageID] = append(boxes[a.ImageID], uieval.Box{
			Tag: tag,
			X1:  x,
			Y1:  y,
			X2:  x + w,
			Y2:  y + h,
		})
	}

	sort.Slice(coco.Images, func(i, j int) bool {
		return coco.Images[i].FileName < coco.Images[j].FileName
	})

	written := 0
	for _, img := range coco.Images {
		base := filepath.Base(img.FileName)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		outPath := filepath.Join(*outDir, stem+".json")

		if err := corpus.Write(outPath, boxes[img.ID]); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outPath, err)
			continue
		}
		written++
	}

	fmt.Printf("\nDone! %d annotation files written to %s (%d annotations dropped)\n", written, *outDir, dropped)
}
