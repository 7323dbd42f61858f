/*
Copyright © 2025 the storyboard authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/scenezero/storyboard"
	"github.com/scenezero/storyboard/config"
	"github.com/scenezero/storyboard/export"
	"github.com/scenezero/storyboard/sbml"
	"github.com/spf13/cobra"
)

var (
	out       string
	format    string
	raster    bool
	watch     bool
	themeName string
	slidePage string
)

var exportCmd = &cobra.Command{
	Use:   "export [STORYBOARD_FILE]",
	Short: "export storyboard deck",
	Long:  `export storyboard deck written in slide markup to JSON, PDF or PPTX.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		f := args[0]
		cfg, err := config.Load(profile)
		if err != nil {
			return err
		}
		logger, err := newLogger()
		if err != nil {
			return err
		}
		if err := runExport(ctx, f, cfg, logger); err != nil {
			return err
		}
		if !watch {
			return nil
		}
		return watchExport(ctx, f, cfg, logger)
	},
}

func runExport(ctx context.Context, f string, cfg *config.Config, logger *slog.Logger) error {
	b, err := os.ReadFile(f)
	if err != nil {
		return err
	}
	deck := sbml.Parse(string(b))

	pages, err := pageToPages(slidePage, len(deck.Slides))
	if err != nil {
		return err
	}

	themes, _ := storyboard.LoadThemes(cfg.ThemesPath())

	useRaster := raster
	var kept storyboard.Slides
	for _, s := range deck.Slides {
		if !slices.Contains(pages, s.ID) {
			continue
		}
		d, err := cfg.Resolve(s)
		if err != nil {
			return err
		}
		if d.Skip {
			logger.Info("skipped slide", slog.Int("id", s.ID))
			continue
		}
		name := themeName
		if name == "" {
			name = d.Theme
		}
		if name != "" {
			if t := storyboard.FindTheme(themes, name); t != nil {
				s.HTML = t.Apply(s.HTML)
			}
		}
		if d.Raster {
			useRaster = true
		}
		kept = append(kept, s)
	}
	deck.Slides = kept

	fm := export.Format(format)
	output := out
	if output == "" {
		output = export.SafeFilename(deck.Title, fm)
	}

	renderer := storyboard.NewChromeRenderer(storyboard.WithRendererLogger(logger))
	exporter := export.New(
		export.WithExtractor(storyboard.NewExtractor(
			storyboard.WithRenderer(renderer),
			storyboard.WithExtractorLogger(logger),
		)),
		export.WithSnapshotter(storyboard.NewSnapshotter(
			storyboard.WithSnapshotCommand(cfg.SnapshotCommand),
			storyboard.WithSnapshotterLogger(logger),
		)),
		export.WithLogger(logger),
	)

	w, err := os.Create(output)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := exporter.Export(ctx, w, deck, fm, useRaster); err != nil {
		return err
	}
	logger.Info("export completed", slog.String("file", output))
	fmt.Println(output)
	return nil
}

func watchExport(ctx context.Context, f string, cfg *config.Config, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(f); err != nil {
		return err
	}
	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// editors fire bursts of writes per save
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(300*time.Millisecond, func() {
				if err := runExport(ctx, f, cfg, logger); err != nil {
					logger.Error("failed to export", slog.String("error", err.Error()))
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("failed to watch", slog.String("error", err.Error()))
		}
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: derived from the deck title)")
	exportCmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, pdf, pptx)")
	exportCmd.Flags().BoolVarP(&raster, "raster", "", false, "export via whole-slide snapshots instead of structural extraction")
	exportCmd.Flags().BoolVarP(&watch, "watch", "w", false, "watch the input file and re-export on change")
	exportCmd.Flags().StringVarP(&themeName, "theme", "t", "", "theme to apply")
	exportCmd.Flags().StringVarP(&slidePage, "page", "p", "", "slides to export")
}

func pageToPages(page string, total int) ([]int, error) {
	if page == "" {
		// If no page is specified, return all pages
		pages := make([]int, total)
		for i := 0; i < total; i++ {
			pages[i] = i + 1
		}
		return pages, nil
	}

	var result []int
	// Split by comma to handle comma-separated list
	parts := strings.Split(page, ",")

	for _, part := range parts {
		// Check if it's a range (contains "-")
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")

			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}

			start, end := rangeParts[0], rangeParts[1]

			var startPage, endPage int
			var err error

			if start == "" {
				// Open start range: "-5"
				startPage = 1
			} else {
				startPage, err = strconv.Atoi(start)
				if err != nil {
					return nil, fmt.Errorf("invalid page number: %s", start)
				}
			}

			if end == "" {
				// Open end range: "3-"
				endPage = total
			} else {
				endPage, err = strconv.Atoi(end)
				if err != nil {
					return nil, fmt.Errorf("invalid page number: %s", end)
				}
			}

			if startPage < 1 || startPage > total || endPage < 1 || endPage > total || startPage > endPage {
				return nil, fmt.Errorf("invalid page range: %s (total pages: %d)", part, total)
			}

			for i := startPage; i <= endPage; i++ {
				result = append(result, i)
			}
		} else {
			pageNum, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid page number: %s", part)
			}

			if pageNum < 1 || pageNum > total {
				return nil, fmt.Errorf("page number out of range: %d (total pages: %d)", pageNum, total)
			}

			result = append(result, pageNum)
		}
	}

	return result, nil
}
