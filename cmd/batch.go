package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/veracity/internal/detector"
	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/report"
)

var (
	textExtensions  = map[string]bool{".txt": true, ".md": true}
	imageExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".webp": true, ".bmp": true, ".tif": true, ".tiff": true,
	}
)

type batchFiles struct {
	textNames  []string
	texts      []string
	images     []detector.ImageInput
	unreadable []report.Row
}

func batchCommand() *cobra.Command {
	var (
		xlsxPath string
		language string
		noFaces  bool
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Analyse every text and image file in a directory",
		Long: `Analyse every .txt/.md file as text and every image file as an image.
Files are processed one at a time; a failing file is reported and the batch
continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectBatch(args[0])
			if err != nil {
				return err
			}

			comps, err := newCLIComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			ctx := cmd.Context()
			rows := make([]report.Row, 0, len(files.texts)+len(files.images)+len(files.unreadable))

			for _, item := range comps.Service.AnalyzeTextBatch(ctx, files.texts, language) {
				name := files.textNames[item.Index]
				if item.Err != nil {
					rows = append(rows, errorRow(name, domain.KindText, item.Err))
					continue
				}
				rows = append(rows, textRow(name, *item.Result))
			}

			for _, item := range comps.Service.AnalyzeImageBatch(ctx, files.images, !noFaces) {
				if item.Err != nil {
					rows = append(rows, errorRow(item.Name, domain.KindImage, item.Err))
					continue
				}
				rows = append(rows, imageRow(item.Name, *item.Result))
			}
			rows = append(rows, files.unreadable...)

			report.Table(cmd.OutOrStdout(), rows)

			if xlsxPath != "" {
				if err = report.WriteXLSX(xlsxPath, rows); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", xlsxPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write results to an Excel workbook")
	cmd.Flags().StringVarP(&language, "language", "l", "en", "BCP 47 language tag for text files")
	cmd.Flags().BoolVar(&noFaces, "no-faces", false, "skip face detection for images")
	return cmd
}

// collectBatch reads the supported files of dir in name order.
func collectBatch(dir string) (batchFiles, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return batchFiles{}, fmt.Errorf("read batch dir: %w", err)
	}

	var files batchFiles
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !textExtensions[ext] && !imageExtensions[ext] {
			continue
		}

		data, readErr := os.ReadFile(filepath.Join(dir, name))
		switch {
		case readErr != nil && textExtensions[ext]:
			files.unreadable = append(files.unreadable, errorRow(name, domain.KindText, readErr))
		case readErr != nil:
			files.unreadable = append(files.unreadable, errorRow(name, domain.KindImage, readErr))
		case textExtensions[ext]:
			files.textNames = append(files.textNames, name)
			files.texts = append(files.texts, string(data))
		default:
			files.images = append(files.images, detector.ImageInput{Name: name, Data: data})
		}
	}
	return files, nil
}
