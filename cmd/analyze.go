package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jonesrussell/veracity/internal/domain"
	"github.com/jonesrussell/veracity/internal/report"
)

var errNoInput = errors.New("provide text as an argument or with --file")

func analyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyse a single text or image",
	}
	cmd.AddCommand(analyzeTextCommand())
	cmd.AddCommand(analyzeImageCommand())
	return cmd
}

func analyzeTextCommand() *cobra.Command {
	var (
		file     string
		language string
	)

	cmd := &cobra.Command{
		Use:   "text [text]",
		Short: "Score a text for likely fabrication",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textInput(args, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			comps, err := newCLIComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			res, err := comps.Service.AnalyzeText(cmd.Context(), text, language)
			if err != nil {
				return fmt.Errorf("analyze text: %w", err)
			}

			row := textRow("input", res)
			return writeResult(cmd.OutOrStdout(), res, row)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read text from file (- for stdin)")
	cmd.Flags().StringVarP(&language, "language", "l", "en", "BCP 47 language tag")
	return cmd
}

func analyzeImageCommand() *cobra.Command {
	var noFaces bool

	cmd := &cobra.Command{
		Use:   "image <path>",
		Short: "Score an image for likely manipulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			comps, err := newCLIComponents()
			if err != nil {
				return err
			}
			defer comps.Close()

			res, err := comps.Service.AnalyzeImage(cmd.Context(), data, !noFaces)
			if err != nil {
				return fmt.Errorf("analyze image: %w", err)
			}

			row := imageRow(args[0], res)
			return writeResult(cmd.OutOrStdout(), res, row)
		},
	}
	cmd.Flags().BoolVar(&noFaces, "no-faces", false, "skip face detection and artifact analysis")
	return cmd
}

// textInput picks the positional argument, a file, or stdin.
func textInput(args []string, file string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(data), nil
	default:
		return "", errNoInput
	}
}

// writeResult prints the full result as JSON or a one-row table.
func writeResult(w io.Writer, result any, row report.Row) error {
	if viper.GetString("output") == outputTable {
		report.Table(w, []report.Row{row})
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func textRow(name string, res domain.TextResult) report.Row {
	return report.Row{
		Item:       name,
		Kind:       domain.KindText,
		Verdict:    string(res.Explanation.Verdict),
		Confidence: res.Score.Confidence,
		Score:      res.Score.RawScore,
		Method:     res.Score.Method,
	}
}

func imageRow(name string, res domain.ImageResult) report.Row {
	method := res.Score.Method
	if res.FaceCount > 0 {
		method = fmt.Sprintf("%s (%d faces)", method, res.FaceCount)
	}
	return report.Row{
		Item:       name,
		Kind:       domain.KindImage,
		Verdict:    string(res.Explanation.Verdict),
		Confidence: res.Score.Confidence,
		Score:      res.Score.RawScore,
		Method:     method,
	}
}

func errorRow(name, kind string, err error) report.Row {
	return report.Row{Item: name, Kind: kind, Error: strings.TrimSpace(err.Error())}
}
