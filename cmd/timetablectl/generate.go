package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	"github.com/noah-isme/tutor-timetable-api/internal/scheduler"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
)

// errUnmetRequirements is returned under --strict when the timetable has conflicts.
var errUnmetRequirements = errors.New("timetable has unmet requirements")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a timetable from a request file",
	Long:  "Reads a schedule request (JSON, or YAML by extension) and prints the generated timetable. Conflicts go to stderr.",
	RunE:  runGenerate,
}

var (
	generateFile   string
	generateFormat string
	generateOut    string
	generateStrict bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "request file (.json, .yaml or .yml) (required)")
	generateCmd.Flags().StringVar(&generateFormat, "format", "table", "output format: table, json or csv")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "write output to this file instead of stdout")
	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "exit non-zero when any requirement is unmet")
	generateCmd.MarkFlagRequired("file") //nolint:errcheck
}

func runGenerate(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(generateFormat)
	if format != "table" && format != "json" && format != "csv" {
		return fmt.Errorf("unsupported format %q", generateFormat)
	}

	req, err := readRequest(generateFile)
	if err != nil {
		return err
	}

	logger := newLogger()
	defer logger.Sync() //nolint:errcheck
	generator := service.NewScheduleGeneratorService(service.ScheduleGeneratorParams{
		Engine: scheduler.NewEngine(scheduler.WithLogger(logger)),
		Logger: logger,
	}, service.ScheduleGeneratorConfig{})

	resp, _, err := generator.Generate(context.Background(), req)
	if err != nil {
		return err
	}

	if generateOut != "" {
		err = writeTimetableFile(generateOut, resp, format)
	} else {
		err = writeTimetable(cmd.OutOrStdout(), resp, format)
	}
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	fmt.Fprintln(errOut, service.Summary(resp))
	for _, conflict := range resp.Conflicts {
		fmt.Fprintf(errOut, "  - %s\n", conflict)
	}
	if generateStrict && !resp.Success {
		return errUnmetRequirements
	}
	return nil
}

// createOutput opens the --out destination.
var createOutput = func(path string) (io.WriteCloser, error) { return os.Create(path) }

func writeTimetableFile(path string, resp *dto.GenerateScheduleResponse, format string) error {
	file, err := createOutput(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := writeTimetable(file, resp, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func readRequest(path string) (dto.GenerateScheduleRequest, error) {
	var req dto.GenerateScheduleRequest
	raw, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("read request: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &req)
	default:
		err = json.Unmarshal(raw, &req)
	}
	if err != nil {
		return req, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if req.UsePeopleStore {
		return req, errors.New("usePeopleStore is not supported offline; inline the people map instead")
	}
	return req, nil
}

func writeTimetable(w io.Writer, resp *dto.GenerateScheduleResponse, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "csv":
		file, err := service.NewExportService(nil, nil).Render(resp, service.ExportFormatCSV)
		if err != nil {
			return err
		}
		_, err = w.Write(file.Body)
		return err
	default:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "DAY\tSTART\tEND\tTYPE\tSUBJECT\tPEOPLE\tLABEL")
		for _, row := range service.TimetableDataset(resp).Rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				row["Day"], row["Start"], row["End"], row["Type"], row["Subject"], row["People"], row["Label"])
		}
		return tw.Flush()
	}
}
