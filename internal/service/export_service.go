package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/tutor-timetable-api/pkg/errors"
	"github.com/noah-isme/tutor-timetable-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var timetableHeaders = []string{"Day", "Start", "End", "Type", "Subject", "People", "Label"}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered timetable ready to be streamed to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders generated timetables into downloadable files.
type ExportService struct {
	csv datasetRenderer
	pdf datasetRenderer
	now func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(csv, pdf datasetRenderer) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter(map[string]float64{
			"Day":     1,
			"Start":   0.7,
			"End":     0.7,
			"Type":    0.9,
			"Subject": 1.6,
			"People":  2.6,
			"Label":   1.5,
		})
	}
	return &ExportService{csv: csv, pdf: pdf, now: time.Now}
}

// Render encodes the timetable in the requested format; an empty format means CSV.
func (s *ExportService) Render(resp *dto.GenerateScheduleResponse, format string) (*ExportFile, error) {
	if resp == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to export")
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}

	var (
		renderer    datasetRenderer
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		renderer, contentType = s.csv, "text/csv"
	case ExportFormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	body, err := renderer.Render(TimetableDataset(resp))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-%s.%s", s.now().UTC().Format("20060102-150405"), format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

// TimetableDataset flattens a timetable into export rows, with conflicts as notes.
func TimetableDataset(resp *dto.GenerateScheduleResponse) export.Dataset {
	rows := make([]map[string]string, 0, len(resp.Blocks))
	for _, block := range resp.Blocks {
		people := block.Person
		if people == "" {
			people = strings.Join(block.People, ", ")
		}
		rows = append(rows, map[string]string{
			"Day":     block.Day,
			"Start":   block.Start,
			"End":     block.End,
			"Type":    block.Type,
			"Subject": block.Subject,
			"People":  people,
			"Label":   block.Label,
		})
	}
	data := export.Dataset{
		Title:   "Weekly Timetable",
		Headers: timetableHeaders,
		Rows:    rows,
	}
	if len(resp.Conflicts) > 0 {
		data.NotesTitle = "Conflicts"
		data.Notes = append([]string(nil), resp.Conflicts...)
	}
	return data
}
