// Package export renders the task table as JSON, CSV or PDF.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nibzard/todo-go/internal/task"
)

// Lister returns the tasks to export.
type Lister interface {
	All(ctx context.Context) ([]task.Task, error)
}

// Formats returns the supported format names.
func Formats() []string {
	return []string{"json", "csv", "pdf"}
}

// Exporter writes reports of the tasks returned by a Lister.
type Exporter struct {
	src Lister
	now func() time.Time
}

func New(src Lister) *Exporter {
	return &Exporter{src: src, now: time.Now}
}

// Write renders every task in format to w.
func (e *Exporter) Write(ctx context.Context, format string, w io.Writer) error {
	all, err := e.src.All(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return writeJSON(w, all)
	case "csv":
		return writeCSV(w, all)
	case "pdf":
		return writePDF(w, all, e.now())
	default:
		return fmt.Errorf("unknown export format %q (expected %s)", format, strings.Join(Formats(), "|"))
	}
}

func writeJSON(w io.Writer, tasks []task.Task) error {
	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func writeCSV(w io.Writer, tasks []task.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "description", "priority"}); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := cw.Write([]string{strconv.Itoa(t.ID), t.Title, t.Description, t.Priority.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// priorityRGB matches the list screen colours.
var priorityRGB = map[task.Priority][3]int{
	task.PriorityHigh:   {231, 76, 60},
	task.PriorityMedium: {241, 196, 15},
	task.PriorityLow:    {46, 204, 113},
	task.PriorityNone:   {160, 160, 160},
}

func writePDF(w io.Writer, tasks []task.Task, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, fmt.Sprintf("%d tasks, generated %s", len(tasks), now.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	for _, t := range tasks {
		rgb := priorityRGB[t.Priority]
		pdf.SetFillColor(rgb[0], rgb[1], rgb[2])
		pdf.Circle(pdf.GetX()+2, pdf.GetY()+3, 1.5, "F")
		pdf.SetX(pdf.GetX() + 6)

		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("#%d %s [%s]", t.ID, t.Title, t.Priority)), "0", "L", false)
		if t.Description != "" {
			pdf.SetFont("Arial", "", 10)
			pdf.SetX(pdf.GetX() + 6)
			pdf.MultiCell(0, 5, tr(t.Description), "0", "L", false)
		}
		pdf.Ln(2)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
