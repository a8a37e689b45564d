package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/clbench/exemplar-planner/internal/sweep"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// NewRenderer returns the renderer of format. An empty format selects text.
func NewRenderer(format Format) (Renderer, error) {
	switch format {
	case "", FormatText:
		return &TextRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatYAML:
		return &YAMLRenderer{}, nil
	case FormatCSV:
		return &CSVRenderer{}, nil
	case FormatXLSX:
		return &XLSXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// TextRenderer prints one line per row under its section header:
//
//	model, dataset, total_exemplars, <exemplar cost>MB, <params>M, <model cost>MB, <combined>MB
//
// When Sections is set every listed header is printed, even one without rows.
type TextRenderer struct {
	Sections []string
}

func (r *TextRenderer) SupportedFormat() Format { return FormatText }

func (r *TextRenderer) Render(w io.Writer, rows []sweep.Row) error {
	if len(r.Sections) == 0 {
		return renderGrouped(w, rows)
	}

	bySection := make(map[string][]sweep.Row, len(r.Sections))
	for _, row := range rows {
		bySection[row.Section] = append(bySection[row.Section], row)
	}
	for _, section := range r.Sections {
		if _, err := fmt.Fprintln(w, section); err != nil {
			return err
		}
		for _, row := range bySection[section] {
			if _, err := fmt.Fprintln(w, Line(row)); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderGrouped(w io.Writer, rows []sweep.Row) error {
	section := ""
	for _, row := range rows {
		if row.Section != "" && row.Section != section {
			section = row.Section
			if _, err := fmt.Fprintln(w, section); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, Line(row)); err != nil {
			return err
		}
	}
	return nil
}

// Line formats one row the way the harness logs it.
func Line(row sweep.Row) string {
	res := row.Result
	return fmt.Sprintf("%s, %s, %d, %sMB, %sM, %sMB, %sMB",
		row.Config.Model, row.Config.Dataset, res.TotalExemplars,
		formatFloat(res.ExemplarCostMB), formatFloat(res.ParamsM()),
		formatFloat(res.ModelCostMB), formatFloat(res.CombinedCostMB()))
}

// formatFloat prints the shortest exact decimal and keeps a ".0" on whole numbers.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

type JSONRenderer struct{}

func (r *JSONRenderer) SupportedFormat() Format { return FormatJSON }

func (r *JSONRenderer) Render(w io.Writer, rows []sweep.Row) error {
	data, err := json.MarshalIndent(NewRecords(rows), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal budget to JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

type YAMLRenderer struct{}

func (r *YAMLRenderer) SupportedFormat() Format { return FormatYAML }

func (r *YAMLRenderer) Render(w io.Writer, rows []sweep.Row) error {
	data, err := yaml.Marshal(NewRecords(rows))
	if err != nil {
		return errors.Wrap(err, "failed to marshal budget to YAML")
	}
	_, err = w.Write(data)
	return err
}
