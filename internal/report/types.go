package report

import (
	"io"

	"github.com/clbench/exemplar-planner/internal/sweep"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the formats accepted by NewRenderer.
var Formats = []string{string(FormatText), string(FormatJSON), string(FormatYAML), string(FormatCSV), string(FormatXLSX)}

type Renderer interface {
	Render(w io.Writer, rows []sweep.Row) error
	SupportedFormat() Format
}

// Record is the flat form of a row used by the structured formats.
type Record struct {
	Model          string  `json:"model_name"`
	Dataset        string  `json:"dataset"`
	Protocol       string  `json:"prefix"`
	Point          int     `json:"point_idx,omitempty"`
	InitCls        int     `json:"init_cls"`
	Increment      int     `json:"increment"`
	ExtraExemplars int64   `json:"extra_exemplars"`
	TotalExemplars int64   `json:"total_exemplars"`
	ExemplarCostMB float64 `json:"exemplar_cost_mb"`
	TotalParams    int64   `json:"total_params"`
	ParamsM        float64 `json:"params_m"`
	ModelCostMB    float64 `json:"model_cost_mb"`
	CombinedCostMB float64 `json:"combined_cost_mb"`
}

func NewRecord(row sweep.Row) Record {
	cfg, res := row.Config, row.Result
	return Record{
		Model:          cfg.Model.String(),
		Dataset:        cfg.Dataset,
		Protocol:       cfg.Protocol.String(),
		Point:          row.Point,
		InitCls:        cfg.InitCls,
		Increment:      cfg.Increment,
		ExtraExemplars: res.ExtraExemplars,
		TotalExemplars: res.TotalExemplars,
		ExemplarCostMB: res.ExemplarCostMB,
		TotalParams:    res.TotalParams,
		ParamsM:        res.ParamsM(),
		ModelCostMB:    res.ModelCostMB,
		CombinedCostMB: res.CombinedCostMB(),
	}
}

func NewRecords(rows []sweep.Row) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, NewRecord(row))
	}
	return records
}
