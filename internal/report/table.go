package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/clbench/exemplar-planner/internal/sweep"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet written by the XLSX renderer.
const SheetName = "budget"

var header = []string{
	"model_name", "dataset", "prefix", "point_idx", "init_cls", "increment",
	"extra_exemplars", "total_exemplars", "exemplar_cost_mb",
	"total_params", "params_m", "model_cost_mb", "combined_cost_mb",
}

func (rec Record) cells() []any {
	return []any{
		rec.Model, rec.Dataset, rec.Protocol, rec.Point, rec.InitCls, rec.Increment,
		rec.ExtraExemplars, rec.TotalExemplars, rec.ExemplarCostMB,
		rec.TotalParams, rec.ParamsM, rec.ModelCostMB, rec.CombinedCostMB,
	}
}

type CSVRenderer struct{}

func (r *CSVRenderer) SupportedFormat() Format { return FormatCSV }

func (r *CSVRenderer) Render(w io.Writer, rows []sweep.Row) error {
	csvRows := [][]string{header}
	for _, rec := range NewRecords(rows) {
		cells := rec.cells()
		line := make([]string, len(cells))
		for i, c := range cells {
			if f, ok := c.(float64); ok {
				line[i] = formatFloat(f)
				continue
			}
			line[i] = fmt.Sprint(c)
		}
		csvRows = append(csvRows, line)
	}

	writer := csv.NewWriter(w)
	if err := writer.WriteAll(csvRows); err != nil {
		return errors.Wrap(err, "failed to write budget CSV")
	}
	return nil
}

// XLSXRenderer writes a workbook with a single budget sheet.
type XLSXRenderer struct{}

func (r *XLSXRenderer) SupportedFormat() Format { return FormatXLSX }

func (r *XLSXRenderer) Render(w io.Writer, rows []sweep.Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetIndex, err := f.NewSheet(SheetName)
	if err != nil {
		return errors.Wrap(err, "failed to create budget sheet")
	}
	f.SetActiveSheet(sheetIndex)
	_ = f.DeleteSheet("Sheet1")

	for col, name := range header {
		if err := f.SetCellValue(SheetName, cellRef(col, 1), name); err != nil {
			return err
		}
	}
	for i, rec := range NewRecords(rows) {
		for col, value := range rec.cells() {
			if err := f.SetCellValue(SheetName, cellRef(col, i+2), value); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write budget workbook")
	}
	return nil
}

func cellRef(col, row int) string {
	name, _ := excelize.ColumnNumberToName(col + 1)
	return fmt.Sprintf("%s%d", name, row)
}
