package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/clbench/exemplar-planner/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"sigs.k8s.io/yaml"
)

func fairRows(t *testing.T) []sweep.Row {
	t.Helper()
	planner := sweep.NewPlanner(budget.NewParamTable(convnet.Default()))
	jobs, err := planner.Plan(budget.ProtocolFair,
		sweep.Options{InitCls: 10, Increment: 10, MemorySize: budget.DefaultMemorySize},
		sweep.Filter{Datasets: []string{budget.CIFAR100}})
	require.NoError(t, err)
	rows, err := sweep.NewRunner(budget.NewConverter()).Run(context.Background(), jobs)
	require.NoError(t, err)
	return rows
}

func TestNewRenderer(t *testing.T) {
	for _, f := range Formats {
		r, err := NewRenderer(Format(f))
		require.NoError(t, err)
		assert.Equal(t, Format(f), r.SupportedFormat())
	}
	r, err := NewRenderer("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, r.SupportedFormat())

	_, err = NewRenderer("html")
	assert.Error(t, err)
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TextRenderer{}).Render(&buf, fairRows(t)))

	expected := ">>> cifar100-10-10:\n" +
		"icarl, cifar100, 7431, 21.7705078125MB, 0.463504M, 1.76812744140625MB, 23.53863525390625MB\n" +
		"memo, cifar100, 3312, 9.703125MB, 3.626896M, 13.83551025390625MB, 23.53863525390625MB\n"
	assert.Equal(t, expected, buf.String())
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONRenderer{}).Render(&buf, fairRows(t)))

	var records []Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "icarl", records[0].Model)
	assert.Equal(t, "fair", records[0].Protocol)
	assert.Equal(t, int64(5431), records[0].ExtraExemplars)
	assert.Equal(t, 0, records[0].Point)
	assert.NotContains(t, buf.String(), "point_idx")
}

func TestYAMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&YAMLRenderer{}).Render(&buf, fairRows(t)))
	assert.Contains(t, buf.String(), "model_name: memo")

	var records []Record
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, int64(3626896), records[1].TotalParams)
}

func TestCSVRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVRenderer{}).Render(&buf, fairRows(t)))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, []string{"icarl", "cifar100", "fair", "0", "10", "10", "5431", "7431", "21.7705078125",
		"463504", "0.463504", "1.76812744140625", "23.53863525390625"}, lines[1])
}

func TestXLSXRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&XLSXRenderer{}).Render(&buf, fairRows(t)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, "memo", rows[2][0])
	assert.Equal(t, "3312", rows[2][7])
}

func TestLine_AUCPoint(t *testing.T) {
	row := sweep.Row{
		Job: sweep.Job{
			Point: 1,
			Config: budget.ExperimentConfig{
				Dataset: budget.CIFAR100, Protocol: budget.AUC{Point: 1}, Model: budget.DER{},
				InitCls: 10, Increment: 10, MemorySize: budget.DefaultMemorySize,
			},
		},
	}
	res, err := budget.NewConverter().Compute(row.Config)
	require.NoError(t, err)
	row.Result = res
	assert.Equal(t, "der, cifar100, 2348, 6.87890625MB, 0.19584M, 0.7470703125MB, 7.6259765625MB", Line(row))
}

func TestTextRenderer_Sections(t *testing.T) {
	rows := fairRows(t)
	r := &TextRenderer{Sections: []string{">>> cifar100-10-10:", ">>> imagenet100-10-10:"}}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, rows[1:]))
	assert.Equal(t, ">>> cifar100-10-10:\n"+
		"memo, cifar100, 3312, 9.703125MB, 3.626896M, 13.83551025390625MB, 23.53863525390625MB\n"+
		">>> imagenet100-10-10:\n", buf.String())
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1.0", formatFloat(1))
	assert.Equal(t, "2000.0", formatFloat(2000))
	assert.Equal(t, "0.463504", formatFloat(0.463504))
	assert.Equal(t, "21.7705078125", formatFloat(21.7705078125))

	row := sweep.Row{Job: sweep.Job{Config: budget.ExperimentConfig{Dataset: budget.CIFAR100, Model: budget.Memo{}}},
		Result: budget.BudgetResult{TotalExemplars: 2000, TotalParams: 1000000, ExemplarCostMB: 6, ModelCostMB: 3.814697265625}}
	assert.Equal(t, "memo, cifar100, 2000, 6.0MB, 1.0M, 3.814697265625MB, 9.814697265625MB", Line(row))
}
