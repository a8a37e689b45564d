package results

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clbench/exemplar-planner/internal/budget"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

// Curve is the accuracy after every task.
type Curve struct {
	Top1 []float64 `json:"top1"`
	Top5 []float64 `json:"top5"`
}

// Curves holds the classifier curve and, for methods that have one, the nearest-mean curve.
type Curves struct {
	CNN Curve  `json:"cnn"`
	NME *Curve `json:"nme,omitempty"`
}

// Record is what a training run reports when it finishes.
type Record struct {
	Run         Run     `json:"run"`
	Curves      Curves  `json:"curves"`
	CostSeconds float64 `json:"cost_seconds,omitempty"`
}

// ParseRecord reads a record from YAML or JSON.
func ParseRecord(data []byte) (*Record, error) {
	var rec Record
	if err := yaml.UnmarshalStrict(data, &rec); err != nil {
		return nil, errors.Wrap(err, "failed to parse record")
	}
	if err := rec.Run.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid run")
	}
	if len(rec.Curves.CNN.Top1) == 0 || len(rec.Curves.CNN.Top5) == 0 {
		return nil, errors.New("record has no cnn curve")
	}
	return &rec, nil
}

// Writer appends run results below a results directory.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

type namedCurve struct {
	name string
	accs []float64
}

// AppendCurves appends one row per curve to <dir>/<prefix>/<curve>/<csv name>.csv and
// returns the files written.
func (w *Writer) AppendCurves(run Run, curves Curves) ([]string, error) {
	named := []namedCurve{
		{"cnn_top1", curves.CNN.Top1},
		{"cnn_top5", curves.CNN.Top5},
	}
	if curves.NME != nil {
		named = append(named, namedCurve{"nme_top1", curves.NME.Top1}, namedCurve{"nme_top5", curves.NME.Top5})
	}

	var paths []string
	for _, c := range named {
		path := filepath.Join(w.dir, run.Prefix, c.name, CSVName(run)+".csv")
		if err := appendRow(path, curveRow(run, c.accs)); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	zap.S().Named("results").Infow("recorded curves", "run", ExperimentName(run), "files", len(paths))
	return paths, nil
}

// AppendTime appends the wall-clock seconds of the run to <dir>/times/<prefix>/<csv name>.csv.
func (w *Writer) AppendTime(run Run, seconds float64) (string, error) {
	path := filepath.Join(w.dir, "times", run.Prefix, CSVName(run)+".csv")
	row := []string{run.TimeStr, run.Model, formatFloat(seconds)}
	if err := appendRow(path, row); err != nil {
		return "", err
	}
	return path, nil
}

// curveRow is time,model[,memory_size],acc... where the memory size is only written for
// protocols that change it.
func curveRow(run Run, accs []float64) []string {
	row := []string{run.TimeStr, run.Model}
	if run.Prefix != budget.ProtocolBenchmark {
		row = append(row, strconv.Itoa(run.MemorySize))
	}
	for _, acc := range accs {
		row = append(row, formatFloat(acc))
	}
	return row
}

func appendRow(path string, row []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(row); err != nil {
		return errors.Wrapf(err, "failed to append to %s", path)
	}
	cw.Flush()
	return errors.Wrapf(cw.Error(), "failed to append to %s", path)
}

// formatFloat prints the shortest exact decimal and keeps a ".0" on whole numbers.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
