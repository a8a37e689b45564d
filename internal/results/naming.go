package results

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Run identifies one training run.
type Run struct {
	TimeStr    string `json:"time_str"`
	Dataset    string `json:"dataset" validate:"required"`
	Prefix     string `json:"prefix" validate:"oneof=benchmark fair auc"`
	Model      string `json:"model_name" validate:"required"`
	Convnet    string `json:"convnet_type" validate:"required"`
	Seed       int    `json:"seed"`
	InitCls    int    `json:"init_cls" validate:"gt=0"`
	Increment  int    `json:"increment" validate:"gt=0"`
	MemorySize int    `json:"memory_size" validate:"gte=0"`
}

func (r Run) Validate() error {
	return validator.New().Struct(r)
}

// TimeStr formats t as month-day-hour-minute-second-millisecond.
func TimeStr(t time.Time) string {
	return fmt.Sprintf("%s-%03d", t.Format("0102-15-04-05"), t.Nanosecond()/int(time.Millisecond))
}

// base is the initial class count written in names. Runs whose first task is as large as the
// others are written as B0.
func (r Run) base() int {
	if r.InitCls == r.Increment {
		return 0
	}
	return r.InitCls
}

// ExperimentName is the unique name of the run, used for its log directory.
func ExperimentName(r Run) string {
	return fmt.Sprintf("%s_%s_%s_%d_B%d_Inc%d", r.TimeStr, r.Dataset, r.Convnet, r.Seed, r.base(), r.Increment)
}

// CSVName is the file name shared by every run of the same split, without extension.
func CSVName(r Run) string {
	return fmt.Sprintf("%s_%d_%s_B%d_Inc%d", r.Dataset, r.Seed, r.Convnet, r.base(), r.Increment)
}

// LogDir is the log directory of the run below root.
func LogDir(root string, r Run, debug bool) string {
	if debug {
		root = filepath.Join(root, "debug")
	}
	return filepath.Join(root, r.Prefix, r.Dataset, r.Model, ExperimentName(r))
}
