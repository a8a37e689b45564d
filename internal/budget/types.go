package budget

import "fmt"

const (
	ProtocolBenchmark = "benchmark"
	ProtocolFair      = "fair"
	ProtocolAUC       = "auc"

	ModelDER  = "der"
	ModelMemo = "memo"
	// ModelICaRL is the single-backbone reference method of the sweeps.
	ModelICaRL = "icarl"
)

// Protocols lists the protocol tags accepted by ParseProtocol.
var Protocols = []string{ProtocolBenchmark, ProtocolFair, ProtocolAUC}

// Protocol is one of Benchmark, Fair or AUC.
type Protocol interface {
	fmt.Stringer
	isProtocol()
}

// Benchmark runs every method with the same exemplar memory. There is nothing to convert.
type Benchmark struct{}

// Fair matches the parameter storage of every method to one backbone per task.
type Fair struct{}

// AUC evaluates one point of the memory/accuracy curve. Point is 1-based; larger points
// use larger backbones.
type AUC struct {
	Point int
}

func (Benchmark) String() string { return ProtocolBenchmark }
func (Fair) String() string      { return ProtocolFair }
func (AUC) String() string       { return ProtocolAUC }

func (Benchmark) isProtocol() {}
func (Fair) isProtocol()      {}
func (AUC) isProtocol()       {}

// ParseProtocol maps a protocol tag to its Protocol. point is only used by auc.
func ParseProtocol(tag string, point int) (Protocol, error) {
	switch tag {
	case ProtocolBenchmark:
		return Benchmark{}, nil
	case ProtocolFair:
		return Fair{}, nil
	case ProtocolAUC:
		return AUC{Point: point}, nil
	default:
		return nil, NewErrConfiguration("prefix", "unknown protocol %q", tag)
	}
}

// Model is one of Baseline, Memo or DER.
type Model interface {
	fmt.Stringer
	isModel()
}

// Baseline is any method that keeps a single backbone for every task (iCaRL, PODNet, COIL, ...).
type Baseline struct {
	Name string
}

// Memo shares a generalized trunk and adds one specialized block per task.
type Memo struct{}

// DER adds one full backbone per task.
type DER struct{}

func (b Baseline) String() string { return b.Name }
func (Memo) String() string       { return ModelMemo }
func (DER) String() string        { return ModelDER }

func (Baseline) isModel() {}
func (Memo) isModel()     {}
func (DER) isModel()      {}

// ParseModel maps a method name to its Model. Names other than memo and der are baselines.
func ParseModel(name string) (Model, error) {
	switch name {
	case "":
		return nil, NewErrConfiguration("model_name", "model name is required")
	case ModelMemo:
		return Memo{}, nil
	case ModelDER:
		return DER{}, nil
	default:
		return Baseline{Name: name}, nil
	}
}

// ExperimentConfig describes one budget computation. It is a value: the Converter never
// modifies it and callers build a fresh one per combination.
type ExperimentConfig struct {
	Dataset    string   `json:"dataset" validate:"required"`
	Protocol   Protocol `json:"prefix"`
	MemorySize int      `json:"memory_size" validate:"gte=0"`
	InitCls    int      `json:"init_cls" validate:"gt=0"`
	Increment  int      `json:"increment" validate:"gt=0"`
	Model      Model    `json:"model_name"`
	// Backbone is the convnet type of the run. Only the fair protocol looks at it.
	Backbone string `json:"convnet_type"`
}

// TaskSchedule is the incremental split of a dataset.
type TaskSchedule struct {
	TotalClasses int
	InitCls      int
	Increment    int
	TaskNum      int
}

// BackboneParamSpec is the parameter count of a backbone: either a single count, or a
// generalized/specialized pair for backbones decomposed the MEMO way. Build it with
// SingleBackbone or BlockBackbone.
type BackboneParamSpec struct {
	Backbone    string
	Params      int64
	Generalized int64
	Specialized int64

	decomposed bool
}

func SingleBackbone(backbone string, params int64) BackboneParamSpec {
	return BackboneParamSpec{Backbone: backbone, Params: params}
}

func BlockBackbone(backbone string, generalized, specialized int64) BackboneParamSpec {
	return BackboneParamSpec{Backbone: backbone, Generalized: generalized, Specialized: specialized, decomposed: true}
}

// Decomposed reports whether the spec holds a generalized/specialized pair.
func (s BackboneParamSpec) Decomposed() bool { return s.decomposed }

// Expanded returns the parameters stored after taskNum tasks: the specialized block is
// replicated per task while the generalized block is stored once. A single backbone is
// replicated as a whole, which is what DER pays.
func (s BackboneParamSpec) Expanded(taskNum int) int64 {
	if s.decomposed {
		return s.Generalized + s.Specialized*int64(taskNum)
	}
	return s.Params * int64(taskNum)
}

// BudgetResult is the outcome of one computation.
type BudgetResult struct {
	ExtraExemplars int64   `json:"extra_exemplars"`
	TotalParams    int64   `json:"total_params"`
	TotalExemplars int64   `json:"total_exemplars"`
	ExemplarCostMB float64 `json:"exemplar_cost_mb"`
	ModelCostMB    float64 `json:"model_cost_mb"`
}

// CombinedCostMB is the memory held by exemplars and model together.
func (r BudgetResult) CombinedCostMB() float64 {
	return r.ExemplarCostMB + r.ModelCostMB
}

// ParamsM is TotalParams in millions.
func (r BudgetResult) ParamsM() float64 {
	return float64(r.TotalParams) / 1e6
}

const bytesPerMB = 1024 * 1024

func toMB(bytes int64) float64 {
	return float64(bytes) / bytesPerMB
}

