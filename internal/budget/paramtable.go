package budget

import (
	"strings"

	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/dgraph-io/ristretto"
)

// Backbones is the parameter-counting collaborator consulted for backbones that are not
// pre-measured constants.
type Backbones interface {
	GetConvnet(id string) (convnet.Convnet, error)
	CountParameters(net *convnet.Network, trainableOnly bool) int64
}

type datasetProfile struct {
	// imageBytes is the raw size of one stored exemplar.
	imageBytes int64
	baseline   BackboneParamSpec
	curve      []string
}

var (
	cifarCurve = []string{
		"conv2",
		"resnet14_cifar",
		"resnet20_cifar",
		"resnet26_cifar",
		"resnet32",
	}
	imagenetCurve = []string{
		"conv4",
		"resnet10_imagenet",
		"resnet18",
		"resnet26_imagenet",
		"resnet34_imagenet",
		"resnet50_imagenet",
	}

	// Baseline parameter counts are measured once and kept as constants.
	resnet32Params = SingleBackbone("resnet32", 463504)
	resnet18Params = SingleBackbone("resnet18", 11176512)

	profiles = map[string]datasetProfile{
		CIFAR100:     {imageBytes: 32 * 32 * 3, baseline: resnet32Params, curve: cifarCurve},
		ImageNet100:  {imageBytes: 224 * 224 * 3, baseline: resnet18Params, curve: imagenetCurve},
		ImageNet1000: {imageBytes: 224 * 224 * 3, baseline: resnet18Params, curve: imagenetCurve},
	}
)

// ParamTable maps datasets and curve points to backbone parameter counts.
type ParamTable struct {
	backbones Backbones
	// specs caches counted backbones by identifier. Nil disables caching.
	specs *ristretto.Cache
}

// ParamTableOption configures a ParamTable.
type ParamTableOption func(*ParamTable)

// CacheSpecs keeps counted backbones in cache. The cache may be shared between tables
// that use the same collaborator.
func CacheSpecs(cache *ristretto.Cache) ParamTableOption {
	return func(t *ParamTable) {
		t.specs = cache
	}
}

func NewParamTable(backbones Backbones, opts ...ParamTableOption) *ParamTable {
	t := ParamTable{backbones: backbones}
	for _, opt := range opts {
		opt(&t)
	}
	return &t
}

// NewSpecCache returns a cache sized for every registered backbone and its MEMO split.
func NewSpecCache() (*ristretto.Cache, error) {
	return ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 10,
		MaxCost:     1 << 7,
		BufferItems: 64,
	})
}

func (t *ParamTable) cached(id string, count func() (BackboneParamSpec, error)) (BackboneParamSpec, error) {
	if t.specs != nil {
		if v, ok := t.specs.Get(id); ok {
			return v.(BackboneParamSpec), nil
		}
	}
	spec, err := count()
	if err != nil {
		return BackboneParamSpec{}, err
	}
	if t.specs != nil {
		t.specs.Set(id, spec, 1)
	}
	return spec, nil
}

func (t *ParamTable) profile(dataset string) (datasetProfile, error) {
	p, ok := profiles[dataset]
	if !ok {
		return datasetProfile{}, NewErrUnknownDataset(dataset)
	}
	return p, nil
}

// ImageBytes returns the size in bytes of one raw exemplar of dataset.
func (t *ParamTable) ImageBytes(dataset string) (int64, error) {
	p, err := t.profile(dataset)
	if err != nil {
		return 0, err
	}
	return p.imageBytes, nil
}

// Baseline returns the single-backbone reference of dataset.
func (t *ParamTable) Baseline(dataset string) (BackboneParamSpec, error) {
	p, err := t.profile(dataset)
	if err != nil {
		return BackboneParamSpec{}, err
	}
	return p.baseline, nil
}

// CurvePoints returns the number of curve points defined for dataset.
func (t *ParamTable) CurvePoints(dataset string) (int, error) {
	p, err := t.profile(dataset)
	if err != nil {
		return 0, err
	}
	return len(p.curve), nil
}

// Point returns the backbone of a memory/accuracy curve point. Points start at 1 with the
// smallest network.
func (t *ParamTable) Point(dataset string, point int) (BackboneParamSpec, error) {
	p, err := t.profile(dataset)
	if err != nil {
		return BackboneParamSpec{}, err
	}
	if point < 1 || point > len(p.curve) {
		return BackboneParamSpec{}, NewErrPointOutOfRange(dataset, point, len(p.curve))
	}
	return t.Single(p.curve[point-1])
}

// Lookup addresses the table by dataset alone (point 0) or by curve point.
func (t *ParamTable) Lookup(dataset string, point int) (BackboneParamSpec, error) {
	if point == 0 {
		return t.Baseline(dataset)
	}
	return t.Point(dataset, point)
}

// Single counts a plain backbone through the collaborator.
func (t *ParamTable) Single(backbone string) (BackboneParamSpec, error) {
	return t.cached(backbone, func() (BackboneParamSpec, error) {
		net, err := t.backbones.GetConvnet(backbone)
		if err != nil {
			return BackboneParamSpec{}, err
		}
		if net.Decomposed() {
			return BackboneParamSpec{}, NewErrDecomposed(backbone)
		}
		return SingleBackbone(backbone, t.backbones.CountParameters(net.Backbone, false)), nil
	})
}

// Memo counts the generalized and specialized blocks of backbone. The memo prefix is added
// when missing.
func (t *ParamTable) Memo(backbone string) (BackboneParamSpec, error) {
	id := convnet.MemoPrefix + strings.TrimPrefix(backbone, convnet.MemoPrefix)
	return t.cached(id, func() (BackboneParamSpec, error) {
		net, err := t.backbones.GetConvnet(id)
		if err != nil {
			return BackboneParamSpec{}, err
		}
		if !net.Decomposed() {
			return BackboneParamSpec{}, NewErrNotDecomposable(id)
		}
		return BlockBackbone(id,
			t.backbones.CountParameters(net.Generalized, false),
			t.backbones.CountParameters(net.Specialized, false),
		), nil
	})
}
