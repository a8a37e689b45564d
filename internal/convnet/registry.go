package convnet

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MemoPrefix decorates a backbone identifier to request its MEMO decomposition.
const MemoPrefix = "memo_"

// ErrUnknownConvnet is returned for identifiers that are not registered.
var ErrUnknownConvnet = errors.New("unknown convnet type")

// Convnet is the result of GetConvnet. Plain identifiers fill Backbone; MEMO identifiers fill
// Generalized and Specialized instead.
type Convnet struct {
	Name        string
	Backbone    *Network
	Generalized *Network
	Specialized *Network
}

// Decomposed reports whether c is a generalized/specialized pair.
func (c Convnet) Decomposed() bool {
	return c.Generalized != nil && c.Specialized != nil
}

type entry struct {
	build func() *Network
	// memoSplit is the index of the first specialized module.
	memoSplit int
}

// Registry resolves backbone identifiers to network descriptions.
type Registry struct {
	entries map[string]entry
}

// NewRegistry returns a Registry holding every backbone used by the experiments.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	r.register("conv2", convNet2, 1)
	r.register("conv4", convNet4, 3)
	r.register("resnet14_cifar", func() *Network { return cifarResNet("resnet14_cifar", 14) }, 3)
	r.register("resnet20_cifar", func() *Network { return cifarResNet("resnet20_cifar", 20) }, 3)
	r.register("resnet26_cifar", func() *Network { return cifarResNet("resnet26_cifar", 26) }, 3)
	r.register("resnet32", func() *Network { return cifarResNet("resnet32", 32) }, 3)
	r.register("resnet10_imagenet", func() *Network { return imagenetResNet("resnet10_imagenet", basicBlock, [4]int{1, 1, 1, 1}) }, 4)
	r.register("resnet18", func() *Network { return imagenetResNet("resnet18", basicBlock, [4]int{2, 2, 2, 2}) }, 4)
	r.register("resnet26_imagenet", func() *Network { return imagenetResNet("resnet26_imagenet", bottleneckBlock, [4]int{2, 2, 2, 2}) }, 4)
	r.register("resnet34_imagenet", func() *Network { return imagenetResNet("resnet34_imagenet", basicBlock, [4]int{3, 4, 6, 3}) }, 4)
	r.register("resnet50_imagenet", func() *Network { return imagenetResNet("resnet50_imagenet", bottleneckBlock, [4]int{3, 4, 6, 3}) }, 4)
	return r
}

// register panics on duplicate names, the same way the estimation engine did for calculators.
func (r *Registry) register(name string, build func() *Network, memoSplit int) {
	if _, ok := r.entries[name]; ok {
		panic(fmt.Sprintf("convnet: %q already registered", name))
	}
	r.entries[name] = entry{build: build, memoSplit: memoSplit}
}

// GetConvnet builds the network for id. A MemoPrefix id returns the generalized/specialized
// pair of the underlying backbone.
func (r *Registry) GetConvnet(id string) (Convnet, error) {
	base, memo := strings.CutPrefix(id, MemoPrefix)
	e, ok := r.entries[base]
	if !ok {
		return Convnet{}, fmt.Errorf("%w: %q", ErrUnknownConvnet, id)
	}
	net := e.build()
	if !memo {
		return Convnet{Name: id, Backbone: net}, nil
	}
	g, s := net.split(e.memoSplit, MemoPrefix)
	return Convnet{Name: id, Generalized: g, Specialized: s}, nil
}

// CountParameters counts net's parameters. It exists so a Registry can be passed wherever
// both lookup and counting are needed.
func (r *Registry) CountParameters(net *Network, trainableOnly bool) int64 {
	return CountParameters(net, trainableOnly)
}

// Names returns the registered base identifiers in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// GetConvnet resolves id against the default registry.
func GetConvnet(id string) (Convnet, error) {
	return defaultRegistry.GetConvnet(id)
}

// Default returns the process-wide registry. It is read-only after construction.
func Default() *Registry {
	return defaultRegistry
}
