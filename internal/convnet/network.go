package convnet

// Module is a named group of layers, e.g. a ResNet stage.
type Module struct {
	Name   string
	Layers []Layer
	// Frozen modules are excluded from trainable-only counts.
	Frozen bool
}

// Params returns the number of learnable scalars in the module.
func (m Module) Params() int64 {
	var n int64
	for _, l := range m.Layers {
		n += l.Params()
	}
	return n
}

// Network is a backbone without its classification head.
type Network struct {
	Name    string
	Modules []Module
	// OutDim is the width of the feature vector produced by the last module.
	OutDim int
}

// Freeze returns a copy of the network with every module frozen.
func (n *Network) Freeze() *Network {
	out := &Network{Name: n.Name, OutDim: n.OutDim, Modules: make([]Module, len(n.Modules))}
	for i, m := range n.Modules {
		m.Frozen = true
		out.Modules[i] = m
	}
	return out
}

// split cuts the network in two at module index at. Both halves share layer slices with n.
func (n *Network) split(at int, prefix string) (*Network, *Network) {
	g := &Network{Name: prefix + n.Name + "/generalized", Modules: n.Modules[:at]}
	s := &Network{Name: prefix + n.Name + "/specialized", Modules: n.Modules[at:], OutDim: n.OutDim}
	if at > 0 {
		g.OutDim = outChannels(n.Modules[at-1])
	}
	return g, s
}

// CountParameters returns the number of learnable scalars in net. With trainableOnly set,
// frozen modules are skipped. A nil network counts as zero.
func CountParameters(net *Network, trainableOnly bool) int64 {
	if net == nil {
		return 0
	}
	var n int64
	for _, m := range net.Modules {
		if trainableOnly && m.Frozen {
			continue
		}
		n += m.Params()
	}
	return n
}

func outChannels(m Module) int {
	for i := len(m.Layers) - 1; i >= 0; i-- {
		switch l := m.Layers[i].(type) {
		case Conv2d:
			return l.Out
		case BatchNorm2d:
			return l.Channels
		case Linear:
			return l.Out
		}
	}
	return 0
}
