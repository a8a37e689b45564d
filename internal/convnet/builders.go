package convnet

import "fmt"

// convBlock is conv3x3(bias) -> bn -> relu -> maxpool(2).
func convBlock(name string, in, out int) Module {
	return Module{
		Name: name,
		Layers: []Layer{
			Conv2d{In: in, Out: out, Kernel: 3, Bias: true},
			BatchNorm2d{Channels: out},
			ReLU{},
			MaxPool2d{Kernel: 2},
		},
	}
}

func convNet2() *Network {
	return &Network{
		Name: "conv2",
		Modules: []Module{
			convBlock("block1", 3, 32),
			convBlock("block2", 32, 64),
		},
		OutDim: 64,
	}
}

func convNet4() *Network {
	return &Network{
		Name: "conv4",
		Modules: []Module{
			convBlock("block1", 3, 128),
			convBlock("block2", 128, 128),
			convBlock("block3", 128, 128),
			convBlock("block4", 128, 512),
		},
		OutDim: 512,
	}
}

// cifarResNet builds the CIFAR ResNet family: a 16-channel stem and three stages of
// (depth-2)/6 basic blocks with 16, 32 and 64 channels. Shortcuts between stages are
// parameter-free.
func cifarResNet(name string, depth int) *Network {
	if (depth-2)%6 != 0 {
		panic(fmt.Sprintf("convnet: cifar resnet depth %d is not 6n+2", depth))
	}
	blocks := (depth - 2) / 6

	net := &Network{
		Name: name,
		Modules: []Module{{
			Name: "stem",
			Layers: []Layer{
				Conv2d{In: 3, Out: 16, Kernel: 3},
				BatchNorm2d{Channels: 16},
				ReLU{},
			},
		}},
		OutDim: 64,
	}

	in := 16
	for i, width := range []int{16, 32, 64} {
		stage := Module{Name: fmt.Sprintf("stage_%d", i+1)}
		for b := 0; b < blocks; b++ {
			if in != width {
				stage.Layers = append(stage.Layers, DownsampleA{In: in, Out: width})
			}
			stage.Layers = append(stage.Layers,
				Conv2d{In: in, Out: width, Kernel: 3},
				BatchNorm2d{Channels: width},
				ReLU{},
				Conv2d{In: width, Out: width, Kernel: 3},
				BatchNorm2d{Channels: width},
			)
			in = width
		}
		net.Modules = append(net.Modules, stage)
	}
	net.Modules[len(net.Modules)-1].Layers = append(net.Modules[len(net.Modules)-1].Layers, AvgPool2d{Kernel: 8})
	return net
}

type blockKind int

const (
	basicBlock blockKind = iota
	bottleneckBlock
)

func (k blockKind) expansion() int {
	if k == bottleneckBlock {
		return 4
	}
	return 1
}

// imagenetResNet builds the ImageNet ResNet family: a 7x7 stem and four stages with 64, 128,
// 256 and 512 planes. A 1x1 projection shortcut is added whenever the stride or the width changes.
func imagenetResNet(name string, kind blockKind, layers [4]int) *Network {
	net := &Network{
		Name: name,
		Modules: []Module{{
			Name: "stem",
			Layers: []Layer{
				Conv2d{In: 3, Out: 64, Kernel: 7},
				BatchNorm2d{Channels: 64},
				ReLU{},
				MaxPool2d{Kernel: 3},
			},
		}},
	}

	exp := kind.expansion()
	in := 64
	for i, planes := range []int{64, 128, 256, 512} {
		stage := Module{Name: fmt.Sprintf("layer%d", i+1)}
		for b := 0; b < layers[i]; b++ {
			stride := 1
			if b == 0 && i > 0 {
				stride = 2
			}
			switch kind {
			case basicBlock:
				stage.Layers = append(stage.Layers,
					Conv2d{In: in, Out: planes, Kernel: 3},
					BatchNorm2d{Channels: planes},
					ReLU{},
					Conv2d{In: planes, Out: planes, Kernel: 3},
					BatchNorm2d{Channels: planes},
				)
			case bottleneckBlock:
				stage.Layers = append(stage.Layers,
					Conv2d{In: in, Out: planes, Kernel: 1},
					BatchNorm2d{Channels: planes},
					ReLU{},
					Conv2d{In: planes, Out: planes, Kernel: 3},
					BatchNorm2d{Channels: planes},
					ReLU{},
					Conv2d{In: planes, Out: planes * exp, Kernel: 1},
					BatchNorm2d{Channels: planes * exp},
				)
			}
			if stride != 1 || in != planes*exp {
				stage.Layers = append(stage.Layers,
					Conv2d{In: in, Out: planes * exp, Kernel: 1},
					BatchNorm2d{Channels: planes * exp},
				)
			}
			stage.Layers = append(stage.Layers, ReLU{})
			in = planes * exp
		}
		net.Modules = append(net.Modules, stage)
	}
	net.Modules[len(net.Modules)-1].Layers = append(net.Modules[len(net.Modules)-1].Layers, AvgPool2d{})
	net.OutDim = in
	return net
}
