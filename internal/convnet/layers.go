package convnet

// Layer is one building block of a network.
type Layer interface {
	// Params returns the number of learnable scalars held by the layer.
	Params() int64
}

// Conv2d is a square-kernel 2D convolution.
type Conv2d struct {
	In     int
	Out    int
	Kernel int
	Bias   bool
}

func (c Conv2d) Params() int64 {
	n := int64(c.In) * int64(c.Out) * int64(c.Kernel) * int64(c.Kernel)
	if c.Bias {
		n += int64(c.Out)
	}
	return n
}

// BatchNorm2d holds an affine weight and bias per channel.
type BatchNorm2d struct {
	Channels int
}

func (b BatchNorm2d) Params() int64 { return 2 * int64(b.Channels) }

// Linear is a fully connected layer.
type Linear struct {
	In   int
	Out  int
	Bias bool
}

func (l Linear) Params() int64 {
	n := int64(l.In) * int64(l.Out)
	if l.Bias {
		n += int64(l.Out)
	}
	return n
}

// ReLU activation.
type ReLU struct{}

func (ReLU) Params() int64 { return 0 }

// MaxPool2d downsamples by taking the maximum over a Kernel x Kernel window.
type MaxPool2d struct {
	Kernel int
}

func (MaxPool2d) Params() int64 { return 0 }

// AvgPool2d averages over a window; Kernel 0 means adaptive pooling to 1x1.
type AvgPool2d struct {
	Kernel int
}

func (AvgPool2d) Params() int64 { return 0 }

// DownsampleA is the parameter-free CIFAR shortcut: strided average pooling followed by
// zero-padding of the channel dimension.
type DownsampleA struct {
	In  int
	Out int
}

func (DownsampleA) Params() int64 { return 0 }
