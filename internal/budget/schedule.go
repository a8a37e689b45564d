package budget

const (
	CIFAR100     = "cifar100"
	ImageNet100  = "imagenet100"
	ImageNet1000 = "imagenet1000"
)

var totalClasses = map[string]int{
	CIFAR100:     100,
	ImageNet100:  100,
	ImageNet1000: 1000,
}

// Resolve derives the task schedule of a class-incremental split: one initial task with
// initCls classes followed by tasks of increment classes each. The remaining classes must
// divide evenly.
func Resolve(dataset string, initCls, increment int) (TaskSchedule, error) {
	total, ok := totalClasses[dataset]
	if !ok {
		return TaskSchedule{}, NewErrConfiguration("dataset", "unsupported dataset %q", dataset)
	}
	if initCls <= 0 || initCls > total {
		return TaskSchedule{}, NewErrConfiguration("init_cls", "%d must be in 1-%d for %s", initCls, total, dataset)
	}
	if increment <= 0 {
		return TaskSchedule{}, NewErrConfiguration("increment", "%d must be positive", increment)
	}

	remaining := total - initCls
	if remaining%increment != 0 {
		return TaskSchedule{}, NewErrConfiguration("increment",
			"task count must be integral: %d remaining classes of %s are not a multiple of %d", remaining, dataset, increment)
	}

	return TaskSchedule{
		TotalClasses: total,
		InitCls:      initCls,
		Increment:    increment,
		TaskNum:      remaining/increment + 1,
	}, nil
}
