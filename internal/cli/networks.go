package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/clbench/exemplar-planner/internal/convnet"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

var legalOutputTypes = []string{jsonFormat, yamlFormat}

// NetworkInfo is the parameter breakdown of one registered backbone.
type NetworkInfo struct {
	Name        string `json:"name"`
	Params      int64  `json:"params"`
	Generalized int64  `json:"generalized"`
	Specialized int64  `json:"specialized"`
	OutDim      int    `json:"out_dim"`
}

type NetworksOptions struct {
	GlobalOptions

	Output string
}

func DefaultNetworksOptions() *NetworksOptions {
	return &NetworksOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdNetworks() *cobra.Command {
	o := DefaultNetworksOptions()
	cmd := &cobra.Command{
		Use:   "networks",
		Short: "List the backbones and their parameter counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *NetworksOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *NetworksOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if len(o.Output) > 0 && !funk.Contains(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func (o *NetworksOptions) Run(ctx context.Context, args []string) error {
	infos, err := ListNetworks(convnet.Default())
	if err != nil {
		return err
	}

	switch o.Output {
	case jsonFormat:
		marshalled, err := json.Marshal(infos)
		if err != nil {
			return fmt.Errorf("marshalling networks: %w", err)
		}
		fmt.Fprintf(o.out, "%s\n", string(marshalled))
	case yamlFormat:
		marshalled, err := yaml.Marshal(infos)
		if err != nil {
			return fmt.Errorf("marshalling networks: %w", err)
		}
		fmt.Fprintf(o.out, "%s", string(marshalled))
	default:
		w := tabwriter.NewWriter(o.out, 0, 8, 1, '\t', 0)
		fmt.Fprintln(w, "NAME\tPARAMS\tGENERALIZED\tSPECIALIZED\tOUT_DIM")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", info.Name, info.Params, info.Generalized, info.Specialized, info.OutDim)
		}
		return w.Flush()
	}
	return nil
}

// ListNetworks counts every backbone of reg, whole and split the MEMO way.
func ListNetworks(reg *convnet.Registry) ([]NetworkInfo, error) {
	names := reg.Names()
	infos := make([]NetworkInfo, 0, len(names))
	for _, name := range names {
		whole, err := reg.GetConvnet(name)
		if err != nil {
			return nil, err
		}
		memo, err := reg.GetConvnet(convnet.MemoPrefix + name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, NetworkInfo{
			Name:        name,
			Params:      reg.CountParameters(whole.Backbone, false),
			Generalized: reg.CountParameters(memo.Generalized, false),
			Specialized: reg.CountParameters(memo.Specialized, false),
			OutDim:      whole.Backbone.OutDim,
		})
	}
	return infos, nil
}
