package main

import (
	"github.com/spf13/cobra"

	"rockmass/ml"
)

type rootOptions struct {
	modelPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "rockmass",
		Short:        "Rock mass classification and tunneling method recommendation",
		Long:         "Classify rock mass parameters into a recommended tunneling method and plot the stress curve around the tunnel.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.modelPath, "model", ml.DefaultArtifactPath, "Path to the model artifact")

	cmd.AddCommand(
		newClassifyCmd(opts),
		newPlotCmd(),
		newLabelsCmd(opts),
	)
	return cmd
}

// loadClassifier reads the artifact named by --model.
func (o *rootOptions) loadClassifier() (*ml.Classifier, error) {
	model, err := ml.LoadArtifact(o.modelPath)
	if err != nil {
		return nil, err
	}
	return ml.NewClassifier(model)
}

// addFeatureFlags binds one int flag per slider, defaulting to its slider
// position.
func addFeatureFlags(cmd *cobra.Command, features *ml.FeatureVector) {
	*features = ml.DefaultFeatures()
	flags := cmd.Flags()
	flags.IntVar(&features.RMR, "rmr", features.RMR, "Rock Mass Rating (RMR)")
	flags.IntVar(&features.RQD, "rqd", features.RQD, "Rock Quality Designation (RQD) %")
	flags.IntVar(&features.GSI, "gsi", features.GSI, "Geological Strength Index (GSI)")
	flags.IntVar(&features.UCS, "ucs", features.UCS, "Unconfined Compressive Strength (UCS) MPa")
	flags.IntVar(&features.BTS, "bts", features.BTS, "Brazilian Tensile Strength (BTS) MPa")
}
