package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rockmass/ml"
)

func newClassifyCmd(root *rootOptions) *cobra.Command {
	var features ml.FeatureVector
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the recommended tunneling method for the given parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ml.ValidateFeatures(features); err != nil {
				return fmt.Errorf("invalid parameters: %w", err)
			}
			classifier, err := root.loadClassifier()
			if err != nil {
				return err
			}
			recommendation, err := classifier.Classify(features)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recommended Tunneling Method: %s\n", recommendation)
			return nil
		},
	}
	addFeatureFlags(cmd, &features)
	return cmd
}
