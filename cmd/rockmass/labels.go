package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLabelsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the tunneling methods the model can recommend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, err := root.loadClassifier()
			if err != nil {
				return err
			}
			for _, label := range classifier.Labels() {
				fmt.Fprintln(cmd.OutOrStdout(), label)
			}
			return nil
		},
	}
}
