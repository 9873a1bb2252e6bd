package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"rockmass/ml"
	"rockmass/stress"
)

func newPlotCmd() *cobra.Command {
	var (
		features ml.FeatureVector
		format   string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the stress curve chart",
		Long:  "Render the 2D stress curve around the tunnel as SVG or PNG. Use --output - to write to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := stress.ParseFormat(format)
			if err != nil {
				return err
			}
			if err := ml.ValidateFeatures(features); err != nil {
				return fmt.Errorf("invalid parameters: %w", err)
			}
			if output == "" {
				output = "stress." + string(f)
			}

			render := func(w io.Writer) error {
				if err := stress.Render(w, stress.Compute(features), f); err != nil {
					return fmt.Errorf("render chart: %w", err)
				}
				return nil
			}
			if output == "-" {
				return render(cmd.OutOrStdout())
			}
			if err := writeFile(output, render); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	addFeatureFlags(cmd, &features)
	cmd.Flags().StringVar(&format, "format", string(stress.SVG), "Image format (svg, png)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default stress.<format>)")
	return cmd
}

// writeFile creates path and fills it with write. The file is removed again
// if write or Close fails, so no partial chart is left behind.
func writeFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()

	err = write(file)
	return multierr.Append(err, file.Close())
}
