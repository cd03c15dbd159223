package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gogpu/geofield/conversion"
	"github.com/gogpu/geofield/types"
)

var conversionsCmd = &cobra.Command{
	Use:   "conversions",
	Short: "Print the implicit conversion matrix",
	Long: `Prints one row per source type and marks every convertible target type.
With --sample each cell shows a sample value of the row type converted to the
column type.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sample, _ := cmd.Flags().GetBool("sample")
		return writeConversions(cmd.OutOrStdout(), sample)
	},
}

func init() {
	rootCmd.AddCommand(conversionsCmd)
	conversionsCmd.Flags().Bool("sample", false, "Convert a non-zero sample value instead of marking convertible pairs")
}

var samples = map[types.ValueKind]any{
	types.KindBool:      true,
	types.KindInt8:      int8(-3),
	types.KindInt32:     int32(7),
	types.KindInt2:      types.Int2{X: 1, Y: 4},
	types.KindFloat:     float32(0.5),
	types.KindFloat2:    types.Float2{0.25, 0.75},
	types.KindFloat3:    types.Float3{1, 2, 3},
	types.KindColor:     types.ColorGeometry4f{R: 1, G: 0.5, B: 0, A: 1},
	types.KindByteColor: types.ColorGeometry4b{R: 255, G: 128, B: 0, A: 255},
}

func writeConversions(w io.Writer, sample bool) error {
	reg := conversion.Default()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "from\\to")
	for _, to := range types.Kinds {
		fmt.Fprintf(tw, "\t%v", to)
	}
	fmt.Fprintln(tw)
	for _, from := range types.Kinds {
		fmt.Fprintf(tw, "%v", from)
		for _, to := range types.Kinds {
			switch {
			case from == to:
				fmt.Fprint(tw, "\t-")
			case !reg.IsConvertible(from, to):
				fmt.Fprint(tw, "\tno")
			case sample:
				fmt.Fprintf(tw, "\t%v", reg.ConvertValue(from, to, samples[from]))
			default:
				fmt.Fprint(tw, "\tyes")
			}
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
