package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Angabebr/shop-tools/augment"
	"github.com/Angabebr/shop-tools/logger"
)

var augmentFlags struct {
	input    string
	output   string
	imgStyle string
	position string
}

var augmentCmd = &cobra.Command{
	Use:   "augment [input.csv [output.csv]]",
	Short: "Append or prepend <img> tags built from images_url to the description column",
	Args:  cobra.MaximumNArgs(2),
	RunE:  runAugment,
}

func init() {
	f := augmentCmd.Flags()
	f.StringVarP(&augmentFlags.input, "input", "i", "", "Input CSV (default from config: product.csv)")
	f.StringVarP(&augmentFlags.output, "output", "o", "", "Output CSV (default from config: product_updated.csv)")
	f.StringVar(&augmentFlags.imgStyle, "img-style", "", "CSS for generated <img> elements")
	f.StringVar(&augmentFlags.position, "position", "", "Where to place images: append or prepend")
	rootCmd.AddCommand(augmentCmd)
}

func runAugment(cmd *cobra.Command, args []string) error {
	cfg := appConfig.Augment

	input := firstNonEmpty(argAt(args, 0), augmentFlags.input, cfg.Input)
	output := firstNonEmpty(argAt(args, 1), augmentFlags.output, cfg.Output)
	opts := augment.Options{
		Style:     firstNonEmpty(augmentFlags.imgStyle, cfg.ImgStyle),
		Placement: augment.Placement(firstNonEmpty(augmentFlags.position, cfg.Position)),
	}

	if opts.Placement != "" && !opts.Placement.Valid() {
		logger.WarnWithFields("unknown position, descriptions will not be changed", logger.Fields{
			"position": string(opts.Placement),
		})
	}

	res, err := augment.Run(input, output, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✨ Processed %d rows, added %d images\n📁 Input:  %s\n📁 Output: %s\n", res.Rows, res.Images, input, res.Output)
	return nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
