package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBlobsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "blobs <image>...",
		Short: "Dump the raw text stored in image containers",
		Long: `Print every named text blob read from each container, without
classifying the authoring tool. Useful when an image is reported as Unknown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			images, err := a.open(cmd.Context(), args)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for i, img := range images {
				if i > 0 {
					fmt.Fprintln(w)
				}
				titleColor.Fprintln(w, img.Path)
				if len(img.Blobs) == 0 {
					fmt.Fprintln(w, "(no text blobs)")
				}
				for _, key := range img.Blobs.Keys() {
					keyColor.Fprintf(w, "[%s] ", key)
					fmt.Fprintf(w, "%d bytes\n", len(img.Blobs[key]))
					fmt.Fprintln(w, img.Blobs[key])
				}
				for _, warning := range img.Warnings {
					warnColor.Fprintf(w, "warning: %s\n", warning)
				}
			}
			return nil
		},
	}
}
