package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/promptmeta"
	"github.com/simonhull/promptmeta/internal/config"
)

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := promptmeta.GetVersionInfo()
			if a.cfg.Output != config.OutputText {
				return encode(cmd.OutOrStdout(), a.cfg.Output, info)
			}

			w := cmd.OutOrStdout()
			titleColor.Fprint(w, "promptdump version: ")
			fmt.Fprintln(w, info.Version)
			titleColor.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, info.GitCommit)
			titleColor.Fprint(w, "Build time: ")
			fmt.Fprintln(w, info.BuildTime)
			titleColor.Fprint(w, "Go version: ")
			fmt.Fprintln(w, info.GoVersion)
			return nil
		},
	}
}
