package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"synthmind/internal/acquire"
	"synthmind/internal/common/fsutil"
	"synthmind/internal/persona"
)

func newSetupCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the model store and persona directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := acquire.NewResolver(o.cfg.ModelsDir, acquire.WithLogger(o.log))
			if err := res.Provision(); err != nil {
				return err
			}
			if err := fsutil.EnsureDir(o.cfg.PersonasDir); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range acquire.Categories {
				fmt.Fprintf(out, "%-7s %s\n", c, filepath.Join(res.Root(), c.DirName()))
			}
			names, err := persona.List(o.cfg.PersonasDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-7s %s (%d found)\n", "persona", o.cfg.PersonasDir, len(names))
			return nil
		},
	}
}
