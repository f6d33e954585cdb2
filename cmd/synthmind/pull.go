package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"synthmind/internal/acquire"
)

func newPullCmd(o *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:     "pull <model-id>...",
		Short:   "Download models into the local store",
		Example: "  synthmind pull distilgpt2\n  synthmind pull google/vit-base-patch16-224 --category vision",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := acquire.ParseCategory(category)
			if err != nil {
				return err
			}
			var progress io.Writer
			if o.cfg.Progress {
				progress = cmd.ErrOrStderr()
			}
			res, err := newResolver(cmd.Context(), o.cfg, o.log, progress)
			if err != nil {
				return err
			}
			if err := res.Provision(); err != nil {
				return err
			}
			for _, id := range args {
				dir, err := res.EnsureLocal(cmd.Context(), id, c)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c, id, dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", string(acquire.ChatModel), "Model category: chat|vision|image")
	cmd.Flags().BoolVar(&o.flags.Progress, "progress", false, "Show per-file download progress")
	cmd.Flags().IntVar(&o.flags.HubParallelism, "parallel", 0, "Concurrent file downloads (default 4)")
	return cmd
}
