package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/config"
	"github.com/Shailesh0209/whole-youtube-channel-transcription/youtube"
)

func (a *app) newInfoCmd(opts *options, flags *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the metadata table for the listed videos without processing them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := a.resolveConfig(cmd, opts, flags)
			if err != nil {
				return err
			}
			log := a.newLogger(opts.verbose)

			ids, err := youtube.ReadVideoIDs(cfg.VideoIDsFile)
			if err != nil {
				return &config.Error{Key: "video_ids_file", Err: err}
			}
			if len(ids) == 0 {
				return &config.Error{Key: "video_ids_file", Err: fmt.Errorf("%w in %s", youtube.ErrNoVideoIDs, cfg.VideoIDsFile)}
			}

			client, _ := a.newHTTPClient(cfg)
			meta := a.fetchMetadata(cmd.Context(), cfg, client, ids, log)
			return printVideoTable(a.stdout, ids, meta)
		},
	}
}

func (a *app) newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List the GPUs available for transcription",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			accels, err := a.deps.probe().Accelerators(cmd.Context())
			if err != nil {
				return fmt.Errorf("list devices: %w", err)
			}
			if len(accels) == 0 {
				fmt.Fprintln(a.stdout, "No GPU detected; transcription will run on CPU.")
				return nil
			}
			for _, acc := range accels {
				fmt.Fprintf(a.stdout, "GPU %d: %s\n", acc.Index, acc.Name)
			}
			return nil
		},
	}
}

func (a *app) newListCmd(opts *options, flags *config.Config) *cobra.Command {
	var out string
	var limit int

	cmd := &cobra.Command{
		Use:   "list <channel-url>",
		Short: "Write a channel's video IDs to a file that a batch can read",
		Example: `  ytscribe list https://www.youtube.com/@somechannel --out ids.txt
  ytscribe -i ids.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return &config.Error{Key: "config", Err: err}
			}
			applyFlags(cmd, cfg, flags)
			log := a.newLogger(opts.verbose)

			ids, err := a.deps.lister(cfg.YtdlpPath, log).ListIDs(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return fmt.Errorf("%w at %s", youtube.ErrNoVideoIDs, args[0])
			}
			if err := youtube.WriteVideoIDs(out, ids); err != nil {
				return fmt.Errorf("write video IDs: %w", err)
			}
			fmt.Fprintf(a.stdout, "Wrote %d video ID(s) to %s\n", len(ids), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "video_ids.txt", "file to write the IDs to")
	cmd.Flags().IntVar(&limit, "max", 0, "list at most this many videos (0 = all)")
	return cmd
}
