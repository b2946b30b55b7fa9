package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"locshare/internal/infra"
	"locshare/internal/replay"
)

// replayCmd decodes captured payloads offline
var replayCmd = &cobra.Command{
	Use:   "replay [dir]",
	Short: "Decode captured payloads and report the outcome of each",
	Long: `Run every capture_<seq>_<ts>.json file in dir through the decoder.
Without dir, the capture directory of the configured data dir is used.
No network access and no cookies are needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		path := configPath
		if path == "" {
			path = infra.ResolveConfigPath()
		}
		cfg, err := infra.LoadConfig(path)
		if err != nil {
			return err
		}
		dir = infra.CaptureDir(infra.ResolveDataDir(cfg.Storage.Dir))
	}

	sum, err := replay.NewReplayer(dir).Run(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(w, sum)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tCAPTURED\tKIND\tSELF\tSHARED\tERROR")
	for _, o := range sum.Outcomes {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%s\n", o.Seq,
			time.Unix(o.TsUnix, 0).Format(time.DateTime), o.Kind, o.SelfPresent, o.SharedCount, o.Error)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d decoded, %d failed\n", sum.Decoded, sum.Failed)

	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d captures failed to decode", sum.Failed, len(sum.Outcomes))
	}
	return nil
}
