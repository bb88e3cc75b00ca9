package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aouyang1/immichslideshow/api/client"
)

var (
	serverURL    string
	historyLimit int

	ctlCmd = &cobra.Command{
		Use:   "ctl",
		Short: "Control a running slideshow",
		Example: `  immichslideshow ctl next
  immichslideshow ctl video on
  immichslideshow ctl notify IMMICHSLIDESHOW_PAUSE
  immichslideshow ctl history --limit 20`,
	}
)

func init() {
	ctlCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "slideshow server url")

	for _, command := range []string{"play", "pause", "next", "previous", "update"} {
		ctlCmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: fmt.Sprintf("Send the %s command", command),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return newClient().Command(cmd.Context(), command)
			},
		})
	}

	ctlCmd.AddCommand(&cobra.Command{
		Use:       "video on|off",
		Short:     "Report whether a video is playing on the mirror",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch strings.ToLower(args[0]) {
			case "on", "1", "playing":
				return newClient().SetVideo(cmd.Context(), true)
			case "off", "0", "stopped":
				return newClient().SetVideo(cmd.Context(), false)
			default:
				return fmt.Errorf("invalid video state %q, must be on or off", args[0])
			}
		},
	})

	ctlCmd.AddCommand(&cobra.Command{
		Use:   "notify NOTIFICATION [JSON_PAYLOAD]",
		Short: "Forward a raw notification to the slideshow",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload json.RawMessage
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("payload is not valid json")
				}
				payload = json.RawMessage(args[1])
			}
			resp, err := newClient().Notify(cmd.Context(), args[0], payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", resp.Notification, resp.Event)
			return nil
		},
	})

	ctlCmd.AddCommand(&cobra.Command{
		Use:   "state",
		Short: "Show the slideshow state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := newClient().GetState(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\ndirection: %s\nvideo: %t\nupdates: %d\n",
				state.State, state.Direction, state.Video, state.Sequence)
			return nil
		},
	})

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recently shown images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := newClient().GetHistory(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no images shown yet")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", humanize.Time(e.ShownAt), e.Path)
			}
			return nil
		},
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries")
	ctlCmd.AddCommand(historyCmd)

	rootCmd.AddCommand(ctlCmd)
}

func newClient() *client.SlideshowClient {
	return client.NewSlideshowClient(strings.TrimRight(serverURL, "/"))
}
