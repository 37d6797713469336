package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/hlbar/internal/ipc"
	"github.com/1broseidon/hlbar/internal/runtimepath"
)

func newCtlCmd() *cobra.Command {
	var (
		monitor int
		asJSON  bool
	)
	client := func() (*ipc.Client, error) {
		path, err := runtimepath.SocketPath(monitor)
		if err != nil {
			return nil, err
		}
		return ipc.NewClient(path), nil
	}

	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Control a running bar",
	}
	cmd.PersistentFlags().IntVar(&monitor, "monitor", 0, "Monitor index of the bar")

	redraw := &cobra.Command{
		Use:   "redraw",
		Short: "Render a new frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			return c.Redraw(cmd.Context())
		},
	}

	quit := &cobra.Command{
		Use:   "quit",
		Short: "Shut the bar down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			return c.Quit(cmd.Context())
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the bar's geometry and modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			st, err := c.GetStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			fmt.Fprintf(out, "monitor:  %d\n", st.Monitor)
			fmt.Fprintf(out, "geometry: %dx%d+%d+%d\n", st.Width, st.Height, st.X, st.Y)
			fmt.Fprintf(out, "global:   %s\n", strings.Join(st.Global, " "))
			fmt.Fprintf(out, "left:     %s\n", strings.Join(st.Left, " "))
			fmt.Fprintf(out, "right:    %s\n", strings.Join(st.Right, " "))
			fmt.Fprintf(out, "uptime:   %ds\n", st.UptimeSeconds)
			return nil
		},
	}
	status.Flags().BoolVar(&asJSON, "json", false, "Print the status as JSON")

	cmd.AddCommand(redraw, status, quit)
	return cmd
}
