package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1broseidon/hlbar/internal/x11"
)

func newMonitorsCmd() *cobra.Command {
	var (
		height  int
		display string
	)
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: "List monitors and the arguments of a bar along each top edge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if height <= 0 {
				return fmt.Errorf("invalid --height %d: must be positive", height)
			}
			conn, err := x11.NewConnection(display)
			if err != nil {
				return fmt.Errorf("failed to connect to X server: %w", err)
			}
			defer conn.Close()

			monitors, err := conn.GetMonitors()
			if err != nil {
				return err
			}
			printMonitors(cmd.OutOrStdout(), monitors, conn.PointerMonitor(monitors), height)
			return nil
		},
	}
	cmd.Flags().IntVar(&height, "height", 16, "Bar height used for the suggested arguments")
	cmd.Flags().StringVar(&display, "display", "", "X display to connect to (default: $DISPLAY)")
	return cmd
}

func printMonitors(w io.Writer, monitors []x11.Monitor, pointer, height int) {
	if len(monitors) == 0 {
		fmt.Fprintln(w, "no active monitors")
		return
	}
	for i, m := range monitors {
		mark := " "
		if i == pointer {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d %-10s %dx%d+%d+%d  hlbar -- %s\n",
			mark, m.ID, m.Name, m.Width, m.Height, m.X, m.Y, strings.Join(m.BarArgs(height), " "))
	}
}
