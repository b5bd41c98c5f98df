package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/miniview/internal/ipc"
)

func (a *app) newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close the window of a viewer started with --control",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ipc.NewClient().Close()
		},
	}
}

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of a viewer started with --control",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := ipc.NewClient().GetStatus()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "state:          %s\n", status.State)
			fmt.Fprintf(a.stdout, "title:          %s\n", status.Title)
			fmt.Fprintf(a.stdout, "source:         %s\n", status.Source)
			fmt.Fprintf(a.stdout, "size:           %dx%d\n", status.Width, status.Height)
			fmt.Fprintf(a.stdout, "frames:         %d\n", status.Frames)
			fmt.Fprintf(a.stdout, "uptime_seconds: %d\n", status.UptimeSeconds)
			return nil
		},
	}
}
