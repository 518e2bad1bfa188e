package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newActiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "active",
		Short: "Inspect and terminate active sessions",
	}
	cmd.AddCommand(newActiveListCmd())
	cmd.AddCommand(newActiveKillCmd())
	return cmd
}

func newActiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active sessions on the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			active, err := c.ActiveConnections.List()
			if err != nil {
				return errors.Wrap(err, "unable to list active sessions")
			}
			if jsonOutput {
				fmt.Println(string(active))
				return nil
			}
			gjson.ParseBytes(active).ForEach(func(id, sess gjson.Result) bool {
				fmt.Printf("%s\t%s\t%s\n",
					id.String(),
					sess.Get("username").String(),
					sess.Get("remoteHost").String())
				return true
			})
			return nil
		},
	}
}

func newActiveKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <identifier>",
		Short: "Terminate an active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			if _, err := c.ActiveConnections.Kill(args[0]); err != nil {
				return errors.Wrapf(err, "unable to kill session %q", args[0])
			}
			okLabel.Printf("Killed session %s\n", args[0])
			return nil
		},
	}
}

func newDatasourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasources",
		Short: "Show the datasources the gateway exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			if jsonOutput {
				printJSON(map[string]any{
					"primary":   c.PrimaryDatasource(),
					"available": c.Datasources(),
				})
				return nil
			}
			for _, ds := range c.Datasources() {
				if ds == c.PrimaryDatasource() {
					fmt.Printf("%s (primary)\n", ds)
				} else {
					fmt.Println(ds)
				}
			}
			return nil
		},
	}
}
