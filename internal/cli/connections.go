package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/guacops/go-guacamole/payload"
)

func newConnectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "connections",
		Short: "Manage connections",
	}
	cmd.AddCommand(newConnectionsListCmd())
	cmd.AddCommand(newConnectionsCreateSSHCmd())
	cmd.AddCommand(newConnectionsRmCmd())
	return cmd
}

func newConnectionsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all connections visible to the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			conns, err := c.Connections.List()
			if err != nil {
				return errors.Wrap(err, "unable to list connections")
			}
			if jsonOutput {
				fmt.Println(string(conns))
				return nil
			}
			gjson.ParseBytes(conns).ForEach(func(id, conn gjson.Result) bool {
				fmt.Printf("%s\t%s\t%s\n",
					id.String(),
					conn.Get("protocol").String(),
					conn.Get("name").String())
				return true
			})
			return nil
		},
	}
}

func newConnectionsCreateSSHCmd() *cobra.Command {
	var host string
	var port string
	var user string
	var parent string

	cmd := &cobra.Command{
		Use:   "create-ssh <name>",
		Short: "Create an SSH connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			data := payload.MustSet(payload.SSHConnection(), "name", args[0])
			data = payload.MustSet(data, "parameters.hostname", host)
			data = payload.MustSet(data, "parameters.port", port)
			if user != "" {
				data = payload.MustSet(data, "parameters.username", user)
			}
			if parent != "" {
				data = payload.MustSet(data, "parentIdentifier", parent)
			}

			created, err := c.Connections.Create(data)
			if err != nil {
				return errors.Wrapf(err, "unable to create connection %q", args[0])
			}
			if created == nil {
				return errors.Errorf("connection %q was rejected by the gateway", args[0])
			}
			if jsonOutput {
				fmt.Println(string(created))
				return nil
			}
			okLabel.Printf("Created connection %s (identifier %s)\n",
				args[0], gjson.GetBytes(created, "identifier").String())
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "Target hostname")
	cmd.Flags().StringVar(&port, "port", "22", "Target port")
	cmd.Flags().StringVar(&user, "user", "", "Login username")
	cmd.Flags().StringVar(&parent, "parent", "", "Parent connection group identifier")
	cmd.MarkFlagRequired("host")
	return cmd
}

func newConnectionsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <identifier>",
		Short: "Delete a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			if err := c.Connections.Delete(args[0]); err != nil {
				return errors.Wrapf(err, "unable to delete connection %q", args[0])
			}
			okLabel.Printf("Deleted connection %s\n", args[0])
			return nil
		},
	}
}
