package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify the configured credentials against the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			if jsonOutput {
				printJSON(map[string]any{
					"hostname":   GetConfig().Hostname,
					"datasource": c.PrimaryDatasource(),
				})
				return nil
			}
			okLabel.Print("Login OK")
			fmt.Printf(" (%s, datasource %s)\n", GetConfig().Hostname, c.PrimaryDatasource())
			return nil
		},
	}
}
