package cli

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/guacops/go-guacamole/payload"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage gateway users",
	}
	cmd.AddCommand(newUsersListCmd())
	cmd.AddCommand(newUsersCreateCmd())
	cmd.AddCommand(newUsersRmCmd())
	return cmd
}

func newUsersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users visible to the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			users, err := c.Users.List()
			if err != nil {
				return errors.Wrap(err, "unable to list users")
			}
			if jsonOutput {
				fmt.Println(string(users))
				return nil
			}
			gjson.ParseBytes(users).ForEach(func(_, user gjson.Result) bool {
				name := user.Get("username").String()
				if user.Get("attributes.disabled").String() == "true" {
					fmt.Printf("%s (disabled)\n", name)
				} else {
					fmt.Println(name)
				}
				return true
			})
			return nil
		},
	}
}

func newUsersCreateCmd() *cobra.Command {
	var password string
	var fullName string

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			data := payload.MustSet(payload.User(), "username", args[0])
			if password != "" {
				data = payload.MustSet(data, "password", password)
			}
			if fullName != "" {
				data = payload.MustSet(data, "attributes.guac-full-name", fullName)
			}

			created, err := c.Users.Create(data)
			if err != nil {
				return errors.Wrapf(err, "unable to create user %q", args[0])
			}
			if created == nil {
				return errors.Errorf("user %q already exists", args[0])
			}
			if jsonOutput {
				fmt.Println(string(created))
				return nil
			}
			okLabel.Printf("Created user %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	return cmd
}

func newUsersRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			defer c.Logout()

			if err := c.Users.Delete(args[0]); err != nil {
				return errors.Wrapf(err, "unable to delete user %q", args[0])
			}
			okLabel.Printf("Deleted user %s\n", args[0])
			return nil
		},
	}
}
