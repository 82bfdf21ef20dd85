package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/storefront/pkg/shopapi"
)

var (
	userEmailFlag    string
	userPasswordFlag string
	userNameFlag     string
	userStatusFlag   string
	userManagerFlag  bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Accounts, login and profiles",
}

// storefront users register --email bob@shop.local --password secret12
var userRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			env, err := c.Users.RegisterUser(ctx, shopapi.Registration{
				Email:    userEmailFlag,
				Password: userPasswordFlag,
				Username: userNameFlag,
			})
			if env == nil && err == nil {
				cmd.Println("email already registered")
			}
			return env, err
		})
	},
}

// storefront users login --email admin@shop.local --password admin123 --manager
var userLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			env, err := c.Users.Login(ctx, shopapi.Credentials{
				Email:     userEmailFlag,
				Password:  userPasswordFlag,
				IsManager: userManagerFlag,
			})
			if err != nil {
				return nil, err
			}
			var token string
			if env.Field("token", &token) == nil {
				cmd.PrintErrln("token:", token)
			}
			return env, nil
		})
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Users.GetUserList(ctx)
		})
	},
}

var userSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search users by username, email or status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Users.SearchUserList(ctx, shopapi.UserQuery{
				Username: userNameFlag,
				Email:    userEmailFlag,
				Status:   userStatusFlag,
			})
		})
	},
}

var userGetCmd = &cobra.Command{
	Use:   "get <user-id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Users.FindUserByID(ctx, id)
	}),
}

var userPasswordCmd = &cobra.Command{
	Use:   "set-password <user-id> <current> <new>",
	Short: "Change a password",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Users.UpdatePassword(ctx, id, args[1], args[2])
		})
	},
}

// withIDAndValue adapts an (id, value) operation to a RunE.
func withIDAndValue(fn func(ctx context.Context, c *shopapi.Client, id int64, v string) (*shopapi.Envelope, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return fn(ctx, c, id, args[1])
		})
	}
}

var userRenameCmd = &cobra.Command{
	Use:   "set-username <user-id> <username>",
	Short: "Change a username",
	Args:  cobra.ExactArgs(2),
	RunE: withIDAndValue(func(ctx context.Context, c *shopapi.Client, id int64, v string) (*shopapi.Envelope, error) {
		return c.Users.UpdateUsername(ctx, id, v)
	}),
}

var userStatusCmd = &cobra.Command{
	Use:   "set-status <user-id> <status>",
	Short: "Change an account status",
	Args:  cobra.ExactArgs(2),
	RunE: withIDAndValue(func(ctx context.Context, c *shopapi.Client, id int64, v string) (*shopapi.Envelope, error) {
		return c.Users.UpdateStatus(ctx, id, v)
	}),
}

var userAvatarCmd = &cobra.Command{
	Use:   "set-avatar <user-id> <file>",
	Short: "Upload an avatar",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		up, closeFile, err := openUpload(args[1])
		if err != nil {
			return err
		}
		defer closeFile()
		return call(cmd, func(ctx context.Context, c *shopapi.Client) (*shopapi.Envelope, error) {
			return c.Users.UpdateAvatar(ctx, id, up)
		})
	},
}

var userAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Manage a user's address book",
}

var userAddressSetCmd = &cobra.Command{
	Use:   "set <user-id> <address>",
	Short: "Replace the primary address",
	Args:  cobra.ExactArgs(2),
	RunE: withIDAndValue(func(ctx context.Context, c *shopapi.Client, id int64, v string) (*shopapi.Envelope, error) {
		return c.Users.UpdateAddress(ctx, id, v)
	}),
}

var userAddressAddCmd = &cobra.Command{
	Use:   "add <user-id> <address>",
	Short: "Add an address",
	Args:  cobra.ExactArgs(2),
	RunE: withIDAndValue(func(ctx context.Context, c *shopapi.Client, id int64, v string) (*shopapi.Envelope, error) {
		return c.Users.AddAddress(ctx, id, v)
	}),
}

var userAddressDeleteCmd = &cobra.Command{
	Use:   "delete <user-id> <address>",
	Short: "Remove an address",
	Args:  cobra.ExactArgs(2),
	RunE: withIDAndValue(func(ctx context.Context, c *shopapi.Client, id int64, v string) (*shopapi.Envelope, error) {
		return c.Users.DeleteAddress(ctx, id, v)
	}),
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <user-id>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE: withID(func(ctx context.Context, c *shopapi.Client, id int64) (*shopapi.Envelope, error) {
		return c.Users.DeleteUser(ctx, id)
	}),
}

func init() {
	for _, c := range []*cobra.Command{userRegisterCmd, userLoginCmd} {
		c.Flags().StringVar(&userEmailFlag, "email", "", "Email")
		c.Flags().StringVar(&userPasswordFlag, "password", "", "Password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	userRegisterCmd.Flags().StringVar(&userNameFlag, "username", "", "Username (default: the email's local part)")
	userLoginCmd.Flags().BoolVar(&userManagerFlag, "manager", false, "Sign in as a manager")

	sf := userSearchCmd.Flags()
	sf.StringVar(&userNameFlag, "username", "", "Username contains")
	sf.StringVar(&userEmailFlag, "email", "", "Email contains")
	sf.StringVar(&userStatusFlag, "status", "", "Status contains")

	userAddressCmd.AddCommand(userAddressSetCmd, userAddressAddCmd, userAddressDeleteCmd)
	usersCmd.AddCommand(userRegisterCmd, userLoginCmd, userListCmd, userSearchCmd, userGetCmd,
		userPasswordCmd, userRenameCmd, userStatusCmd, userAvatarCmd, userAddressCmd, userDeleteCmd)
}
