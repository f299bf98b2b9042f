package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sahilchouksey/partner-hub/model"
	"github.com/sahilchouksey/partner-hub/utils/validation"
)

var errEmptyPassword = errors.New("password must not be empty")

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Dashboard accounts",
	}

	var role string
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.backend.ListUsers(c.context(cmd))
			if err != nil {
				return err
			}
			filtered := users[:0]
			for _, u := range users {
				if role == "" || u.HasRole(role) {
					filtered = append(filtered, u)
				}
			}
			sort.SliceStable(filtered, func(i, j int) bool {
				return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
			})

			return c.render(cmd.OutOrStdout(), filtered, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLES\tACTIVE")
				for _, u := range filtered {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, strings.Join(u.Roles, ","), u.IsActive)
				}
			})
		},
	}
	list.Flags().StringVar(&role, "role", "", "only users with this role")

	cmd.AddCommand(list)
	return cmd
}

func newResetPasswordCmd(c *cli) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password --email EMAIL",
		Short: "Reset a user's password. The new password is prompted for.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprint(out, "Enter password:")
			pwd, err := readPasswordFunc(stdinFd())
			fmt.Fprintln(out)
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				return errEmptyPassword
			}

			fmt.Fprint(out, "Confirm password:")
			confirm, err := readPasswordFunc(stdinFd())
			fmt.Fprintln(out)
			if err != nil {
				return err
			}

			req := model.ResetPassword{
				Email:           strings.TrimSpace(email),
				NewPassword:     string(pwd),
				ConfirmPassword: string(confirm),
			}
			if fields := validation.Struct(&req); fields != nil {
				msgs := make([]string, 0, len(fields))
				for _, msg := range fields {
					msgs = append(msgs, msg)
				}
				sort.Strings(msgs)
				return fmt.Errorf("%s", strings.Join(msgs, "; "))
			}

			if err := c.backend.ResetPassword(c.context(cmd), req); err != nil {
				return err
			}
			fmt.Fprintln(out, "Password has been reset successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
