package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/duynhne/loaner-service/internal/core/domain"
)

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List accounts",
			Args:  cobra.NoArgs,
			RunE: a.guard(areaAdmin, func(cmd *cobra.Command, args []string) error {
				users, err := a.client.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				return a.render(cmd, users, usersTable(users))
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one account",
			Args:  cobra.ExactArgs(1),
			RunE: a.guard(areaAdmin, func(cmd *cobra.Command, args []string) error {
				u, err := a.client.GetUser(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.render(cmd, u, usersTable([]domain.User{*u}))
			}),
		},
		a.usersCreateCommand(),
		a.usersUpdateCommand(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Remove an account and its bookings",
			Args:  cobra.ExactArgs(1),
			RunE: a.guard(areaAdmin, func(cmd *cobra.Command, args []string) error {
				if err := a.client.DeleteUser(cmd.Context(), args[0]); err != nil {
					return err
				}
				return a.render(cmd, map[string]string{"deleted": args[0]}, func(w *tabwriter.Writer) {
					fmt.Fprintf(w, "Deleted user %s\n", args[0])
				})
			}),
		},
	)
	return cmd
}

func (a *app) usersCreateCommand() *cobra.Command {
	var req domain.CreateUserRequest
	var role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an account",
		Args:  cobra.NoArgs,
		RunE: a.guard(areaAdmin, func(cmd *cobra.Command, args []string) error {
			req.Role = domain.Role(role)
			u, err := a.client.CreateUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.render(cmd, u, usersTable([]domain.User{*u}))
		}),
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password (at least 8 characters)")
	cmd.Flags().StringVar(&role, "role", "", "student, staff or admin (default student)")
	cmd.Flags().StringVar(&req.DOB, "dob", "", "date of birth, YYYY-MM-DD")
	for _, name := range []string{"name", "email", "phone", "password"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) usersUpdateCommand() *cobra.Command {
	var name, email, phone, role, dob string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an account",
		Args:  cobra.ExactArgs(1),
		RunE: a.guard(areaAdmin, func(cmd *cobra.Command, args []string) error {
			var req domain.UpdateUserRequest
			flags := cmd.Flags()
			if flags.Changed("name") {
				req.Name = &name
			}
			if flags.Changed("email") {
				req.Email = &email
			}
			if flags.Changed("phone") {
				req.Phone = &phone
			}
			if flags.Changed("role") {
				r := domain.Role(role)
				req.Role = &r
			}
			if flags.Changed("dob") {
				req.DOB = &dob
			}

			u, err := a.client.UpdateUser(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			return a.render(cmd, u, usersTable([]domain.User{*u}))
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&role, "role", "", "student, staff or admin")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth, YYYY-MM-DD")
	return cmd
}
