package main

import (
	"propdesk-backend/internal/auth"
	"propdesk-backend/internal/models"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage back-office accounts.",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		_, db, err := openDB()
		if err != nil {
			return err
		}
		user, err := auth.CreateUser(db, name, email, password, models.UserRole(role))
		if err != nil {
			return err
		}
		color.Green("Created %s user %s (id %d)", user.Role, user.Email, user.ID)
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("name", "", "display name")
	userAddCmd.Flags().String("email", "", "login email")
	userAddCmd.Flags().String("password", "", "initial password (at least 8 characters)")
	userAddCmd.Flags().String("role", string(models.RoleStaff), "admin or staff")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userAddCmd)
}
