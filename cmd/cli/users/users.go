package users

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/crucial707/replydesk/cmd/cli/config"
	"github.com/crucial707/replydesk/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================

// InitUsers registers user-management commands on the root command. They all
// require an admin token stored via the login command.
func InitUsers(rootCmd *cobra.Command) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users (admin only)",
	}

	usersCmd.AddCommand(listUsersCmd(), createUserCmd())
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// LIST
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}

			req, err := http.NewRequest("GET", config.APIURL()+"/v1/users", nil)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			var out struct {
				Users []struct {
					Username    string `json:"username"`
					DisplayName string `json:"display_name"`
					Role        string `json:"role"`
				} `json:"users"`
				Total int `json:"total"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			if asJSON {
				b, _ := json.MarshalIndent(out.Users, "", "  ")
				fmt.Println(string(b))
				return nil
			}

			rows := make([][]interface{}, 0, len(out.Users))
			for _, u := range out.Users {
				rows = append(rows, []interface{}{u.Username, u.DisplayName, u.Role})
			}
			output.RenderTable([]string{"Username", "Display Name", "Role"}, rows)
			fmt.Printf("%d user(s)\n", out.Total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// ==========================
// CREATE
// ==========================
func createUserCmd() *cobra.Command {
	var username, password, displayName, role string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := config.LoadToken()
			if err != nil {
				return fmt.Errorf("please login first")
			}
			if username == "" {
				fmt.Print("Username: ")
				fmt.Scanln(&username)
			}
			if password == "" {
				fmt.Print("Password: ")
				fmt.Scanln(&password)
			}

			payload, _ := json.Marshal(map[string]string{
				"username":     username,
				"password":     password,
				"display_name": displayName,
				"role":         role,
			})
			req, err := http.NewRequest("POST", config.APIURL()+"/v1/users", bytes.NewBuffer(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusCreated {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			fmt.Printf("User %q created.\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username for the new account")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name shown in the UI")
	cmd.Flags().StringVar(&role, "role", "user", "Role: user or admin")
	return cmd
}
