package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/crucial707/replydesk/cmd/cli/config"
	"github.com/crucial707/replydesk/cmd/cli/output"
	"github.com/spf13/cobra"
)

// ==========================
// CLI Command Init
// ==========================

// InitGenerate registers reply-generation commands on the root command.
func InitGenerate(rootCmd *cobra.Command) {
	rootCmd.AddCommand(generateCmd(), optionsCmd())
}

// ==========================
// GENERATE
// ==========================
func generateCmd() *cobra.Command {
	var (
		emailFile   string
		intents     []string
		tone        string
		length      string
		managerNote string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a reply to a customer email",
		Long: `Generate a suggested reply to a customer email.
The email text is read from --email-file, or from stdin when the flag is omitted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var email []byte
			var err error
			if emailFile != "" {
				email, err = os.ReadFile(emailFile)
				if err != nil {
					return fmt.Errorf("failed to read email file: %w", err)
				}
			} else {
				email, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read email from stdin: %w", err)
				}
			}

			payload, _ := json.Marshal(map[string]interface{}{
				"customer_email": string(email),
				"intents":        intents,
				"tone":           tone,
				"length":         length,
				"manager_note":   managerNote,
			})

			req, err := http.NewRequest("POST", config.APIURL()+"/v1/generate", bytes.NewBuffer(payload))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			// Generation may be open when the server runs with auth disabled,
			// so a missing token is not an error here.
			if token, err := config.LoadToken(); err == nil {
				req.Header.Set("Authorization", "Bearer "+token)
			}

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
				Reply string `json:"reply"`
				Model string `json:"model"`
			}
			if err := json.Unmarshal(body, &out); err != nil {
				return err
			}

			fmt.Println(out.Reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&emailFile, "email-file", "", "File containing the customer email (stdin when omitted)")
	cmd.Flags().StringSliceVar(&intents, "intent", nil, "Reply intent, repeatable (see the options command)")
	cmd.Flags().StringVar(&tone, "tone", "", "Tone of the reply")
	cmd.Flags().StringVar(&length, "length", "", "Length of the reply")
	cmd.Flags().StringVar(&managerNote, "note", "", "Extra instruction for this reply")
	return cmd
}

// ==========================
// OPTIONS
// ==========================
func optionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List available intents, tones and lengths",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(config.APIURL() + "/v1/options")
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			}

			type opt struct {
				ID    string `json:"id"`
				Label string `json:"label"`
			}
			var cat struct {
				Intents []opt `json:"intents"`
				Tones   []opt `json:"tones"`
				Lengths []opt `json:"lengths"`
			}
			if err := json.Unmarshal(body, &cat); err != nil {
				return err
			}

			rows := make([][]interface{}, 0)
			for _, o := range cat.Intents {
				rows = append(rows, []interface{}{"intent", o.ID, o.Label})
			}
			for _, o := range cat.Tones {
				rows = append(rows, []interface{}{"tone", o.ID, o.Label})
			}
			for _, o := range cat.Lengths {
				rows = append(rows, []interface{}{"length", o.ID, o.Label})
			}
			output.RenderTable([]string{"Kind", "ID", "Label"}, rows)
			return nil
		},
	}
}
