package main

import (
	"fmt"
	"os"

	"github.com/crucial707/replydesk/cmd/cli/auth"
	"github.com/crucial707/replydesk/cmd/cli/generate"
	"github.com/crucial707/replydesk/cmd/cli/root"
	"github.com/crucial707/replydesk/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)
	users.InitUsers(rootCmd)
	generate.InitGenerate(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
