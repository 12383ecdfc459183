package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Log in and print session details",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		fmt.Println("logged in")
		if expiry, ok := client.TokenExpiry(); ok {
			fmt.Printf("access token expires %s (in %s)\n",
				expiry.Format(time.RFC3339), time.Until(expiry).Round(time.Second))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
