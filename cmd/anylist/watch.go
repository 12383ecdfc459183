package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lunarhue/anylist"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow list changes as they happen",
	Long: `Keeps the push channel open and prints every list snapshot the
service announces. Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		client.OnListsChanged(func(lists []*anylist.List) {
			fmt.Printf("lists changed (%d lists):\n", len(lists))
			for _, list := range lists {
				checked := 0
				for _, item := range list.Items() {
					if item.Checked() {
						checked++
					}
				}
				fmt.Printf("  %s: %d items, %d checked\n", list.Name(), len(list.Items()), checked)
			}
		})

		fmt.Println("watching for changes, Ctrl+C to stop")
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
