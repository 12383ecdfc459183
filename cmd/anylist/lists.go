package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lunarhue/anylist"
)

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Print all shopping lists and their items",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		lists, err := client.Lists(cmd.Context())
		if err != nil {
			return err
		}
		for _, list := range lists {
			fmt.Printf("%s (%s)\n", list.Name(), list.Identifier())
			for _, item := range list.Items() {
				mark := " "
				if item.Checked() {
					mark = "x"
				}
				line := fmt.Sprintf("  [%s] %s", mark, item.Name())
				if q := item.Quantity(); q != "" {
					line += " - " + q
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <list> <item>",
	Short: "Add an item to a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		list, err := findList(cmd, client, args[0])
		if err != nil {
			return err
		}
		quantity, _ := cmd.Flags().GetString("quantity")
		item := client.NewItem(anylist.ItemFields{Name: args[1], Quantity: quantity})
		if err := list.AddItem(cmd.Context(), item, false); err != nil {
			return err
		}
		fmt.Printf("added %q to %s\n", item.Name(), list.Name())
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <list> <item>",
	Short: "Check an item off a list",
	Args:  cobra.ExactArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setChecked(cmd, args, true) },
}

var uncheckCmd = &cobra.Command{
	Use:   "uncheck <list> <item>",
	Short: "Uncheck an item on a list",
	Args:  cobra.ExactArgs(2),
	RunE:  func(cmd *cobra.Command, args []string) error { return setChecked(cmd, args, false) },
}

var removeCmd = &cobra.Command{
	Use:   "remove <list> <item>",
	Short: "Remove an item from a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		list, item, err := findItem(cmd, client, args[0], args[1])
		if err != nil {
			return err
		}
		if err := list.RemoveItem(cmd.Context(), item, false); err != nil {
			return err
		}
		fmt.Printf("removed %q from %s\n", item.Name(), list.Name())
		return nil
	},
}

func setChecked(cmd *cobra.Command, args []string, checked bool) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Teardown()

	_, item, err := findItem(cmd, client, args[0], args[1])
	if err != nil {
		return err
	}
	item.SetChecked(checked)
	return item.Save(cmd.Context(), false)
}

func findList(cmd *cobra.Command, client *anylist.Client, name string) (*anylist.List, error) {
	if _, err := client.Lists(cmd.Context()); err != nil {
		return nil, err
	}
	list := client.ListByName(name)
	if list == nil {
		list = client.ListByID(name)
	}
	if list == nil {
		return nil, fmt.Errorf("no list named %q", name)
	}
	return list, nil
}

func findItem(cmd *cobra.Command, client *anylist.Client, listName, itemName string) (*anylist.List, *anylist.Item, error) {
	list, err := findList(cmd, client, listName)
	if err != nil {
		return nil, nil, err
	}
	item := list.ItemByName(itemName)
	if item == nil {
		item = list.ItemByID(itemName)
	}
	if item == nil {
		return nil, nil, fmt.Errorf("no item %q on %s", itemName, list.Name())
	}
	return list, item, nil
}

func init() {
	addCmd.Flags().StringP("quantity", "q", "", "item quantity, free form")

	rootCmd.AddCommand(listsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(uncheckCmd)
	rootCmd.AddCommand(removeCmd)
}
