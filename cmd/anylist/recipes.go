package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Print all recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		recipes, err := client.Recipes(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range recipes {
			fmt.Printf("%s (%s)\n", r.Name, r.Identifier())
			for _, ing := range r.Ingredients {
				parts := []string{}
				if q := ing.Quantity(); q != "" {
					parts = append(parts, q)
				}
				if n := ing.Name(); n != "" {
					parts = append(parts, n)
				} else if raw := ing.RawIngredient(); raw != "" {
					parts = append(parts, raw)
				}
				fmt.Printf("  - %s\n", strings.Join(parts, " "))
			}
		}
		return nil
	},
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Print all recipe collections",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		colls, err := client.RecipeCollections(cmd.Context())
		if err != nil {
			return err
		}
		for _, coll := range colls {
			fmt.Printf("%s (%d recipes)\n", coll.Name(), len(coll.RecipeIDs()))
		}
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the meal planning calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Teardown()

		events, err := client.MealPlanningCalendarEvents(cmd.Context())
		if err != nil {
			return err
		}
		for _, ev := range events {
			line := ev.Date.Format("2006-01-02")
			if ev.Title != "" {
				line += " " + ev.Title
			}
			if r := ev.Recipe(); r != nil {
				line += " [" + r.Name + "]"
			}
			if l := ev.Label(); l != nil {
				line += " (" + l.Name() + ")"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(calendarCmd)
}
