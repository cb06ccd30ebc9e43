package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"blog/internal/database"
)

// Categories have no web pages for editing; they are managed here.
func categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage post categories",
	}

	cmd.AddCommand(categoryAddCmd())
	cmd.AddCommand(categoryListCmd())
	cmd.AddCommand(categoryDeleteCmd())

	return cmd
}

func openCategories(cmd *cobra.Command) (*database.CategoryService, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cmd.Context(), cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	return database.NewCategoryService(db), db.Close, nil
}

func categoryAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a category",
		Example: `  blog category add --name "Release notes"
  blog category add --name News --slug news --description "Project news"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, _ := cmd.Flags().GetString("name")
			slug, _ := cmd.Flags().GetString("slug")
			description, _ := cmd.Flags().GetString("description")

			categories, closeDB, err := openCategories(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			category, err := categories.CreateCategory(cmd.Context(), name, slug, description)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created category %q (/category/%s/)\n", category.Name, category.Slug)
			return nil
		},
	}

	cmd.Flags().String("name", "", "display name")
	cmd.Flags().String("slug", "", "URL slug (derived from the name when empty)")
	cmd.Flags().String("description", "", "short description shown on the category page")
	cmd.MarkFlagRequired("name")

	return cmd
}

func categoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			categories, closeDB, err := openCategories(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			all, err := categories.GetAllCategories(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSLUG\tNAME\tDESCRIPTION")
			for _, c := range all {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Slug, c.Name, c.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolP("json", "j", false, "output as JSON")

	return cmd
}

func categoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a category and every post filed under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, closeDB, err := openCategories(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := categories.DeleteCategory(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted category %s\n", args[0])
			return nil
		},
	}
}
