package main

import (
	"fmt"
	"sort"
	"strings"

	"newswell/internal/ingest/models"

	"github.com/spf13/cobra"
)

var (
	flagRecentLimit    int
	flagRecentDays     int
	flagRecentCategory string
)

func init() {
	recentCmd.Flags().IntVar(&flagRecentLimit, "limit", 20, "maximum number of articles to show")
	recentCmd.Flags().IntVar(&flagRecentDays, "days", 7, "only show articles published in the last N days")
	recentCmd.Flags().StringVar(&flagRecentCategory, "category", "", "only show articles tagged with this category")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show article store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.migrate(ctx); err != nil {
			return err
		}

		stats, err := app.store.GetStatistics(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Database:   %s\n", app.config.Database.Path)
		fmt.Printf("Articles:   %d\n", stats.TotalArticles)
		fmt.Printf("Sources:    %d\n", stats.TotalSources)
		fmt.Printf("Categories: %d\n", stats.TotalCategories)

		printCounts("By source", stats.ArticlesBySource)
		printCounts("By category", stats.ArticlesByCategory)
		printCounts("Last 7 days", stats.ArticlesByDay)
		return nil
	},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently ingested articles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.migrate(ctx); err != nil {
			return err
		}

		var articles []models.Article
		if flagRecentCategory != "" {
			articles, err = app.store.GetArticlesByCategory(ctx, flagRecentCategory, flagRecentLimit)
		} else {
			articles, err = app.store.GetRecentArticles(ctx, flagRecentLimit, flagRecentDays)
		}
		if err != nil {
			return err
		}

		if len(articles) == 0 {
			fmt.Println("No articles found.")
			return nil
		}

		for _, a := range articles {
			fmt.Printf("%s  [%s]  %s\n", a.Date, a.Source, a.Title)
			fmt.Printf("    %s\n", a.URL)
			if len(a.Categories) > 0 {
				fmt.Printf("    %s\n", strings.Join(a.Categories, ", "))
			}
		}
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List all known categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newApplication(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.migrate(ctx); err != nil {
			return err
		}

		categories, err := app.store.GetAllCategories(ctx)
		if err != nil {
			return err
		}

		if len(categories) == 0 {
			fmt.Println("No categories yet.")
			return nil
		}
		for _, c := range categories {
			fmt.Println(c)
		}
		return nil
	},
}

func printCounts(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("\n%s:\n", label)
	for _, k := range keys {
		fmt.Printf("  %-30s %d\n", k, counts[k])
	}
}
