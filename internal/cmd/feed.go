package cmd

import (
	"github.com/quill-social/quill/pkg/service"
	"github.com/spf13/cobra"
)

var (
	feedCategory string
	feedPageSize int
	feedPages    int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Browse top-level posts, newest first",
	Long: `Browse top-level posts, newest first, one page at a time.
Replies are hidden. Without --pages you are asked before each further page.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFeedService().Browse(cmd.Context(), service.BrowseOptions{
			Category: feedCategory,
			PageSize: feedPageSize,
			Pages:    feedPages,
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List post categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFeedService().ListCategories(cmd.Context())
	},
}

func init() {
	feedCmd.Flags().StringVarP(&feedCategory, "category", "c", "", "Only show posts in this category (id, slug or name)")
	feedCmd.Flags().IntVar(&feedPageSize, "page-size", 0, "Posts per page (default: feed.page_size)")
	feedCmd.Flags().IntVar(&feedPages, "pages", 0, "Load this many pages without prompting")
}
