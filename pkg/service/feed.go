package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/config"
	"github.com/quill-social/quill/pkg/feed"
	"github.com/quill-social/quill/pkg/formatter"
	"github.com/quill-social/quill/pkg/logger"
	"github.com/quill-social/quill/pkg/output"
	"github.com/quill-social/quill/pkg/prompter"
)

// anonymousIdentity keys the feed when nobody is logged in
const anonymousIdentity = "anonymous"

// BrowseOptions controls a feed session
type BrowseOptions struct {
	// Category is a category id, slug or name
	Category string
	PageSize int
	// Pages loads this many pages without prompting; 0 asks before each page
	Pages int
}

// FeedService provides feed-related operations
type FeedService struct{}

// NewFeedService creates a new feed service
func NewFeedService() *FeedService {
	return &FeedService{}
}

func (fs *FeedService) newPaginator(identity string, pageSize int, query map[string]string) *feed.Paginator[api.Post] {
	if pageSize <= 0 {
		pageSize = config.GetInt("feed.page_size")
	}
	return feed.New[api.Post](PostSource{},
		feed.WithPageSize[api.Post](pageSize),
		feed.WithFilter(api.Post.IsTopLevel),
		feed.WithQuery[api.Post](query),
		feed.WithIdentity[api.Post](identity),
		feed.WithLogger[api.Post](logger.GetLogger()),
	)
}

// Browse shows top-level posts newest first, one page at a time
func (fs *FeedService) Browse(ctx context.Context, opts BrowseOptions) error {
	identity := anonymousIdentity
	if creds := OptionalSession(ctx); creds != nil {
		identity = creds.UserID
	}

	query := map[string]string{}
	if opts.Category != "" {
		category, err := fs.resolveCategory(ctx, opts.Category)
		if err != nil {
			return err
		}
		query["category_id"] = category.ID
		formatter.PrintInfo("Category: %s", category.Name)
	}

	logger.Debug("Browsing feed", "identity", identity, "category", opts.Category)
	p := fs.newPaginator(identity, opts.PageSize, query)

	if err := p.LoadInitial(ctx); err != nil {
		return fmt.Errorf("failed to load feed: %w", err)
	}

	jsonOut := output.GetOutputFormat() == output.FormatJSON
	shown := 0
	pages := 1
	for {
		st := p.State()
		if !jsonOut {
			fs.render(st.Items[shown:])
		}
		shown = len(st.Items)

		if !st.HasMore {
			break
		}
		if opts.Pages > 0 {
			if pages >= opts.Pages {
				break
			}
		} else if more, err := prompter.PromptConfirm("Load more?"); err != nil || !more {
			break
		}

		pages++
		if _, err := p.LoadMore(ctx); err != nil {
			if opts.Pages > 0 {
				return fmt.Errorf("failed to load more posts: %w", err)
			}
			formatter.PrintError("Failed to load more posts: %v", err)
		}
	}

	st := p.State()
	if jsonOut {
		if st.Items == nil {
			st.Items = []api.Post{}
		}
		return output.PrintList(st.Items, nil, nil)
	}

	switch {
	case len(st.Items) == 0:
		fmt.Fprintln(output.Writer(), "No posts yet.")
	case !st.HasMore:
		formatter.PrintInfo("You're all caught up.")
	}
	return nil
}

func (fs *FeedService) render(posts []api.Post) {
	if len(posts) == 0 {
		return
	}

	if output.GetOutputFormat() == output.FormatTable {
		rows := make([][]string, 0, len(posts))
		for _, p := range posts {
			rows = append(rows, formatter.PostRow(p))
		}
		output.PrintList(posts, formatter.PostColumns, rows)
		return
	}

	w := output.Writer()
	for _, p := range posts {
		fmt.Fprintln(w, formatter.PostCard(p))
	}
}

// resolveCategory matches ref against category ids, slugs and names
func (fs *FeedService) resolveCategory(ctx context.Context, ref string) (*api.Category, error) {
	categories, err := api.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	for i := range categories {
		c := &categories[i]
		if c.ID == ref || strings.EqualFold(c.Slug, ref) || strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q (run 'quill categories' to list them)", ref)
}

// ListCategories prints every category
func (fs *FeedService) ListCategories(ctx context.Context) error {
	categories, err := api.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	if len(categories) == 0 && output.GetOutputFormat() != output.FormatJSON {
		fmt.Fprintln(output.Writer(), "No categories.")
		return nil
	}

	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, []string{c.Slug, c.Name, c.ID})
	}
	return output.PrintList(categories, []string{"SLUG", "NAME", "ID"}, rows)
}
