package api

import (
	"context"
	"strconv"

	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/client"
	"github.com/quill-social/quill/pkg/logger"
)

// PostQuery selects one page of posts. Filter values are matched with eq.
type PostQuery struct {
	Filter    map[string]string
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
}

// orderParam renders the order clause, e.g. created_at.desc
func orderParam(column string, ascending bool) string {
	if column == "" {
		column = "created_at"
	}
	if ascending {
		return column + ".asc"
	}
	return column + ".desc"
}

// queryParams renders PostgREST query parameters for a page request
func (q PostQuery) queryParams() map[string]string {
	params := map[string]string{
		"select": "*,author:profiles!posts_author_id_fkey(id,username,display_name,avatar_url)",
		"order":  orderParam(q.SortBy, q.Ascending),
		"limit":  strconv.Itoa(q.Limit),
		"offset": strconv.Itoa(q.Offset),
	}
	for column, value := range q.Filter {
		params[column] = "eq." + value
	}
	return params
}

// ListPosts fetches one page of posts. A page shorter than Limit is the only
// end-of-data signal; the endpoint returns no total count.
func ListPosts(ctx context.Context, q PostQuery) ([]Post, error) {
	logger.Debug("Fetching posts", "limit", q.Limit, "offset", q.Offset, "filter", q.Filter)

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(q.queryParams()).
		Get("/rest/v1/posts")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var posts []Post
	if err := json.Unmarshal(resp.Body(), &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// ListCategories fetches all post categories ordered by name
func ListCategories(ctx context.Context) ([]Category, error) {
	logger.Debug("Fetching categories")

	resp, err := client.GetClient().
		R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "id,name,slug",
			"order":  "name.asc",
		}).
		Get("/rest/v1/categories")

	if err := CheckResponse(resp, err); err != nil {
		return nil, err
	}

	var categories []Category
	if err := json.Unmarshal(resp.Body(), &categories); err != nil {
		return nil, err
	}

	return categories, nil
}
