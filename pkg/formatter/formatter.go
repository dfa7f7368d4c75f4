package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/output"
)

var (
	Bold    = color.New(color.Bold)
	Faint   = color.New(color.Faint)
	Success = color.New(color.FgGreen)
	Error   = color.New(color.FgRed)
	Info    = color.New(color.FgCyan)
	Warning = color.New(color.FgYellow)
)

// now is swapped in tests
var now = time.Now

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	output.PrintSuccess(format, args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	output.PrintError(format, args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	output.PrintInfo(format, args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	output.PrintWarning(format, args...)
}

// PrintKeyValue prints key-value pairs using the configured format
func PrintKeyValue(data map[string]interface{}) {
	output.PrintRecord("", data)
}

// RelativeTime renders t as "3 hours ago" or "in 2 days"
func RelativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return humanize.RelTime(t, now(), "ago", "from now")
}

// Truncate shortens s to max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max || max < 4 {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// PostCard renders a post for the feed
func PostCard(p api.Post) string {
	var sb strings.Builder

	author := "unknown"
	if p.Author != nil {
		author = p.Author.Name()
	}
	sb.WriteString(Bold.Sprint(author))
	sb.WriteString(Faint.Sprintf("  %s", RelativeTime(p.CreatedAt)))
	sb.WriteString("\n")

	for _, line := range strings.Split(strings.TrimSpace(p.Content), "\n") {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if p.ImageURL != "" {
		sb.WriteString(Faint.Sprintf("  [image] %s\n", p.ImageURL))
	}
	return sb.String()
}

// ProfileCard renders a discovery candidate
func ProfileCard(p *api.Profile) string {
	var sb strings.Builder

	sb.WriteString(Bold.Sprint(p.Name()))
	if p.Username != "" && p.DisplayName != "" {
		sb.WriteString(Faint.Sprintf("  @%s", p.Username))
	}
	sb.WriteString("\n")

	if bio := strings.TrimSpace(p.Bio); bio != "" {
		sb.WriteString("  ")
		sb.WriteString(Truncate(bio, 280))
		sb.WriteString("\n")
	}
	if !p.CreatedAt.IsZero() {
		sb.WriteString(Faint.Sprintf("  joined %s\n", RelativeTime(p.CreatedAt)))
	}
	return sb.String()
}

// PostRow is the table form of a post
func PostRow(p api.Post) []string {
	author := ""
	if p.Author != nil {
		author = p.Author.Name()
	}
	return []string{p.ID, author, Truncate(p.Content, 60), RelativeTime(p.CreatedAt)}
}

// PostColumns are the headers for PostRow
var PostColumns = []string{"ID", "AUTHOR", "CONTENT", "POSTED"}

// Count renders n with thousands separators
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Plural renders "1 swipe" / "3 swipes"
func Plural(n int, singular, plural string) string {
	return fmt.Sprintf("%d %s", n, english.PluralWord(n, singular, plural))
}
