package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/reelkeep/internal/domain"
)

// Color palette
var (
	Amber     = lipgloss.Color("#F5C518")
	DimGray   = lipgloss.Color("#6B7280")
	LightGray = lipgloss.Color("#9CA3AF")
	White     = lipgloss.Color("#F9FAFB")
	Green     = lipgloss.Color("#10B981")
	Red       = lipgloss.Color("#EF4444")
	Blue      = lipgloss.Color("#3B82F6")
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Amber)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(Amber).
			Bold(true).
			MarginBottom(1)

	BadgeStyle = lipgloss.NewStyle().
			Foreground(White).
			Background(Blue).
			Padding(0, 1)
)

// Raw list membership characters (unstyled)
const (
	FavoriteChar  = "♥"
	WatchlistChar = "+"
	WatchedChar   = "✓"
	NoneChar      = "·"
)

// Pre-rendered membership indicators
var (
	FavoriteMark  = lipgloss.NewStyle().Foreground(Red).Render(FavoriteChar)
	WatchlistMark = lipgloss.NewStyle().Foreground(Blue).Render(WatchlistChar)
	WatchedMark   = lipgloss.NewStyle().Foreground(Green).Render(WatchedChar)
	NoneMark      = DimStyle.Render(NoneChar)
)

// membershipMarks renders the three list flags in a fixed-width column
func membershipMarks(item domain.CatalogItem) string {
	mark := func(on bool, m string) string {
		if on {
			return m
		}
		return NoneMark
	}
	return mark(item.IsFavorite, FavoriteMark) +
		mark(item.IsInWatchlist, WatchlistMark) +
		mark(item.IsWatched, WatchedMark)
}

// itemLine renders one movie: flags, id, title, year, score and optional rating
func itemLine(item domain.CatalogItem, rating float64) string {
	var b strings.Builder
	b.WriteString(membershipMarks(item))
	b.WriteString(" ")
	b.WriteString(DimStyle.Render(fmt.Sprintf("%8d", item.ID)))
	b.WriteString("  ")
	b.WriteString(TitleStyle.Render(Truncate(item.Title, 48)))
	if y := item.Year(); y > 0 {
		b.WriteString(" ")
		b.WriteString(SubtitleStyle.Render("(" + strconv.Itoa(y) + ")"))
	}
	b.WriteString("  ")
	b.WriteString(AccentStyle.Render("★ " + item.FormattedScore()))
	if rating > 0 {
		b.WriteString("  ")
		b.WriteString(BadgeStyle.Render("rated " + strconv.FormatFloat(rating, 'f', 1, 64)))
	}
	return b.String()
}

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 1 || len(runes) <= 1 {
		return "…"
	}
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
