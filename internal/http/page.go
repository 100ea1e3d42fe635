package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fyrsmithlabs/constellation/internal/constellation"
	"github.com/fyrsmithlabs/constellation/internal/garden"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("constellation.html").
		Funcs(template.FuncMap{"describe": describe}).
		ParseFS(templateFS, "templates/constellation.html"),
)

// pageData is what the constellation template renders.
type pageData struct {
	View  *constellation.View
	Feed  []feedItem
	Empty bool
}

type feedItem struct {
	constellation.Activity
	When string
}

func (s *Server) handlePage(c echo.Context) error {
	v := s.views.Build(c.Request().Context())
	now := s.now()

	data := pageData{
		View:  v,
		Feed:  make([]feedItem, 0, len(v.RecentActivity)),
		Empty: len(v.GardenSummaries) == 0,
	}
	for _, a := range v.RecentActivity {
		data.Feed = append(data.Feed, feedItem{Activity: a, When: relativeTime(a.At, now)})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("render constellation page: %w", err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// describe renders the verb phrase for an activity.
func describe(a constellation.Activity) string {
	switch a.Type {
	case constellation.ActivityTending:
		return "tended a question in " + a.Garden
	case constellation.ActivityPlanting:
		return "planted a question in " + a.Garden
	case constellation.ActivityLetter:
		return "left a letter"
	case constellation.ActivityVisit:
		return "visited " + a.Garden
	}
	return string(a.Type)
}

// relativeTime formats ts against now: "just now", then minutes, hours and
// days, falling back to the calendar date after a week. Unparsable
// timestamps show their stored text.
func relativeTime(ts garden.Timestamp, now time.Time) string {
	if !ts.Valid() {
		return ts.String()
	}

	d := now.Sub(ts.Time())
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
	return ts.Time().Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
