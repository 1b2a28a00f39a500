package report

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/ibeckermayer/tastemap/internal/types"
)

// Builder renders run summaries
type Builder struct {
	maxRestaurants int
	template       *template.Template
}

// New creates a new report builder. At most maxRestaurants new restaurants
// are listed; 0 lists all of them.
func New(maxRestaurants int) (*Builder, error) {
	tmpl, err := template.New("report").Parse(defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &Builder{
		maxRestaurants: maxRestaurants,
		template:       tmpl,
	}, nil
}

// Report is a rendered run summary
type Report struct {
	Subject   string
	HTMLBody  string
	PlainBody string
	CreatedAt time.Time
}

// ReportData is the template data structure
type ReportData struct {
	Title       string
	Date        string
	RunID       string
	Duration    string
	Counts      []CountRow
	Restaurants []RestaurantData
	Omitted     int
	Emotions    []Bucket
	Languages   []Bucket
}

// CountRow is one line of the counts table
type CountRow struct {
	Label string
	Value int
}

// RestaurantData represents a restaurant in the report template
type RestaurantData struct {
	Name        string
	Address     string
	PrimaryType string
	Rating      string
	Price       string
	Reviews     int
}

// Bucket is one label of a distribution
type Bucket struct {
	Label string
	Count int
	Share string
}

// Build renders a run summary
func (b *Builder) Build(s *types.RunSummary) (*Report, error) {
	if s == nil {
		return nil, fmt.Errorf("no run summary to report")
	}

	now := time.Now()
	data := ReportData{
		Title:    "Collection run",
		Date:     s.StartedAt.Format("Monday, January 2 15:04"),
		RunID:    s.RunID,
		Duration: s.Duration().Round(time.Second).String(),
		Counts: []CountRow{
			{"New restaurants", s.NewRestaurants},
			{"New ratings", s.NewRatings},
			{"Reviews analyzed", s.Analyzed},
			{"Reviews without text", s.SkippedEmpty},
			{"Reviews failed", s.AnalysisFailed},
			{"Ratings removed", s.RemovedRatings},
			{"Sentiment rows removed", s.RemovedSentiments},
			{"Restaurants total", s.TotalRestaurants},
			{"Ratings total", s.TotalRatings},
			{"Sentiment rows total", s.TotalSentiments},
			{"Users", s.Users},
		},
		Emotions:  buckets(s.Emotions),
		Languages: buckets(s.Languages),
	}

	// Highest rated first
	restaurants := append([]types.Restaurant(nil), s.AddedRestaurants...)
	sort.SliceStable(restaurants, func(i, j int) bool {
		return restaurants[i].Rating > restaurants[j].Rating
	})
	if b.maxRestaurants > 0 && len(restaurants) > b.maxRestaurants {
		data.Omitted = len(restaurants) - b.maxRestaurants
		restaurants = restaurants[:b.maxRestaurants]
	}
	for _, r := range restaurants {
		data.Restaurants = append(data.Restaurants, RestaurantData{
			Name:        r.Name,
			Address:     r.Address,
			PrimaryType: r.PrimaryType,
			Rating:      formatRating(r.Rating),
			Price:       formatPrice(r.PriceLevel),
			Reviews:     r.Attributes.UserRatingCount,
		})
	}

	var htmlBuf bytes.Buffer
	if err := b.template.Execute(&htmlBuf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return &Report{
		Subject:   fmt.Sprintf("tastemap run %s: %d new restaurants, %d new ratings", s.StartedAt.Format("Jan 2"), s.NewRestaurants, s.NewRatings),
		HTMLBody:  htmlBuf.String(),
		PlainBody: buildPlainText(data),
		CreatedAt: now,
	}, nil
}

// buckets sorts a distribution by count, then label
func buckets(m map[string]int) []Bucket {
	total := 0
	for _, n := range m {
		total += n
	}

	out := make([]Bucket, 0, len(m))
	for label, n := range m {
		share := "0%"
		if total > 0 {
			share = fmt.Sprintf("%.0f%%", 100*float64(n)/float64(total))
		}
		out = append(out, Bucket{Label: label, Count: n, Share: share})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func formatRating(r float64) string {
	if r == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", r)
}

func formatPrice(level int) string {
	if level <= 0 {
		return "-"
	}
	s := ""
	for i := 0; i < level; i++ {
		s += "€"
	}
	return s
}

func buildPlainText(data ReportData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("%s\n%s (run %s, %s)\n", data.Title, data.Date, data.RunID, data.Duration))
	buf.WriteString("\n")

	for _, c := range data.Counts {
		buf.WriteString(fmt.Sprintf("%-24s %d\n", c.Label+":", c.Value))
	}

	if len(data.Restaurants) > 0 {
		buf.WriteString("\nNew restaurants\n")
		for i, r := range data.Restaurants {
			buf.WriteString(fmt.Sprintf("%d. %s (%s, %s) %s\n", i+1, r.Name, r.Rating, r.Price, r.Address))
		}
		if data.Omitted > 0 {
			buf.WriteString(fmt.Sprintf("   ... and %d more\n", data.Omitted))
		}
	}

	writeBuckets(&buf, "Emotions", data.Emotions)
	writeBuckets(&buf, "Languages", data.Languages)

	return buf.String()
}

func writeBuckets(buf *bytes.Buffer, title string, bs []Bucket) {
	if len(bs) == 0 {
		return
	}
	buf.WriteString(fmt.Sprintf("\n%s\n", title))
	for _, b := range bs {
		buf.WriteString(fmt.Sprintf("  %-16s %4d  %s\n", b.Label, b.Count, b.Share))
	}
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 720px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        .container { background: white; border-radius: 8px; padding: 20px; }
        h1 { color: #c0392b; margin-bottom: 5px; }
        h2 { color: #333; font-size: 16px; margin-top: 24px; }
        .date { color: #666; margin-bottom: 20px; }
        table { width: 100%; border-collapse: collapse; }
        td, th { text-align: left; padding: 6px 4px; border-bottom: 1px solid #eee; font-size: 14px; }
        td.num { text-align: right; }
        .muted { color: #999; }
        .footer { margin-top: 20px; padding-top: 15px; border-top: 1px solid #eee; color: #999; font-size: 12px; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="date">{{.Date}} · {{.Duration}}</div>

        <h2>Counts</h2>
        <table>
            {{range .Counts}}<tr><td>{{.Label}}</td><td class="num">{{.Value}}</td></tr>
            {{end}}
        </table>

        {{if .Restaurants}}
        <h2>New restaurants</h2>
        <table>
            <tr><th>Name</th><th>Type</th><th>Rating</th><th>Price</th><th>Reviews</th></tr>
            {{range .Restaurants}}
            <tr>
                <td>{{.Name}}<br><span class="muted">{{.Address}}</span></td>
                <td>{{.PrimaryType}}</td>
                <td class="num">{{.Rating}}</td>
                <td>{{.Price}}</td>
                <td class="num">{{.Reviews}}</td>
            </tr>
            {{end}}
        </table>
        {{if .Omitted}}<p class="muted">... and {{.Omitted}} more</p>{{end}}
        {{end}}

        {{if .Emotions}}
        <h2>Emotions</h2>
        <table>
            {{range .Emotions}}<tr><td>{{.Label}}</td><td class="num">{{.Count}}</td><td class="num">{{.Share}}</td></tr>
            {{end}}
        </table>
        {{end}}

        {{if .Languages}}
        <h2>Languages</h2>
        <table>
            {{range .Languages}}<tr><td>{{.Label}}</td><td class="num">{{.Count}}</td><td class="num">{{.Share}}</td></tr>
            {{end}}
        </table>
        {{end}}

        <div class="footer">
            Run {{.RunID}} · Generated by tastemap
        </div>
    </div>
</body>
</html>`
