package render

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/view"
)

// UnknownName is shown for listings without a name.
const UnknownName = "Unknown Business"

type cardData struct {
	Index   int
	ID      string
	Name    string
	Search  string
	Rating  string
	Reviews string
	Tel     template.URL
	L       directory.Listing
}

var cardTemplate = template.Must(template.New("card").Parse(`<div class="listing" id="{{.ID}}" data-index="{{.Index}}" data-search="{{.Search}}">
  <div class="listing-header">
    <h3 class="listing-name">{{.Name}}</h3>
    {{- with .Rating}}
    <div class="listing-rating">⭐ {{.}}{{with $.Reviews}} <span class="reviews">({{.}} reviews)</span>{{end}}</div>
    {{- end}}
  </div>
  <div class="listing-meta">
    {{- with .L.Location}}
    <div class="meta-item"><span class="icon">📍</span> {{.}}</div>
    {{- end}}
    {{- with .L.Phone}}
    <div class="meta-item"><span class="icon">📞</span> <a href="{{$.Tel}}">{{.}}</a></div>
    {{- end}}
    {{- with .L.PriceRange}}
    <div class="meta-item"><span class="icon">💰</span> {{.}}</div>
    {{- end}}
    {{- with .L.Availability}}
    <div class="meta-item"><span class="icon">🕒</span> {{.}}</div>
    {{- end}}
  </div>
  {{- with .L.Services}}
  <div class="services">{{range .}}<span class="service-tag">{{.}}</span>{{end}}</div>
  {{- end}}
  <div class="listing-actions">
    {{- with .L.Website}}
    <a href="{{.}}" class="btn btn-primary" target="_blank" rel="noopener">Visit Website</a>
    {{- end}}
    {{- if .L.Phone}}
    <a href="{{.Tel}}" class="btn btn-secondary">Call Now</a>
    {{- end}}
  </div>
</div>
`))

// renderCards renders one card per listing, in order.
func renderCards(listings []directory.Listing) (template.HTML, error) {
	var buf bytes.Buffer
	for i, l := range listings {
		if err := cardTemplate.Execute(&buf, newCardData(i, l)); err != nil {
			return "", err
		}
	}
	return template.HTML(buf.String()), nil
}

func newCardData(i int, l directory.Listing) cardData {
	c := cardData{
		Index:  i,
		ID:     view.CardID(i),
		Name:   l.Name,
		Search: l.SearchText(),
		L:      l,
	}
	if c.Name == "" {
		c.Name = UnknownName
	}
	if l.Rating != nil && *l.Rating != 0 {
		c.Rating = strconv.FormatFloat(*l.Rating, 'f', -1, 64)
		if l.Reviews != nil {
			c.Reviews = humanize.Comma(int64(*l.Reviews))
		}
	}
	if l.Phone != "" {
		c.Tel = telURL(l.Phone)
	}
	return c
}

// telURL builds a dial link from the digits (and a leading +) of phone.
func telURL(phone string) template.URL {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if (r >= '0' && r <= '9') || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return template.URL("tel:" + b.String())
}
