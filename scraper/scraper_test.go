package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listHTML = `<html><body>
<div class="ALTableCell"><div class="ALTableCellTitle">Desserts</div></div>
<div class="ALTableCell">
  <div class="ALTableCellImage"><img src="a.jpg"></div>
  <div><span>Kung Pao  Chicken</span><div>from thewoksoflife.com</div></div>
</div>
<div class="ALTableCell">
  <div class="ALTableCellImage"></div>
  <div><b>Mac &amp; Cheese</b><script>var x = 1;</script></div>
</div>
<div class="ALTableCell"><div class="ALTableCellImage"></div></div>
</body></html>`

func TestParseCells(t *testing.T) {
	cells, err := ParseCells(listHTML)
	require.NoError(t, err)
	assert.Equal(t, []Cell{
		{Index: 0, Title: "Kung Pao Chicken"},
		{Index: 1, Title: "Mac & Cheese"},
		{Index: 2, Title: "Recipe 3"},
	}, cells)
}

func TestSourceLink(t *testing.T) {
	u, ok := SourceLink(`<a href="https://www.anylist.com/help">Help</a>
<a href="https://ads.example.com">ad</a>
<a href="https://thewoksoflife.com/kung-pao">from The Woks of Life</a>`)
	assert.True(t, ok)
	assert.Equal(t, "https://thewoksoflife.com/kung-pao", u)

	u, ok = SourceLink(`<a href="/local">x</a><a href="https://www.anylist.com/x">y</a><a href="https://site.com/r">site</a>`)
	assert.True(t, ok)
	assert.Equal(t, "https://site.com/r", u)

	_, ok = SourceLink(`<p>no links</p>`)
	assert.False(t, ok)
}

type fakeApp struct {
	details   map[int]string
	failCell  int
	confirmed bool
	backs     int
}

func (f *fakeApp) Login(context.Context) error          { return nil }
func (f *fakeApp) OpenAllRecipes(context.Context) error { return nil }
func (f *fakeApp) LoadAll(context.Context) error        { return nil }

func (f *fakeApp) ListHTML(context.Context) (string, error) { return listHTML, nil }

func (f *fakeApp) OpenCell(_ context.Context, i int) (string, error) {
	if i == f.failCell {
		return "", errors.New("stale element")
	}
	return f.details[i], nil
}

func (f *fakeApp) Back(context.Context) error {
	f.backs++
	return nil
}

func TestScrape(t *testing.T) {
	app := &fakeApp{
		failCell: 2,
		details:  map[int]string{0: `<a href="https://thewoksoflife.com/kung-pao">from The Woks of Life</a>`},
	}
	rows, err := Scrape(context.Background(), app, func(context.Context) error {
		app.confirmed = true
		return nil
	}, nil)
	require.NoError(t, err)
	assert.True(t, app.confirmed)
	assert.Equal(t, []Row{
		{Title: "Kung Pao Chicken", SourceURL: "https://thewoksoflife.com/kung-pao"},
		{Title: "Mac & Cheese", SourceURL: NoURL},
		{Title: "Recipe 3", SourceURL: "Error: stale element"},
	}, rows)
	assert.Equal(t, 3, app.backs)

	table := Table(rows)
	assert.Equal(t, []string{"title", "source_url"}, table.Header)
	assert.Len(t, table.Rows, 3)
}

func TestScrapeStopsWhenConfirmFails(t *testing.T) {
	_, err := Scrape(context.Background(), &fakeApp{}, func(context.Context) error { return context.Canceled }, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
