package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"toybox/internal/viewmodel"
	"toybox/views/components"
)

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html><head><meta charset="utf-8"><title>%s</title>`+
			`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bulma@0.9.4/css/bulma.min.css">`+
			`<link rel="stylesheet" href="/static/bag.css"></head><body><section class="section"><div class="container">`,
			templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></section></body></html>`)
		return err
	})
}

// HomePage lists the demos and offers the create-bag form.
func HomePage(data viewmodel.HomePage) templ.Component {
	return layout(data.Title, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1 class="title">%s</h1><div class="content"><ul>`, templ.EscapeString(data.Title)); err != nil {
			return err
		}
		for _, p := range data.Projects {
			if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a> %s</li>`,
				templ.EscapeString(p.Href), templ.EscapeString(p.Name), templ.EscapeString(p.Description)); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, `</ul></div>
<form id="new-bag" method="POST" action="/bags" class="box">
	<div class="field"><label class="label">Rows</label><div class="control"><input class="input" type="number" name="rows" value="%d" min="%d" max="%d"></div></div>
	<div class="field"><label class="label">Columns</label><div class="control"><input class="input" type="number" name="cols" value="%d" min="%d" max="%d"></div></div>
	<div class="field"><div class="control"><button type="submit" class="button is-primary">Open item bag</button></div></div>
</form>`, data.DefaultRows, data.MinSize, data.MaxSize, data.DefaultCols, data.MinSize, data.MaxSize)
		return err
	}))
}

// BagPage renders the store, the bag grid and the client script.
func BagPage(data viewmodel.BagPage) templ.Component {
	return layout(data.Title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1 class="title">Item Bag</h1><p class="help">Share: %s</p>`, templ.EscapeString(data.ShareURL)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div class="box"><div class="tags"><span class="tag">Store</span></div>`); err != nil {
			return err
		}
		if err := components.StoreRegion(data.Store).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `</div><div class="box"><div class="tags"><span class="tag">Bag</span><span id="%s">`, components.TotalID); err != nil {
			return err
		}
		if err := components.Total(data.Total).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `</span></div><div id="%s">`, components.GridID); err != nil {
			return err
		}
		if err := components.Grid(data.Grid).Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `</div></div>
<form method="POST" action="/bag/%[1]s/close"><button type="submit" class="button is-light is-small">Close bag</button></form>
<script src="/static/bag.js" data-bag-id="%[1]s"></script>`, templ.EscapeString(data.BagID))
		return err
	}))
}

// NotFoundPage is rendered for unknown routes and bags.
func NotFoundPage() templ.Component {
	return layout("Not found", templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1 class="title">404</h1><p>Nothing here. <a href="/">Back to the toy box</a></p>`)
		return err
	}))
}
