// Package components renders the item bag fragments pushed over SSE.
package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"toybox/internal/viewmodel"
)

// Fragment ids shared with static/bag.js.
const (
	GridID  = "bag-grid"
	TotalID = "bag-total"
)

// StoreRegion renders the fixed row of store items.
func StoreRegion(items []viewmodel.StoreItem) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="bag-grid store" style="grid-template-columns:repeat(%d,minmax(48px,1fr))">`, len(items))
		for _, item := range items {
			b.WriteString(`<div class="cell">`)
			writeDraggable(&b, item.DOMID, "store", item.Index, item.ItemID, item.Name, item.Glyph)
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Grid renders the bag cells. Every cell is a drop zone stamped with its
// slot index; occupied cells hold a draggable bag item.
func Grid(data viewmodel.GridFragment) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div class="bag-grid" style="grid-template-columns:repeat(%d,minmax(48px,1fr));grid-template-rows:repeat(%d,minmax(48px,1fr))">`, data.Cols, data.Rows)
		for _, cell := range data.Cells {
			fmt.Fprintf(&b, `<div id="%s" class="cell dropzone" data-drop-index="%d">`, templ.EscapeString(cell.DOMID), cell.Index)
			if cell.HasItem {
				writeDraggable(&b, cell.ItemDOM, "bag", cell.Index, cell.ItemID, cell.Name, cell.Glyph)
			}
			b.WriteString(`</div>`)
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Total renders the occupied-slot counter.
func Total(data viewmodel.TotalFragment) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="tag">Total: %d / %d</span>`, data.Occupied, data.Slots)
		return err
	})
}

func writeDraggable(b *strings.Builder, id, itemType string, index, itemID int, name, glyph string) {
	fmt.Fprintf(b,
		`<div id="%s" class="item draggable" draggable="true" data-item-type="%s" data-source-index="%d" data-item-id="%d" title="%s">%s</div>`,
		templ.EscapeString(id), itemType, index, itemID, templ.EscapeString(name), templ.EscapeString(glyph))
}
