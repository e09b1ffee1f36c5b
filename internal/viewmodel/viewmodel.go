package viewmodel

// Project is one demo listed on the home page.
type Project struct {
	Name        string
	Description string
	Href        string
}

// HomePage holds data for the landing page and the create-bag form.
type HomePage struct {
	Title       string
	Projects    []Project
	DefaultRows int
	DefaultCols int
	MinSize     int
	MaxSize     int
}

// StoreItem is a draggable entry in the store region.
type StoreItem struct {
	DOMID  string
	Index  int
	ItemID int
	Name   string
	Glyph  string
}

// Cell is one drop zone of the bag grid.
type Cell struct {
	DOMID   string
	Index   int
	HasItem bool
	ItemDOM string
	ItemID  int
	Name    string
	Glyph   string
}

// GridFragment holds data for the bag grid.
type GridFragment struct {
	BagID string
	Rows  int
	Cols  int
	Cells []Cell
}

// TotalFragment holds the occupied-slot counter.
type TotalFragment struct {
	Occupied int
	Slots    int
}

// BagPage holds data for the full item bag page.
type BagPage struct {
	Title    string
	BagID    string
	ShareURL string
	Store    []StoreItem
	Grid     GridFragment
	Total    TotalFragment
}
