package selection

import "sort"

// Cell identifies one cell of the active table by position. It is the
// element of the selection set and the key for transient per-cell UI state;
// it is never persisted.
type Cell struct {
	Row int
	Col int
}

// Model tracks which table is active and which of its cells are selected.
// Selection is scoped to the active table: changing the active index or
// replacing the extracted result always empties the set. All methods are
// synchronous and operate on in-memory state only.
type Model struct {
	active int
	cells  map[Cell]struct{}
}

func New() *Model {
	return &Model{cells: make(map[Cell]struct{})}
}

// Active returns the index of the active table.
func (m *Model) Active() int { return m.active }

// SetActive switches the active table. The selection set is cleared
// unconditionally, even when the index does not change.
func (m *Model) SetActive(i int) {
	m.active = i
	m.cells = make(map[Cell]struct{})
}

// Reset reacts to a wholesale replacement of the extracted result: active
// table back to 0, selection emptied.
func (m *Model) Reset() {
	m.SetActive(0)
}

// Toggle flips membership of the given cell in the selection set.
func (m *Model) Toggle(row, col int) {
	c := Cell{Row: row, Col: col}
	if _, ok := m.cells[c]; ok {
		delete(m.cells, c)
		return
	}
	m.cells[c] = struct{}{}
}

// Selected reports whether the cell is currently selected.
func (m *Model) Selected(row, col int) bool {
	_, ok := m.cells[Cell{Row: row, Col: col}]
	return ok
}

// Len returns the number of selected cells.
func (m *Model) Len() int { return len(m.cells) }

// Sorted returns the selected cells in canonical reading order: row
// ascending, then column ascending. Insertion order is discarded.
func (m *Model) Sorted() []Cell {
	out := make([]Cell, 0, len(m.cells))
	for c := range m.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
