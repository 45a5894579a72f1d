package compare

// Row is one product offer as typed by the user.
type Row struct {
	Price  string `json:"price"`
	Amount string `json:"amount"`
}

// UnitPrice is the proportional price of the row at the given scale.
func (r Row) UnitPrice(scaleFactor float64) float64 {
	return ComputeUnitPrice(r.Price, r.Amount, scaleFactor)
}

// IsEmpty reports whether nothing was typed in the row.
func (r Row) IsEmpty() bool {
	return r.Price == "" && r.Amount == ""
}

// Field names an editable column of a row.
type Field int

const (
	FieldPrice Field = iota
	FieldAmount
)

func (f Field) String() string {
	if f == FieldAmount {
		return "amount"
	}
	return "price"
}

// Sheet is a complete comparison: the ordered rows plus the unit selection.
//
// Sheet is a value. Every operation returns a new Sheet with its own row
// slice and leaves the receiver untouched.
type Sheet struct {
	Rows  []Row     `json:"rows"`
	Unit  UnitKind  `json:"unit"`
	Scale ScaleMode `json:"scale"`
}

// NewSheet returns a weight sheet with n empty rows (at least one).
func NewSheet(n int) Sheet {
	if n < 1 {
		n = 1
	}
	return Sheet{
		Rows:  make([]Row, n),
		Unit:  Weight,
		Scale: ScaleLarge,
	}
}

func (s Sheet) Len() int {
	return len(s.Rows)
}

// ScaleFactor is the factor of the sheet's scale mode.
func (s Sheet) ScaleFactor() float64 {
	return s.Scale.Factor()
}

func (s Sheet) clone(extra int) Sheet {
	rows := make([]Row, len(s.Rows), len(s.Rows)+extra)
	copy(rows, s.Rows)
	s.Rows = rows
	return s
}

// AddRow appends an empty row.
func (s Sheet) AddRow() Sheet {
	next := s.clone(1)
	next.Rows = append(next.Rows, Row{})
	return next
}

// RemoveRow drops the last row. A sheet never goes below one row.
func (s Sheet) RemoveRow() Sheet {
	next := s.clone(0)
	if len(next.Rows) <= 1 {
		return next
	}
	next.Rows = next.Rows[:len(next.Rows)-1]
	return next
}

// ClearAll empties every row keeping the row count and order.
func (s Sheet) ClearAll() Sheet {
	next := s.clone(0)
	for i := range next.Rows {
		next.Rows[i] = Row{}
	}
	return next
}

// UpdateRow sets one field of the row at index. Out of range is a no-op.
func (s Sheet) UpdateRow(index int, field Field, value string) Sheet {
	next := s.clone(0)
	if index < 0 || index >= len(next.Rows) {
		return next
	}
	switch field {
	case FieldPrice:
		next.Rows[index].Price = value
	case FieldAmount:
		next.Rows[index].Amount = value
	}
	return next
}

// WithUnit selects weight or volume.
func (s Sheet) WithUnit(u UnitKind) Sheet {
	next := s.clone(0)
	next.Unit = u
	return next
}

// WithScale selects the amount entry unit.
func (s Sheet) WithScale(m ScaleMode) Sheet {
	next := s.clone(0)
	next.Scale = m
	return next
}

func (s Sheet) ToggleScale() Sheet {
	return s.WithScale(s.Scale.Toggle())
}
