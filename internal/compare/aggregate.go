package compare

import "math"

// NoValidRows is returned by CheapestPrice when no row has a usable price.
var NoValidRows = math.Inf(1)

// CheapestPrice returns the lowest non-zero proportional price of rows, or
// NoValidRows when every row computes to zero.
func CheapestPrice(rows []Row, scaleFactor float64) float64 {
	cheapest := NoValidRows
	for _, r := range rows {
		p := r.UnitPrice(scaleFactor)
		if p > 0 && p < cheapest {
			cheapest = p
		}
	}
	return cheapest
}

// IsCheapest reports whether row matches the cheapest price of rows. All rows
// sharing the minimum are cheapest.
func IsCheapest(row Row, rows []Row, scaleFactor float64) bool {
	cheapest := CheapestPrice(rows, scaleFactor)
	if cheapest == NoValidRows {
		return false
	}
	return row.UnitPrice(scaleFactor) == cheapest
}

// RowResult is the evaluated state of one row.
type RowResult struct {
	Index     int
	Row       Row
	UnitPrice float64
	Valid     bool
	Cheapest  bool
}

// Result is a fully evaluated sheet.
type Result struct {
	Sheet        Sheet
	Rows         []RowResult
	Cheapest     float64
	ValidRows    int
	CheapestRows int
}

// HasCheapest reports whether at least one row is usable.
func (r Result) HasCheapest() bool {
	return r.Cheapest != NoValidRows
}

// Evaluate computes every row price and the cheapest flags in one pass over
// the sheet, with the same rules as CheapestPrice and IsCheapest.
func Evaluate(s Sheet) Result {
	factor := s.ScaleFactor()
	res := Result{
		Sheet:    s,
		Rows:     make([]RowResult, len(s.Rows)),
		Cheapest: NoValidRows,
	}

	for i, r := range s.Rows {
		p := r.UnitPrice(factor)
		res.Rows[i] = RowResult{Index: i, Row: r, UnitPrice: p, Valid: p > 0}
		if p > 0 {
			res.ValidRows++
			if p < res.Cheapest {
				res.Cheapest = p
			}
		}
	}

	if !res.HasCheapest() {
		return res
	}
	for i := range res.Rows {
		if res.Rows[i].UnitPrice == res.Cheapest {
			res.Rows[i].Cheapest = true
			res.CheapestRows++
		}
	}
	return res
}
