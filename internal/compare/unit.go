package compare

import "fmt"

// UnitKind selects what is being measured.
type UnitKind int

const (
	Weight UnitKind = iota
	Volume
)

type unitLabels struct {
	name  string
	large string
	small string
}

var unitTable = map[UnitKind]unitLabels{
	Weight: {name: "weight", large: "kg", small: "g"},
	Volume: {name: "volume", large: "L", small: "ml"},
}

func (u UnitKind) String() string {
	if l, ok := unitTable[u]; ok {
		return l.name
	}
	return "unknown"
}

// LargeLabel is the symbol of the large unit (kg, L).
func (u UnitKind) LargeLabel() string {
	return unitTable[u].large
}

// SmallLabel is the symbol of the small unit (g, ml).
func (u UnitKind) SmallLabel() string {
	return unitTable[u].small
}

// ParseUnitKind accepts "weight" or "volume".
func ParseUnitKind(s string) (UnitKind, error) {
	for kind, l := range unitTable {
		if l.name == s {
			return kind, nil
		}
	}
	return Weight, fmt.Errorf("unknown unit kind %q", s)
}

func (u UnitKind) MarshalText() ([]byte, error) {
	if _, ok := unitTable[u]; !ok {
		return nil, fmt.Errorf("unknown unit kind %d", int(u))
	}
	return []byte(u.String()), nil
}

func (u *UnitKind) UnmarshalText(text []byte) error {
	kind, err := ParseUnitKind(string(text))
	if err != nil {
		return err
	}
	*u = kind
	return nil
}

// ScaleMode selects the unit amounts are entered in.
//
// In ScaleSmall the amount is typed in the small unit (g, ml) while the
// proportional price stays expressed per large unit, so the quotient is
// multiplied by 1000.
type ScaleMode int

const (
	ScaleLarge ScaleMode = iota
	ScaleSmall
)

const smallUnitsPerLarge = 1000

// Factor is the multiplier applied to price/amount.
func (s ScaleMode) Factor() float64 {
	if s == ScaleSmall {
		return smallUnitsPerLarge
	}
	return 1
}

// AmountLabel is the unit the amount field is read in.
func (s ScaleMode) AmountLabel(u UnitKind) string {
	if s == ScaleSmall {
		return u.SmallLabel()
	}
	return u.LargeLabel()
}

// PriceLabel is the unit the proportional price is expressed per.
func (s ScaleMode) PriceLabel(u UnitKind) string {
	return u.LargeLabel()
}

// Toggle switches between large and small unit entry.
func (s ScaleMode) Toggle() ScaleMode {
	if s == ScaleSmall {
		return ScaleLarge
	}
	return ScaleSmall
}

func (s ScaleMode) String() string {
	switch s {
	case ScaleLarge:
		return "large"
	case ScaleSmall:
		return "small"
	default:
		return "unknown"
	}
}

// ParseScaleMode accepts "large" or "small".
func ParseScaleMode(s string) (ScaleMode, error) {
	switch s {
	case "large":
		return ScaleLarge, nil
	case "small":
		return ScaleSmall, nil
	default:
		return ScaleLarge, fmt.Errorf("unknown scale mode %q", s)
	}
}

func (s ScaleMode) MarshalText() ([]byte, error) {
	if s != ScaleLarge && s != ScaleSmall {
		return nil, fmt.Errorf("unknown scale mode %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *ScaleMode) UnmarshalText(text []byte) error {
	mode, err := ParseScaleMode(string(text))
	if err != nil {
		return err
	}
	*s = mode
	return nil
}
