package features

import (
	"strings"

	"github.com/lalo8115/proyecto-vuelos/internal/schema"
)

// Category is a one-hot encoded input group.
type Category string

const (
	CategoryFlight      Category = "flight"
	CategoryOrigin      Category = "origin"
	CategoryDestination Category = "destination"
)

// Categories lists the one-hot groups in encoding order.
var Categories = []Category{CategoryFlight, CategoryOrigin, CategoryDestination}

// Layout names the schema columns a query is written into. The names are
// fixed by the trained model.
type Layout struct {
	Month   string
	Weekday string
	Hour    string

	FlightPrefix      string
	OriginPrefix      string
	DestinationPrefix string
}

// DefaultLayout matches the column names the delay model was trained with.
var DefaultLayout = Layout{
	Month:             "MES",
	Weekday:           "DIA_SEMANA",
	Hour:              "HORA_SALIDA",
	FlightPrefix:      "Flight_",
	OriginPrefix:      "PortFrom_",
	DestinationPrefix: "PortTo_",
}

// ColumnName builds the one-hot column for a raw code. Port codes are
// upper-cased; flight codes are used as entered.
func (l Layout) ColumnName(c Category, code string) string {
	switch c {
	case CategoryFlight:
		return l.FlightPrefix + code
	case CategoryOrigin:
		return l.OriginPrefix + strings.ToUpper(code)
	case CategoryDestination:
		return l.DestinationPrefix + strings.ToUpper(code)
	default:
		return ""
	}
}

// Activation is a one-hot column set to 1.
type Activation struct {
	Category Category
	Column   string
	Index    int
}

// Encode resolves the one-hot column for code. It returns false when the
// model never saw that value; the category then stays all zero.
func Encode(s *schema.Schema, l Layout, c Category, code string) (Activation, bool) {
	col := l.ColumnName(c, code)
	if col == "" {
		return Activation{}, false
	}
	i, ok := s.ColumnIndex(col)
	if !ok {
		return Activation{Category: c, Column: col, Index: -1}, false
	}
	return Activation{Category: c, Column: col, Index: i}, true
}
