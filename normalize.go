package xctor

// Normalize presents every raw result row as a Tuple.
//
// A raw row is either a bare value (single-column queries) or a []any
// (multi-column queries); bare values are wrapped into one-element tuples.
// The result has the same length and order as raw, and an empty input yields
// an empty, non-nil result.
//
// A result with exactly one row always goes through NormalizeRow. Callers
// cannot tell a one-row multi-column result from a one-column row whose value
// happens to be a []any; the shape is guessed from the row, not from the
// query's declared arity.
func Normalize(raw []any) []Tuple {
	if len(raw) == 1 {
		return []Tuple{NormalizeRow(raw[0])}
	}
	out := make([]Tuple, len(raw))
	for i, r := range raw {
		if t, ok := asTuple(r); ok {
			out[i] = t
			continue
		}
		out[i] = Tuple{r}
	}
	return out
}

// NormalizeRow returns row unchanged if it is already tuple-shaped,
// otherwise wraps it into a one-element Tuple.
func NormalizeRow(row any) Tuple {
	if t, ok := asTuple(row); ok {
		return t
	}
	return Tuple{row}
}

func asTuple(v any) (Tuple, bool) {
	switch t := v.(type) {
	case Tuple:
		return t, true
	case []any:
		return Tuple(t), true
	}
	return nil, false
}
