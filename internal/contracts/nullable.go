package contracts

import "math"

// Float returns a pointer to v, for building nullable fields
func Float(v float64) *float64 {
	return &v
}

// FloatOr returns *p, or def when p is nil or NaN. NaN is treated as null
// so a missing value has one behavior at every call site.
func FloatOr(p *float64, def float64) float64 {
	if p == nil || math.IsNaN(*p) {
		return def
	}
	return *p
}

// IsNull reports whether a nullable float carries no usable value
func IsNull(p *float64) bool {
	return p == nil || math.IsNaN(*p)
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}

// String returns a pointer to v
func String(v string) *string {
	return &v
}
