package normalize

import "strings"

// Address joins the non-empty address parts with ", ".
// line2 is skipped when line2Suppressed is set.
func Address(line1, line2, city, state, zip *string, line2Suppressed bool) string {
	parts := make([]string, 0, 5)
	add := func(p *string) {
		if p == nil {
			return
		}
		if s := strings.TrimSpace(*p); s != "" {
			parts = append(parts, s)
		}
	}
	add(line1)
	if !line2Suppressed {
		add(line2)
	}
	add(city)
	add(state)
	add(zip)
	return strings.Join(parts, ", ")
}

// SuppressedFlag reports whether an address_line_2_suppression value means "Y".
func SuppressedFlag(v *string) bool {
	return v != nil && strings.EqualFold(strings.TrimSpace(*v), "Y")
}

// Trim returns a trimmed copy of v. Nil stays nil.
func Trim(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
