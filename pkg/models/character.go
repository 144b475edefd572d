package models

import "strings"

// Character is the normalized form of a character entry from the catalog.
type Character struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	NameKanji string   `json:"name_kanji,omitempty"`
	Nicknames []string `json:"nicknames,omitempty"`
	Image     string   `json:"image,omitempty"`
	Role      string   `json:"role,omitempty"` // Main or Supporting
}

// AllNames returns every name variant usable for guess matching.
func (c Character) AllNames() []string {
	names := make([]string, 0, 2+len(c.Nicknames))
	for _, n := range append([]string{c.Name, c.NameKanji}, c.Nicknames...) {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}
