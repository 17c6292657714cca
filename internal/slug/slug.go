// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives the URL slugs of blog posts, categories and tags.
package slug

import (
	"strings"

	gslug "github.com/gosimple/slug"
)

// MaxLength bounds a generated slug. Longer slugs are cut back to the last
// whole word.
const MaxLength = 96

// Generate returns the slug for a post title, category or tag name.
// Accented and non-Latin letters are transliterated, "&" reads as "and".
// Example: "Café & Über Edge" -> "cafe-and-uber-edge"
func Generate(name string) string {
	s := gslug.Make(name)
	if len(s) <= MaxLength {
		return s
	}
	if s[MaxLength] != '-' {
		if i := strings.LastIndexByte(s[:MaxLength], '-'); i > 0 {
			return strings.TrimRight(s[:i], "-_")
		}
	}
	return strings.TrimRight(s[:MaxLength], "-_")
}
