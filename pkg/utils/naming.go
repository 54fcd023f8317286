package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	nonSlugChars = regexp.MustCompile("[^a-z0-9-]")
	multiHyphen  = regexp.MustCompile("-+")
)

// Slugify converts a string to a URL-friendly slug
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SanitizeFilename slugifies the base name of an uploaded file and drops its extension.
// Returns "file" when nothing usable remains.
func SanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	slug := Slugify(base)
	if slug == "" {
		return "file"
	}
	return slug
}

// GenerateInvoiceNo generates a unique invoice number such as "INV-1A2B3C4D"
func GenerateInvoiceNo(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
