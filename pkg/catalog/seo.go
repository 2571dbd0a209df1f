package catalog

import "strings"

const (
	DefaultSiteName         = "Electron Shop"
	MaxSeoTitleLength       = 60
	MaxSeoDescriptionLength = 160
	seoDescriptionPrefix    = 100
)

type Seo struct {
	Title       string
	Description string
}

// DeriveSeo builds the title and meta description for a catalog entity.
func DeriveSeo(name, description, siteName string) Seo {
	if siteName == "" {
		siteName = DefaultSiteName
	}
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	text := "Find the best " + name + " products"
	if description != "" {
		text += ": " + truncate(description, seoDescriptionPrefix)
	}

	return Seo{
		Title:       truncate(name+" | "+siteName, MaxSeoTitleLength),
		Description: truncate(text, MaxSeoDescriptionLength),
	}
}

// FillSeo returns the stored values, deriving only those that are empty.
func FillSeo(title, desc, name, description, siteName string) (string, string) {
	if title != "" && desc != "" {
		return title, desc
	}
	derived := DeriveSeo(name, description, siteName)
	if title == "" {
		title = derived.Title
	}
	if desc == "" {
		desc = derived.Description
	}
	return title, desc
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
