// Package lifecycle keeps image files in storage in step with the URL lists
// held by catalog documents.
package lifecycle

import "electron-shop/api/pkg/catalog"

// Append returns images followed by urls.
func Append(images, urls []string) []string {
	out := make([]string, 0, len(images)+len(urls))
	out = append(out, images...)
	return append(out, urls...)
}

// ReplaceAt swaps the URL at index for url and returns the new list and the
// URL that was replaced.
func ReplaceAt(images []string, index int, url string) ([]string, string, error) {
	if index < 0 || index >= len(images) {
		return images, "", catalog.IndexOutOfRange(index, len(images))
	}
	out := Append(images, nil)
	old := out[index]
	out[index] = url
	return out, old, nil
}

// RemoveAt drops the URL at index and returns the new list and the removed URL.
func RemoveAt(images []string, index int) ([]string, string, error) {
	if index < 0 || index >= len(images) {
		return images, "", catalog.IndexOutOfRange(index, len(images))
	}
	out := make([]string, 0, len(images)-1)
	out = append(out, images[:index]...)
	out = append(out, images[index+1:]...)
	return out, images[index], nil
}

// RemoveAll clears the list and returns every URL it held.
func RemoveAll(images []string) ([]string, []string) {
	return []string{}, Append(images, nil)
}

// Orphans returns the URLs present in before but absent from after, in the
// order they appeared in before.
func Orphans(before, after []string) []string {
	keep := make(map[string]struct{}, len(after))
	for _, u := range after {
		keep[u] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, u := range before {
		if _, ok := keep[u]; ok {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
