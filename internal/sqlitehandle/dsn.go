package sqlitehandle

import (
	"net/url"
	"strings"
)

var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// buildDSN turns a location and its flags into a file: URI understood by
// the engine. Parameters already present on a file: location win over the
// ones derived from flags.
//
// https://www.sqlite.org/uri.html
func buildDSN(location string, flags OpenFlags) string {
	var existing url.Values
	isURI := strings.HasPrefix(location, "file:")
	if isURI {
		existing = uriParams(location)
	}

	var params []string
	add := func(key, value string) {
		if existing.Has(key) {
			return
		}
		params = append(params, key+"="+value)
	}

	add("mode", flags.Mode().Value)

	if flags.Has(OpenSharedCache) {
		add("cache", "shared")
	} else if flags.Has(OpenPrivateCache) {
		add("cache", "private")
	}

	if flags.Has(OpenNoMutex) {
		add("_mutex", "no")
	} else if flags.Has(OpenFullMutex) {
		add("_mutex", "full")
	}

	query := strings.Join(params, "&")

	if isURI {
		switch {
		case query == "":
			return location
		case strings.Contains(location, "?"):
			return location + "&" + query
		default:
			return location + "?" + query
		}
	}

	// With OpenURI the caller already escaped the path.
	if !flags.Has(OpenURI) {
		location = uriPathEscaper.Replace(location)
	}
	return "file:" + location + "?" + query
}

// uriParams returns the query parameters of a file: URI. Unparsable pairs
// are ignored; the engine reports them on open.
func uriParams(location string) url.Values {
	_, rawQuery, ok := strings.Cut(location, "?")
	if !ok {
		return nil
	}
	rawQuery, _, _ = strings.Cut(rawQuery, "#")

	values, _ := url.ParseQuery(rawQuery)
	return values
}
