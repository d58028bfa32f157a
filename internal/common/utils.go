package common

import (
	"net/url"
	"strings"
)

// PercentEncode escapes s for use as a query-string value. Spaces become
// %20 rather than '+', so city names survive any query parser.
func PercentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// QueryString joins alternating key/value pairs into an encoded query
// string, keeping the order they were given in. A trailing key without a
// value is ignored.
func QueryString(kv ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(PercentEncode(kv[i]))
		b.WriteByte('=')
		b.WriteString(PercentEncode(kv[i+1]))
	}
	return b.String()
}
