package app

import (
	"net/url"
	"strings"

	"github.com/lib/pq"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// normalizeDBURL turns off binary results for prepared statements when asked to,
// unless the connection string already sets the parameter. Both URL and
// key/value connection strings are accepted.
func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	if !isURLConnString(raw) {
		if _, ok := connParams(raw)[preparedBinaryParam]; ok {
			return raw
		}
		return strings.TrimSpace(raw) + " " + preparedBinaryParam + "=yes"
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}
	query := parsed.Query()
	if query.Get(preparedBinaryParam) != "" {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// dbNameFromURL extracts the database name for span attributes and logs.
func dbNameFromURL(raw string) string {
	conn := strings.TrimSpace(raw)
	if isURLConnString(conn) {
		converted, err := pq.ParseURL(conn)
		if err != nil {
			return ""
		}
		conn = converted
	}
	return connParams(conn)["dbname"]
}

func isURLConnString(raw string) bool {
	raw = strings.TrimSpace(raw)
	return strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://")
}

// connParams reads a key/value connection string. Values containing spaces are
// not supported.
func connParams(conn string) map[string]string {
	params := make(map[string]string)
	for _, token := range strings.Fields(conn) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		params[key] = strings.Trim(value, `"'`)
	}
	return params
}
