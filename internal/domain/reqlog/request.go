package reqlog

// Request is an inbound HTTP request in domain terms, free of net/http.
type Request struct {
	Method string
	Path   string
	// Headers holds lower-cased header names; repeated headers are joined with ", ".
	Headers map[string]string
	// Body is the decoded request body: a JSON value, a form map, text, or an empty object.
	Body    any
	RawBody []byte
	Query   map[string]any
	// PathParams are the route parameters bound by the matched rule.
	PathParams map[string]string
	RemoteIP   string
	UserAgent  string
}

// QueryParams flattens Query to the first value of each parameter.
func (r Request) QueryParams() map[string]string {
	out := make(map[string]string, len(r.Query))
	for k, v := range r.Query {
		switch val := v.(type) {
		case string:
			out[k] = val
		case []string:
			if len(val) > 0 {
				out[k] = val[0]
			}
		}
	}
	return out
}
