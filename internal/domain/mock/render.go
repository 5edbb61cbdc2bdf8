package mock

// BodyRenderer renders a response body dynamically from request data.
type BodyRenderer interface {
	Render(ctx RenderContext) ([]byte, error)
}

// RenderContext provides request data for templated response bodies.
type RenderContext struct {
	Method      string
	Path        string
	Headers     map[string]string
	QueryParams map[string]string
	PathParams  map[string]string
	Body        []byte
	Now         string // ISO-8601 timestamp
}
