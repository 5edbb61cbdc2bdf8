package filesystem

// yamlMockFile is the document shape with a top-level "mocks" key.
type yamlMockFile struct {
	Mocks []yamlMock `yaml:"mocks"`
}

// yamlMock is the YAML deserialization target for one mock definition.
type yamlMock struct {
	Route       string            `yaml:"route"`
	Method      string            `yaml:"method,omitempty"`
	File        string            `yaml:"file"`
	Status      int               `yaml:"status,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	DelayMs     int               `yaml:"delay_ms,omitempty"`
	ContentType string            `yaml:"content_type,omitempty"`
	Engine      string            `yaml:"engine,omitempty"`
	RateLimit   *yamlRateLimit    `yaml:"rate_limit,omitempty"`
}

type yamlRateLimit struct {
	Rate  float64 `yaml:"rate"`
	Burst int     `yaml:"burst"`
}
