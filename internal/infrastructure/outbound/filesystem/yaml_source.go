package filesystem

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

var _ mock.Source = (*YAMLSource)(nil)

// YAMLSource loads mock definitions from a YAML file. The document may be a
// plain list of definitions or a mapping with a "mocks" list.
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a source reading path.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Load parses the file. Definitions are returned in file order with defaults applied.
func (s *YAMLSource) Load(_ context.Context) ([]mock.Definition, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mocks file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse mocks file %s: %w", s.path, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, nil
	}

	var entries []yamlMock
	content := root.Content[0]
	switch content.Kind {
	case yaml.SequenceNode:
		if err := content.Decode(&entries); err != nil {
			return nil, fmt.Errorf("failed to decode mocks list: %w", err)
		}
	case yaml.MappingNode:
		var doc yamlMockFile
		if err := content.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode mocks document: %w", err)
		}
		entries = doc.Mocks
	default:
		return nil, fmt.Errorf("unexpected YAML structure in %s", s.path)
	}

	defs := make([]mock.Definition, 0, len(entries))
	for _, e := range entries {
		defs = append(defs, toDefinition(e))
	}
	return defs, nil
}

func toDefinition(e yamlMock) mock.Definition {
	d := mock.Definition{
		Route:        e.Route,
		Method:       e.Method,
		ResponseFile: e.File,
		Status:       e.Status,
		Headers:      e.Headers,
		DelayMs:      e.DelayMs,
		ContentType:  InferContentType(e.ContentType, e.File),
		Engine:       e.Engine,
	}
	if e.RateLimit != nil {
		d.RateLimit = &mock.RateLimit{Rate: e.RateLimit.Rate, Burst: e.RateLimit.Burst}
	}
	return d.WithDefaults()
}
