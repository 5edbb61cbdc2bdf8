package template

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/antchfx/xmlquery"
	"github.com/google/uuid"

	"github.com/fabiorvs/fake-requests/internal/domain/mock"
)

// helpers binds the template functions shared by both engines to one request.
type helpers struct {
	ctx mock.RenderContext
}

func newHelpers(ctx mock.RenderContext) helpers {
	return helpers{ctx: ctx}
}

func (h helpers) pathParam(name string) string  { return h.ctx.PathParams[name] }
func (h helpers) queryParam(name string) string { return h.ctx.QueryParams[name] }

func (h helpers) header(name string) string {
	for k, v := range h.ctx.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (h helpers) uuid() string { return uuid.NewString() }

func (h helpers) randomInt(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + rand.IntN(hi-lo+1)
}

func (h helpers) nowFormat(layout string) string {
	t, err := time.Parse(time.RFC3339, h.ctx.Now)
	if err != nil {
		return h.ctx.Now
	}
	return t.Format(layout)
}

func (h helpers) jsonPath(expression string) string {
	var data any
	if err := json.Unmarshal(h.ctx.Body, &data); err != nil {
		return ""
	}
	result, err := jsonpath.Get(expression, data)
	if err != nil {
		return ""
	}
	if s, ok := result.(string); ok {
		return s
	}
	return toJSONString(result)
}

func (h helpers) xmlPath(expression string) string {
	doc, err := xmlquery.Parse(bytes.NewReader(h.ctx.Body))
	if err != nil {
		return ""
	}
	node, err := xmlquery.Query(doc, expression)
	if err != nil || node == nil {
		return ""
	}
	return node.InnerText()
}

func seqInts(start, end int) []int {
	if end < start {
		return nil
	}
	s := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		s = append(s, i)
	}
	return s
}

func toJSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
