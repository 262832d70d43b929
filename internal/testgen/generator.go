package testgen

import (
	"fmt"
	"strings"

	"github.com/openclaw/swagger2pytest/internal/spec"
)

// latencyCeilingSeconds is a liveness sanity bound asserted by every
// generated procedure, not a strict SLA.
const latencyCeilingSeconds = 30

var defaultImports = []string{"import pytest", "import requests"}

// Generator renders test suites for the endpoints of a canonical document.
// Generation is a pure transformation: the same document and base URL
// always produce byte-identical suites.
type Generator struct {
	baseURL string
}

// New returns a Generator targeting the given base URL. A trailing slash
// is trimmed; an empty URL falls back to http://localhost:8000.
func New(baseURL string) *Generator {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	return &Generator{baseURL: baseURL}
}

// Files returns one suite per endpoint, in document order. File stems are
// made unique across the run with a numeric discriminator so sibling
// routes sharing static segments cannot overwrite each other.
func (g *Generator) Files(doc *spec.Document) []Suite {
	fileNames := newNameRegistry()
	out := make([]Suite, 0, len(doc.Endpoints))
	for _, ep := range doc.Endpoints {
		stem := fileNames.claim(fmt.Sprintf("test_%s_%s", ep.Method, FileName(ep.Path)))
		out = append(out, Suite{
			FileName: stem + ".py",
			Imports:  defaultImports,
			Classes:  []Class{g.classFor(ep, newNameRegistry(), newNameRegistry())},
		})
	}
	return out
}

// FileByTag returns a single suite holding every endpoint that carries the
// tag. The second return is false when no endpoint matches.
func (g *Generator) FileByTag(doc *spec.Document, tag string) (Suite, bool) {
	endpoints := doc.EndpointsByTag(tag)
	if len(endpoints) == 0 {
		return Suite{}, false
	}
	suite := Suite{
		FileName: fmt.Sprintf("test_%s_endpoints.py", tag),
		Imports:  defaultImports,
	}
	classNames := newNameRegistry()
	caseNames := newNameRegistry()
	for _, ep := range endpoints {
		suite.Classes = append(suite.Classes, g.classFor(ep, classNames, caseNames))
	}
	return suite, true
}

func (g *Generator) classFor(ep spec.Endpoint, classNames, caseNames *nameRegistry) Class {
	cls := Class{
		Name:    "Test" + classNames.claim(ClassName(ep)),
		Doc:     fmt.Sprintf("Tests for %s %s", strings.ToUpper(string(ep.Method)), ep.Path),
		BaseURL: g.baseURL,
	}
	cls.Cases = append(cls.Cases, g.positiveCase(ep, caseNames))
	if p, ok := firstRequired(ep.Parameters); ok {
		cls.Cases = append(cls.Cases, g.negativeCase(ep, p, caseNames))
	}
	return cls
}

// positiveCase exercises the endpoint with synthesized valid inputs and
// asserts success status, response shape, and latency.
func (g *Generator) positiveCase(ep spec.Endpoint, caseNames *nameRegistry) Case {
	pathParams, queryParams, headerParams := partition(ep.Parameters)
	c := Case{
		Name: caseNames.claim(fmt.Sprintf("test_%s_%s", ep.Method, MethodSuffix(ep.Path))),
		Doc:  fmt.Sprintf("%s %s - Basic test", strings.ToUpper(string(ep.Method)), ep.Path),
	}

	if len(pathParams) > 0 {
		sec := Section{Comment: "Example values for path parameters"}
		for _, p := range pathParams {
			sec.Lines = append(sec.Lines, fmt.Sprintf("%s = %s", p.Name, pyLiteral(exampleValue(p))))
		}
		c.Sections = append(c.Sections, sec)
	}
	if len(queryParams) > 0 {
		sec := Section{Comment: "Example values for query parameters"}
		for _, p := range queryParams {
			sec.Lines = append(sec.Lines, fmt.Sprintf("%s = %s", p.Name, pyLiteral(exampleValue(p))))
		}
		c.Sections = append(c.Sections, sec)
	}

	urlSec := Section{Lines: []string{urlLine(ep.Path)}}
	if len(pathParams) > 0 {
		urlSec.Comment = "Substitute path parameters into the URL"
	}
	c.Sections = append(c.Sections, urlSec)

	if len(queryParams) > 0 {
		sec := Section{Comment: "Query parameters", Lines: []string{"params = {"}}
		for _, p := range queryParams {
			sec.Lines = append(sec.Lines, fmt.Sprintf("    %s: %s,", pyString(p.Name), p.Name))
		}
		sec.Lines = append(sec.Lines, "}")
		c.Sections = append(c.Sections, sec)
	}
	if len(headerParams) > 0 {
		sec := Section{Comment: "Headers", Lines: []string{"headers = {"}}
		for _, p := range headerParams {
			sec.Lines = append(sec.Lines, fmt.Sprintf("    %s: %s,", pyString(p.Name), pyLiteral(exampleValue(p))))
		}
		sec.Lines = append(sec.Lines, "}")
		c.Sections = append(c.Sections, sec)
	}

	hasBody := bodyAllowed(ep.Method) && ep.RequestBody != nil
	if hasBody {
		c.Sections = append(c.Sections, Section{
			Comment: "Request body",
			Lines:   pyAssignLines("payload", bodyPayload(ep.RequestBody)),
		})
	}

	c.Sections = append(c.Sections, Section{
		Lines: []string{requestLine(ep.Method, len(queryParams) > 0, len(headerParams) > 0, hasBody)},
	})

	c.Sections = append(c.Sections, Section{
		Comment: "Basic assertions",
		Lines:   []string{"assert response.status_code in " + pyIntList(successCodes(ep))},
	})
	if expectsJSON(ep) {
		c.Sections = append(c.Sections, Section{
			Comment: "JSON response shape",
			Lines: []string{
				`assert response.headers.get("content-type", "").startswith("application/json")`,
				"json_data = response.json()",
				"assert isinstance(json_data, (dict, list))",
			},
		})
	}
	c.Sections = append(c.Sections, latencySection())

	return c
}

// negativeCase exercises only the first required parameter in declaration
// order. A path-located parameter gets an out-of-domain sentinel spliced
// into the request target; any other location is exercised by issuing the
// request with no parameters at all.
func (g *Generator) negativeCase(ep spec.Endpoint, p spec.Parameter, caseNames *nameRegistry) Case {
	c := Case{
		Name: caseNames.claim(fmt.Sprintf("test_%s_%s_missing_%s", ep.Method, MethodSuffix(ep.Path), p.Name)),
		Doc:  fmt.Sprintf("%s %s - Missing required parameter %s", strings.ToUpper(string(ep.Method)), ep.Path, p.Name),
	}

	if p.In == spec.InPath {
		sentinel := "999999"
		if p.SchemaType == "string" {
			sentinel = "invalid"
		}
		// Other placeholders stay untouched on purpose.
		target := strings.ReplaceAll(ep.Path, "{"+p.Name+"}", sentinel)
		c.Sections = append(c.Sections, Section{
			Comment: "Invalid value for required path parameter",
			Lines:   []string{urlLine(target)},
		})
	} else {
		c.Sections = append(c.Sections, Section{
			Comment: "Request without required parameters",
			Lines:   []string{urlLine(ep.Path)},
		})
	}

	c.Sections = append(c.Sections, Section{
		Lines: []string{requestLine(ep.Method, false, false, false)},
	})
	// Downstream APIs vary in how they signal a missing or invalid
	// parameter, so the accepted error set is broad.
	c.Sections = append(c.Sections, Section{
		Comment: "Expect a client error status",
		Lines:   []string{"assert response.status_code in [400, 422, 404]"},
	})
	c.Sections = append(c.Sections, latencySection())

	return c
}

func latencySection() Section {
	return Section{
		Comment: "Latency bound",
		Lines:   []string{fmt.Sprintf("assert response.elapsed.total_seconds() < %d", latencyCeilingSeconds)},
	}
}

func urlLine(path string) string {
	return fmt.Sprintf(`url = f"{self.base_url}%s"`, path)
}

// requestLine selects the call shape for the verb and the present request
// parts. Each part appears exactly once.
func requestLine(method spec.Method, hasQuery, hasHeaders, hasBody bool) string {
	args := []string{"url"}
	if hasQuery {
		args = append(args, "params=params")
	}
	if hasHeaders {
		args = append(args, "headers=headers")
	}
	if hasBody {
		args = append(args, "json=payload")
	}
	return fmt.Sprintf("response = requests.%s(%s)", method, strings.Join(args, ", "))
}

func bodyAllowed(m spec.Method) bool {
	return m == spec.POST || m == spec.PUT || m == spec.PATCH
}

func bodyPayload(rb *spec.RequestBody) any {
	if rb.Example != nil {
		return rb.Example
	}
	if rb.Schema != nil {
		return payloadFromSchema(rb.Schema)
	}
	return genericPayload()
}

// successCodes resolves the expected-success set: every declared 2xx
// status, or the verb-specific default when none are declared. A document
// declaring only non-2xx responses falls back to the default rather than
// adopting the declared code.
func successCodes(ep spec.Endpoint) []int {
	var codes []int
	for _, r := range ep.Responses {
		if r.Status >= 200 && r.Status < 300 {
			codes = append(codes, r.Status)
		}
	}
	if len(codes) > 0 {
		return codes
	}
	switch ep.Method {
	case spec.POST:
		return []int{201, 200}
	case spec.DELETE:
		return []int{204, 200}
	default:
		return []int{200}
	}
}

// expectsJSON reports whether any declared 2xx response carries JSON
// content.
func expectsJSON(ep spec.Endpoint) bool {
	for _, r := range ep.Responses {
		if r.Status >= 200 && r.Status < 300 && r.ContentType == "application/json" {
			return true
		}
	}
	return false
}

func partition(params []spec.Parameter) (path, query, header []spec.Parameter) {
	for _, p := range params {
		switch p.In {
		case spec.InPath:
			path = append(path, p)
		case spec.InQuery:
			query = append(query, p)
		case spec.InHeader:
			header = append(header, p)
		}
	}
	return path, query, header
}

func firstRequired(params []spec.Parameter) (spec.Parameter, bool) {
	for _, p := range params {
		if p.Required {
			return p, true
		}
	}
	return spec.Parameter{}, false
}
