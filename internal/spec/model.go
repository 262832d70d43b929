package spec

import "sort"

// Canonical document model produced by the normalizer and consumed by the
// test generator.

// Method is a lowercase HTTP method name.
type Method string

const (
	GET     Method = "get"
	POST    Method = "post"
	PUT     Method = "put"
	DELETE  Method = "delete"
	PATCH   Method = "patch"
	HEAD    Method = "head"
	OPTIONS Method = "options"
)

// knownMethods fixes both the recognized verb set and the order in which
// operations under a path item are visited.
var knownMethods = []Method{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS}

// Location is where a parameter is carried in the request.
type Location string

const (
	InQuery  Location = "query"
	InPath   Location = "path"
	InHeader Location = "header"
	InCookie Location = "cookie"
	InBody   Location = "body"
)

// Info mirrors the document's info block.
type Info struct {
	Title       string
	Version     string
	Description string
	Contact     map[string]string
	License     map[string]string
}

// Document is the normalized form of one OpenAPI/Swagger document.
type Document struct {
	// Version is the declared version marker ("3.0.0", "2.0", ...).
	Version   string
	Info      Info
	Endpoints []Endpoint
}

// Endpoint is one (path template, HTTP method) operation. The pair is
// unique within a parsed document.
type Endpoint struct {
	Path        string
	Method      Method
	OperationID string
	Summary     string
	Description string
	Tags        []string
	// Parameters holds path-item-level parameters followed by
	// operation-level parameters, concatenated verbatim. Duplicate names
	// can occur; the normalizer does not merge them.
	Parameters  []Parameter
	RequestBody *RequestBody
	Responses   []Response
	Security    []map[string][]string
}

// Parameter is a single declared parameter with its defaulted fields
// resolved once, here, instead of ad hoc during generation.
type Parameter struct {
	Name        string
	In          Location
	Required    bool
	Description string
	// SchemaType is the declared primitive type
	// (string|integer|number|boolean|array|object), or empty when unset.
	SchemaType string
	Example    any
	Default    any
}

// RequestBody models the application/json request body of an operation.
// Other content types are not modeled.
type RequestBody struct {
	Description string
	Required    bool
	ContentType string
	Schema      map[string]any
	Example     any
}

// Response is one declared response with an integer status code.
type Response struct {
	Status      int
	Description string
	// ContentType is "application/json" when the document declares a JSON
	// content entry for this response, empty otherwise.
	ContentType string
	Schema      map[string]any
	Example     any
}

// EndpointsByTag returns the endpoints carrying the given tag, in
// document order.
func (d *Document) EndpointsByTag(tag string) []Endpoint {
	var out []Endpoint
	for _, ep := range d.Endpoints {
		for _, t := range ep.Tags {
			if t == tag {
				out = append(out, ep)
				break
			}
		}
	}
	return out
}

// Tags returns every tag present on any endpoint, sorted.
func (d *Document) Tags() []string {
	set := make(map[string]struct{})
	for _, ep := range d.Endpoints {
		for _, t := range ep.Tags {
			set[t] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Paths returns the distinct path templates, sorted.
func (d *Document) Paths() []string {
	set := make(map[string]struct{})
	for _, ep := range d.Endpoints {
		set[ep.Path] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// EndpointByOperationID returns the first endpoint with the given
// operationId, or nil.
func (d *Document) EndpointByOperationID(id string) *Endpoint {
	for i := range d.Endpoints {
		if d.Endpoints[i].OperationID == id {
			return &d.Endpoints[i]
		}
	}
	return nil
}
