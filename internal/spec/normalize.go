package spec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Parse converts an already-decoded OpenAPI/Swagger document into the
// canonical Document. The only fatal condition is a top level that is not
// a string-keyed mapping; everything else degrades to documented defaults
// rather than failing, so sparse or partially malformed documents still
// yield a usable (possibly empty) endpoint list.
func Parse(root any) (*Document, error) {
	m := asMap(root)
	if m == nil {
		return nil, fmt.Errorf("spec: document root is %T, expected a mapping", root)
	}

	doc := &Document{
		Version: versionMarker(m),
		Info:    parseInfo(asMap(m["info"])),
	}

	paths := asMap(m["paths"])
	// A decoded mapping carries no iteration order, so paths are visited
	// in sorted order and methods in the fixed verb order; repeated runs
	// over the same document produce the same endpoint sequence.
	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := asMap(paths[p])
		if item == nil {
			continue
		}
		baseParams := parseParameters(item["parameters"])
		for _, method := range knownMethods {
			op := asMap(item[string(method)])
			if op == nil {
				continue
			}
			doc.Endpoints = append(doc.Endpoints, parseEndpoint(p, method, op, baseParams))
		}
	}

	return doc, nil
}

func versionMarker(m map[string]any) string {
	if v := asString(m["openapi"]); v != "" {
		return v
	}
	if v := asString(m["swagger"]); v != "" {
		return v
	}
	return "2.0"
}

func parseInfo(m map[string]any) Info {
	info := Info{
		Title:       asString(m["title"]),
		Version:     asString(m["version"]),
		Description: asString(m["description"]),
		Contact:     asStringMap(m["contact"]),
		License:     asStringMap(m["license"]),
	}
	if info.Title == "" {
		info.Title = "API"
	}
	if info.Version == "" {
		info.Version = "1.0.0"
	}
	return info
}

func parseEndpoint(path string, method Method, op map[string]any, baseParams []Parameter) Endpoint {
	// Path-item parameters first, then operation parameters, concatenated
	// verbatim. Names are not deduplicated across the two lists.
	params := append(append([]Parameter(nil), baseParams...), parseParameters(op["parameters"])...)

	var rb *RequestBody
	switch method {
	case POST, PUT, PATCH:
		rb = parseRequestBody(op["requestBody"])
	}

	return Endpoint{
		Path:        path,
		Method:      method,
		OperationID: asString(op["operationId"]),
		Summary:     asString(op["summary"]),
		Description: asString(op["description"]),
		Tags:        asStringSlice(op["tags"]),
		Parameters:  params,
		RequestBody: rb,
		Responses:   parseResponses(op["responses"]),
		Security:    parseSecurity(op["security"]),
	}
}

func parseParameters(v any) []Parameter {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Parameter, 0, len(list))
	for _, raw := range list {
		pm := asMap(raw)
		if pm == nil {
			continue
		}
		in := Location(asString(pm["in"]))
		if in == "" {
			in = InQuery
		}
		schema := asMap(pm["schema"])
		p := Parameter{
			Name:        asString(pm["name"]),
			In:          in,
			Required:    asBool(pm["required"]),
			Description: asString(pm["description"]),
			SchemaType:  asString(schema["type"]),
		}
		if p.Example = pm["example"]; p.Example == nil {
			p.Example = schema["example"]
		}
		if p.Default = pm["default"]; p.Default == nil {
			p.Default = schema["default"]
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseRequestBody(v any) *RequestBody {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	jsonContent := asMap(asMap(m["content"])["application/json"])
	return &RequestBody{
		Description: asString(m["description"]),
		Required:    asBool(m["required"]),
		ContentType: "application/json",
		Schema:      asMap(jsonContent["schema"]),
		Example:     jsonContent["example"],
	}
}

func parseResponses(v any) []Response {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Response, 0, len(keys))
	for _, key := range keys {
		// Non-integer keys ("default", "4xx") are dropped here; that is
		// what excludes wildcard responses from the model.
		status, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			continue
		}
		rm := asMap(m[key])
		resp := Response{
			Status:      status,
			Description: asString(rm["description"]),
		}
		if jsonContent, ok := asMap(rm["content"])["application/json"]; ok {
			jc := asMap(jsonContent)
			resp.ContentType = "application/json"
			resp.Schema = asMap(jc["schema"])
			resp.Example = jc["example"]
		}
		out = append(out, resp)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseSecurity(v any) []map[string][]string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string][]string, 0, len(list))
	for _, raw := range list {
		rm := asMap(raw)
		if rm == nil {
			continue
		}
		req := make(map[string][]string, len(rm))
		for name, scopes := range rm {
			req[name] = asStringSlice(scopes)
		}
		out = append(out, req)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case map[any]any:
		// yaml.v3 falls back to interface keys when a mapping carries a
		// non-string key, e.g. an unquoted numeric status code. Scalar
		// keys are stringified so such mappings read the same as their
		// quoted form.
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asStringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func asStringMap(v any) map[string]string {
	m := asMap(v)
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		out[k] = asString(val)
	}
	return out
}
