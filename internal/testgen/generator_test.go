package testgen

import (
	"strings"
	"testing"

	"github.com/openclaw/swagger2pytest/internal/spec"
)

func getPostByID() spec.Endpoint {
	return spec.Endpoint{
		Path:   "/posts/{id}",
		Method: spec.GET,
		Parameters: []spec.Parameter{
			{Name: "id", In: spec.InPath, Required: true, SchemaType: "integer"},
		},
		Responses: []spec.Response{
			{Status: 200, ContentType: "application/json"},
			{Status: 404},
		},
	}
}

func createPost() spec.Endpoint {
	return spec.Endpoint{
		Path:   "/posts",
		Method: spec.POST,
		RequestBody: &spec.RequestBody{
			Required:    true,
			ContentType: "application/json",
			Schema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title":  map[string]any{"type": "string"},
					"body":   map[string]any{"type": "string"},
					"userId": map[string]any{"type": "integer"},
					"note":   map[string]any{},
				},
			},
		},
	}
}

func renderEndpoint(t *testing.T, ep spec.Endpoint) string {
	t.Helper()
	g := New("http://localhost:8000")
	suites := g.Files(&spec.Document{Endpoints: []spec.Endpoint{ep}})
	if len(suites) != 1 {
		t.Fatalf("suites: got %d", len(suites))
	}
	return PytestRenderer{}.Render(suites[0])
}

func TestPositiveCase_PathParameterSubstitution(t *testing.T) {
	t.Parallel()

	out := renderEndpoint(t, getPostByID())

	if !strings.Contains(out, "id = 1") {
		t.Errorf("integer path parameter should synthesize the literal 1:\n%s", out)
	}
	if !strings.Contains(out, `url = f"{self.base_url}/posts/{id}"`) {
		t.Errorf("request target should substitute the path placeholder:\n%s", out)
	}
	if !strings.Contains(out, "response = requests.get(url)") {
		t.Errorf("bare GET call shape expected:\n%s", out)
	}
	if !strings.Contains(out, "assert response.status_code in [200]") {
		t.Errorf("declared 200 should form the success set:\n%s", out)
	}
	if !strings.Contains(out, "assert isinstance(json_data, (dict, list))") {
		t.Errorf("declared JSON content should trigger the shape assertion:\n%s", out)
	}
	if !strings.Contains(out, "assert response.elapsed.total_seconds() < 30") {
		t.Errorf("latency bound missing:\n%s", out)
	}
}

func TestNegativeCase_PathSentinel(t *testing.T) {
	t.Parallel()

	out := renderEndpoint(t, getPostByID())

	if !strings.Contains(out, "def test_get_posts_missing_id(self):") {
		t.Fatalf("negative procedure missing:\n%s", out)
	}
	if !strings.Contains(out, `url = f"{self.base_url}/posts/999999"`) {
		t.Errorf("integer path parameter should get the out-of-range sentinel:\n%s", out)
	}
	if !strings.Contains(out, "assert response.status_code in [400, 422, 404]") {
		t.Errorf("error status set missing:\n%s", out)
	}
}

func TestNegativeCase_StringSentinelAndUntouchedPlaceholders(t *testing.T) {
	t.Parallel()

	ep := spec.Endpoint{
		Path:   "/users/{name}/posts/{postId}",
		Method: spec.GET,
		Parameters: []spec.Parameter{
			{Name: "name", In: spec.InPath, Required: true, SchemaType: "string"},
			{Name: "postId", In: spec.InPath, Required: true, SchemaType: "integer"},
		},
	}
	out := renderEndpoint(t, ep)

	// Only the first required parameter is exercised; the other
	// placeholder stays in the target untouched.
	if !strings.Contains(out, `url = f"{self.base_url}/users/invalid/posts/{postId}"`) {
		t.Errorf("string sentinel substitution wrong:\n%s", out)
	}
	if strings.Contains(out, "missing_postId") {
		t.Errorf("second required parameter must not get its own negative case:\n%s", out)
	}
}

func TestNegativeCase_NonPathParameterOmitsEverything(t *testing.T) {
	t.Parallel()

	ep := spec.Endpoint{
		Path:   "/posts",
		Method: spec.GET,
		Parameters: []spec.Parameter{
			{Name: "limit", In: spec.InQuery, Required: true, SchemaType: "integer"},
		},
	}
	out := renderEndpoint(t, ep)

	if !strings.Contains(out, "def test_get_posts_missing_limit(self):") {
		t.Fatalf("negative procedure missing:\n%s", out)
	}
	idx := strings.Index(out, "missing_limit")
	tail := out[idx:]
	if !strings.Contains(tail, "response = requests.get(url)") {
		t.Errorf("negative request should carry no parameters:\n%s", tail)
	}
	if strings.Contains(tail, "params=params") {
		t.Errorf("negative request must not pass query parameters:\n%s", tail)
	}
}

func TestNoNegativeCaseWithoutRequiredParameters(t *testing.T) {
	t.Parallel()

	ep := spec.Endpoint{
		Path:   "/posts",
		Method: spec.GET,
		Parameters: []spec.Parameter{
			{Name: "limit", In: spec.InQuery, SchemaType: "integer"},
		},
	}
	out := renderEndpoint(t, ep)
	if strings.Contains(out, "missing_") {
		t.Errorf("no negative procedure expected without required parameters:\n%s", out)
	}
}

func TestShallowPayloadSynthesis(t *testing.T) {
	t.Parallel()

	out := renderEndpoint(t, createPost())

	for _, want := range []string{
		"payload = {",
		`    "body": "test_body",`,
		// A property without a declared type is synthesized as a string.
		`    "note": "test_note",`,
		`    "title": "test_title",`,
		`    "userId": 1,`,
		"response = requests.post(url, json=payload)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestExplicitBodyExampleWins(t *testing.T) {
	t.Parallel()

	ep := createPost()
	ep.RequestBody.Example = map[string]any{"title": "hello"}
	out := renderEndpoint(t, ep)

	if !strings.Contains(out, `    "title": "hello",`) {
		t.Errorf("explicit example should be used verbatim:\n%s", out)
	}
	if strings.Contains(out, "userId") {
		t.Errorf("schema synthesis must not run when an example exists:\n%s", out)
	}
}

func TestGenericPayloadFallback(t *testing.T) {
	t.Parallel()

	ep := spec.Endpoint{
		Path:        "/posts",
		Method:      spec.POST,
		RequestBody: &spec.RequestBody{ContentType: "application/json"},
	}
	out := renderEndpoint(t, ep)
	if !strings.Contains(out, `    "example": "data",`) {
		t.Errorf("generic fallback payload missing:\n%s", out)
	}
}

func TestSuccessCodeDefaults(t *testing.T) {
	t.Parallel()

	cases := []struct {
		method    spec.Method
		responses []spec.Response
		want      string
	}{
		{spec.GET, nil, "[200]"},
		{spec.POST, nil, "[201, 200]"},
		{spec.DELETE, nil, "[204, 200]"},
		{spec.GET, []spec.Response{{Status: 200}, {Status: 202}}, "[200, 202]"},
		// A lone non-2xx declaration falls back to the verb default
		// instead of being adopted as a success status.
		{spec.GET, []spec.Response{{Status: 404}}, "[200]"},
		{spec.POST, []spec.Response{{Status: 409}}, "[201, 200]"},
	}
	for _, tc := range cases {
		ep := spec.Endpoint{Path: "/x", Method: tc.method, Responses: tc.responses}
		got := pyIntList(successCodes(ep))
		if got != tc.want {
			t.Errorf("successCodes(%s, %v): got %s, want %s", tc.method, tc.responses, got, tc.want)
		}
	}
}

func TestJSONAssertionOnlyFor2xxJSON(t *testing.T) {
	t.Parallel()

	ep := spec.Endpoint{
		Path:   "/posts",
		Method: spec.GET,
		Responses: []spec.Response{
			{Status: 404, ContentType: "application/json"},
		},
	}
	out := renderEndpoint(t, ep)
	if strings.Contains(out, "json_data") {
		t.Errorf("JSON shape assertion requires a 2xx JSON response:\n%s", out)
	}
}

func TestCallShape_AllPartsPresent(t *testing.T) {
	t.Parallel()

	ep := createPost()
	ep.Parameters = []spec.Parameter{
		{Name: "draft", In: spec.InQuery, SchemaType: "boolean"},
		{Name: "X-Trace", In: spec.InHeader, SchemaType: "string"},
	}
	out := renderEndpoint(t, ep)

	if !strings.Contains(out, "response = requests.post(url, params=params, headers=headers, json=payload)") {
		t.Errorf("full call shape wrong:\n%s", out)
	}
	if !strings.Contains(out, `    "draft": draft,`) {
		t.Errorf("query dict should reference the synthesized local:\n%s", out)
	}
	if !strings.Contains(out, `    "X-Trace": "test_X-Trace",`) {
		t.Errorf("header dict should carry the literal value:\n%s", out)
	}
}

func TestFiles_CollidingStemsGetDiscriminated(t *testing.T) {
	t.Parallel()

	doc := &spec.Document{Endpoints: []spec.Endpoint{
		{Path: "/users", Method: spec.GET},
		{Path: "/users/{id}", Method: spec.GET},
	}}
	suites := New("http://localhost:8000").Files(doc)
	if len(suites) != 2 {
		t.Fatalf("suites: got %d", len(suites))
	}
	if suites[0].FileName != "test_get_users.py" || suites[1].FileName != "test_get_users_2.py" {
		t.Fatalf("file names: got %q, %q", suites[0].FileName, suites[1].FileName)
	}
}

func TestFileByTag(t *testing.T) {
	t.Parallel()

	doc := &spec.Document{Endpoints: []spec.Endpoint{
		{Path: "/users", Method: spec.GET, Tags: []string{"users"}},
		{Path: "/users/{id}", Method: spec.GET, Tags: []string{"users"}},
		{Path: "/posts", Method: spec.GET, Tags: []string{"posts"}},
	}}
	g := New("http://localhost:8000")

	suite, ok := g.FileByTag(doc, "users")
	if !ok {
		t.Fatalf("expected a suite for tag users")
	}
	if suite.FileName != "test_users_endpoints.py" {
		t.Errorf("file name: got %q", suite.FileName)
	}
	if len(suite.Classes) != 2 {
		t.Fatalf("classes: got %d", len(suite.Classes))
	}
	// Same static segments, so both class and case names need the
	// discriminator within the shared file.
	if suite.Classes[0].Name != "TestUsersGet" || suite.Classes[1].Name != "TestUsersGet_2" {
		t.Errorf("class names: got %q, %q", suite.Classes[0].Name, suite.Classes[1].Name)
	}
	if suite.Classes[0].Cases[0].Name == suite.Classes[1].Cases[0].Name {
		t.Errorf("case names collide across classes: %q", suite.Classes[0].Cases[0].Name)
	}

	if _, ok := g.FileByTag(doc, "nope"); ok {
		t.Errorf("unknown tag should yield no suite")
	}
}

func TestGenerationIsDeterministic(t *testing.T) {
	t.Parallel()

	doc := &spec.Document{Endpoints: []spec.Endpoint{getPostByID(), createPost()}}
	render := func() string {
		var b strings.Builder
		for _, suite := range New("http://localhost:8000").Files(doc) {
			b.WriteString(suite.FileName)
			b.WriteString(PytestRenderer{}.Render(suite))
		}
		return b.String()
	}
	first := render()
	for i := 0; i < 5; i++ {
		if got := render(); got != first {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}
