package testgen

// The structured intermediate built per endpoint before any text is
// rendered. Keeping the endpoint-to-procedure decisions here lets an
// alternate target-language renderer reuse them unchanged.

// Suite is one self-contained generated test file.
type Suite struct {
	FileName string
	Imports  []string
	Classes  []Class
}

// Class groups the procedures generated for one endpoint.
type Class struct {
	Name    string
	Doc     string
	BaseURL string
	Cases   []Case
}

// Case is a single test procedure as an ordered list of sections.
type Case struct {
	Name     string
	Doc      string
	Sections []Section
}

// Section is a group of consecutive statements with an optional leading
// comment. Sections render separated by blank lines.
type Section struct {
	Comment string
	Lines   []string
}
