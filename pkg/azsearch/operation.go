package azsearch

// Field is a single named document field with one or more values.
type Field struct {
	Name   string
	Values []string
}

// Metadata is an ordered list of document fields. Order is preserved in
// the generated payload so output stays deterministic for a given input.
type Metadata []Field

// Get returns the values of the first field named name, or nil.
func (m Metadata) Get(name string) []string {
	for _, f := range m {
		if f.Name == name {
			return f.Values
		}
	}
	return nil
}

// First returns the first value of the field named name, or "".
func (m Metadata) First(name string) string {
	if vs := m.Get(name); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Add appends a field to the metadata.
func (m *Metadata) Add(name string, values ...string) {
	*m = append(*m, Field{Name: name, Values: values})
}

// Operation is a single unit of work in a commit batch. Implementations
// are AddOperation and DeleteOperation; anything else is rejected as
// unsupported.
type Operation interface {
	// Reference returns the source document's unique id. Never empty.
	Reference() string
}

// AddOperation upserts a document into the index. The document key is
// taken from the configured key field in Fields, falling back to Ref.
type AddOperation struct {
	Ref    string
	Fields Metadata
}

func (op AddOperation) Reference() string { return op.Ref }

// DeleteOperation removes the document identified by Ref from the index.
type DeleteOperation struct {
	Ref string
}

func (op DeleteOperation) Reference() string { return op.Ref }

// Batch is a bounded ordered group of operations committed together in
// one indexing request.
type Batch []Operation
