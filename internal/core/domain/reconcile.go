package domain

// DefaultExpectedDimension is the embedding dimensionality the vector index
// must be configured with.
const DefaultExpectedDimension = 1024

// DefaultSampleQuery is the broad query used to sample vector ids when the
// vector service cannot list them.
const DefaultSampleQuery = "get all vector ids"

// DefaultSampleTopK bounds the sampled id set.
const DefaultSampleTopK = 100

// RequiredFields are the (table, field) pairs that must never be null or empty.
var RequiredFields = []FieldCheck{
	{Table: "professionals", Field: "name"},
	{Table: "professionals", Field: "email"},
	{Table: "experiences", Field: "company"},
	{Table: "experiences", Field: "position"},
	{Table: "skills", Field: "skill_name"},
	{Table: "content_chunks", Field: "content"},
	{Table: "content_chunks", Field: "chunk_type"},
}

// ReconcileOptions configures a reconciliation audit.
type ReconcileOptions struct {
	// Document, when set, enables row-count checks against the source.
	Document *ProfileDocument

	// ExpectedDimension overrides DefaultExpectedDimension when positive.
	ExpectedDimension int

	// SampleQuery and SampleTopK override the id sampling defaults.
	SampleQuery string
	SampleTopK  int
}
