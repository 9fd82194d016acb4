package ai

// MetadataFields lists the attributes metadata extractors ask a model for.
// Models may omit any of them; extra keys are kept as returned.
var MetadataFields = []string{
	"title",
	"summary",
	"topics",
	"keywords",
	"entities",
	"language",
	"document_type",
}
