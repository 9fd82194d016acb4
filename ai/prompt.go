package ai

import (
	"fmt"
	"strings"
)

const metadataPromptTemplate = `Describe the given passage of a document and return the description as JSON.

Output ONLY a single valid JSON object. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }.

Use these keys when they apply: %s.

Rules:
- "title" is a short title for the passage.
- "summary" is one or two sentences.
- "topics", "keywords" and "entities" are arrays of short lowercase strings.
- "language" is an ISO 639-1 code.
- "document_type" is one word such as report, article, manual, letter, code, or notes.
- Omit keys you cannot determine. Do not hallucinate.
- The JSON must parse without errors; no trailing commas and no text outside the object.

Example:
Input: "Quarterly revenue rose 12 percent, driven by strong sales in Europe."
Output:
{"title":"quarterly revenue growth","summary":"Revenue grew 12 percent on European sales.","topics":["finance","sales"],"keywords":["revenue","europe"],"entities":["europe"],"language":"en","document_type":"report"}`

// MetadataPrompt returns the system prompt used to request chunk metadata.
func MetadataPrompt() string {
	return fmt.Sprintf(metadataPromptTemplate, strings.Join(MetadataFields, ", "))
}
