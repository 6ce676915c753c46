package oracle

import "fmt"

// SystemPrompt frames the model as an OpenAPI repair assistant
const SystemPrompt = "You are a helpful assistant that corrects OpenAPI specifications based on validation errors."

// BuildPrompt composes the user message for a correction request.
// Order matters: diagnostics, ruleset, document, then the output contract.
func BuildPrompt(req Request) string {
	return fmt.Sprintf(`The following validation errors were reported for the API specification:

%s

Acknowledge these errors and fix every one of them.

The specification must satisfy this ruleset:

%s

Here is the current API specification:

%s

Return only the corrected API specification in the same format as the input.
Do not add explanations, commentary, or code fences.
Modify only the parts of the specification that cause the errors above.`,
		req.Diagnostics, req.Ruleset, req.Document)
}
