package driven

// Prompt names used with PromptStore.
const (
	// PromptAnswer is the grounded-answer template. It takes the
	// retrieved context block and the user's question, in that order.
	PromptAnswer = "answer"
)

// PromptStore loads prompt templates, allowing users to customise the
// wording sent to the completion service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)
}
