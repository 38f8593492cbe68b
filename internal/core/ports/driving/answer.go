package driving

import "context"

// AnswerService turns a question into a grounded answer: retrieve
// context chunks, build a prompt, call the completion service.
type AnswerService interface {
	// Ask answers the question from the k most relevant chunks.
	// With ignoreContext set, the model is asked to answer generally
	// instead of from the retrieved context.
	Ask(ctx context.Context, question string, k int, ignoreContext bool) (string, error)
}
