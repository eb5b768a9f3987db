package port

import "docqa/internal/domain"

// DocumentSource yields documents with non-empty text. Each call to
// Documents runs the sequence once from the start; consumers must not
// assume they can replay it without calling again.
type DocumentSource interface {
	Documents(fn func(domain.Document) error) error
}
