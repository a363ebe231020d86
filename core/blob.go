package core

// BlobStore is any service that can persist uploaded document content.
// The returned handle is opaque: the engine stores it, never inspects it.
type BlobStore interface {
	Store(content []byte, origFilename string, groupID int, docType string, version int) (string, error)
}
