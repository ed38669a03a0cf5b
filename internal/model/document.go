package model

// Document is the metadata record persisted for every ingested file.
// Name is the object key the bytes were stored under, URL is where they came from.
type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ObjectKey builds the storage key for a document: the generated id keeps keys
// unique, the original name keeps them readable.
func ObjectKey(id, originalName string) string {
	return id + "_" + originalName
}
