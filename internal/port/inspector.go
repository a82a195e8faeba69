package port

// DocumentInspector performs deep structural validation of an input
// document, beyond the cheap header checks the service does itself.
type DocumentInspector interface {
	// PageCount parses the document and returns its page count. An error
	// means the bytes are not a well-formed document.
	PageCount(data []byte) (int, error)
}
