package frontdoor

// UploadRequest is the UploadDocument request.
type UploadRequest struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// UploadResponse is the UploadDocument response.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Message    string `json:"message"`
}

// GetRequest is the GetDocument request.
type GetRequest struct {
	DocumentID string `json:"document_id"`
}

// GetResponse is the GetDocument response.
type GetResponse struct {
	Filename string `json:"filename"`
	Content  []byte `json:"content"`
}

// DownloadRequest is the DownloadDocument request.
type DownloadRequest struct {
	DocumentID string `json:"document_id"`
}

// DocumentChunk is one frame of a DownloadDocument stream.
type DocumentChunk struct {
	FileData []byte `json:"file_data"`
}
