// internal/models/upload.go
package models

// UploadedImage is returned by the image upload endpoints.
type UploadedImage struct {
	ImageURL string `json:"imageUrl"`
	Message  string `json:"message,omitempty"`
}

type UploadedFile struct {
	File struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
		Size     int64  `json:"size"`
	} `json:"file"`
	Message string `json:"message,omitempty"`
}

type SignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}
