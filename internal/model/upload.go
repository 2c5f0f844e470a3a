package model

// MaxUploadSize - предел размера загружаемого файла после декодирования base64
const MaxUploadSize = 10 * 1024 * 1024

// FileMetadata описывает сохраненный файл в ответе /upload
type FileMetadata struct {
	URL         string `json:"url"`
	Filename    string `json:"name"`
	ContentType string `json:"type"`
	Size        int64  `json:"size"`
	Key         string `json:"-"`
}
