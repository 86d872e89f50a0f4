package domain

// Image is an uploaded file held in memory until it is sent to the image host.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}
