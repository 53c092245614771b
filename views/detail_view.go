package views

import "talk-explorer/models"

// Detail is the rendered description of the selected video.
type Detail struct {
	Title    string
	Speaker  string
	MediaURL string
}

// DetailView renders a single video. Callers decide whether to render it at all.
func DetailView(v models.Video) Detail {
	return Detail{
		Title:    v.Title,
		Speaker:  v.Speaker,
		MediaURL: v.URL,
	}
}
