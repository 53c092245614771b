package views

import "talk-explorer/models"

// Row is one rendered entry of the video list.
type Row struct {
	Key   int64
	Label string

	activate func()
}

// Activate emits the row's video to the list's selection callback.
func (r Row) Activate() {
	if r.activate != nil {
		r.activate()
	}
}

// ListView renders one row per video, in catalog order, keyed by id.
// It keeps no state: selection is entirely up to onSelect.
func ListView(catalog []models.Video, onSelect func(models.Video)) []Row {
	rows := make([]Row, 0, len(catalog))
	for _, v := range catalog {
		video := v
		row := Row{Key: video.ID, Label: video.Label()}
		if onSelect != nil {
			row.activate = func() { onSelect(video) }
		}
		rows = append(rows, row)
	}
	return rows
}

// FindRow returns the row keyed by id.
func FindRow(rows []Row, id int64) (Row, bool) {
	for _, r := range rows {
		if r.Key == id {
			return r, true
		}
	}
	return Row{}, false
}
