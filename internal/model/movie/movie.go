package movie

// Movie is one recommendable catalog entry as exposed to the frontend.
type Movie struct {
	Title    string  `json:"title"`
	Rating   float64 `json:"rating"`
	Overview string  `json:"overview"`
	Poster   string  `json:"poster"`
}

// Recommendation is the payload produced after emotion classification.
// Movies may legitimately be empty when the catalog has nothing for the
// mapped genre; that is distinct from a classification failure.
type Recommendation struct {
	Emotion    string  `json:"emotion"`
	SubEmotion string  `json:"sub_emotion"`
	Movies     []Movie `json:"movies"`
}

// Titles lists the recommended titles in slate order.
func (r Recommendation) Titles() []string {
	titles := make([]string, 0, len(r.Movies))
	for _, m := range r.Movies {
		titles = append(titles, m.Title)
	}
	return titles
}
