package lexicon

// Default returns the built-in emotion dictionary. Order matters: the
// first matching emotion wins, so stronger, less ambiguous emotions come
// first. The trainer can swap this for a CSV-sourced table.
func Default() *Lexicon {
	return New([]Entry{
		{Emotion: "분노", Triggers: []string{"화가", "화나", "빡치", "짜증", "열받", "분노", "격분", "억울"}},
		{Emotion: "슬픔", Triggers: []string{"슬퍼", "슬프", "눈물", "우울", "외로", "서럽", "그리워", "상심"}},
		{Emotion: "불안", Triggers: []string{"불안", "걱정", "초조", "긴장", "무서", "두려", "떨려"}},
		{Emotion: "스트레스", Triggers: []string{"스트레스", "피곤", "지쳤", "지친", "힘들", "번아웃", "과로"}},
		{Emotion: "행복", Triggers: []string{"행복", "기뻐", "기쁘", "신나", "즐거", "좋아", "설레"}},
		{Emotion: "심심", Triggers: []string{"심심", "지루", "따분", "무료", "할게 없"}},
		{Emotion: "탐구", Triggers: []string{"궁금", "알고 싶", "배우고 싶", "호기심", "탐구"}},
	})
}
