package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	chatmodel "github.com/moodflick/backend/internal/model/chat"
	"github.com/moodflick/backend/internal/model/movie"
)

type fakeGenerator struct {
	summarized bool
	failAll    bool
}

func (f *fakeGenerator) EmpatheticReply(_ context.Context, _ []chatmodel.Message, _ string) (string, error) {
	if f.failAll {
		return "", errors.New("llm down")
	}
	return "그랬구나, 힘들었겠다. 요즘 잠은 잘 자?", nil
}

func (f *fakeGenerator) FollowUpReply(_ context.Context, _ []chatmodel.Message, _ string) (string, error) {
	if f.failAll {
		return "", errors.New("llm down")
	}
	return "그 영화는 분위기가 따뜻해서 추천했어.", nil
}

func (f *fakeGenerator) SummarizeEmotion(_ context.Context, _ []chatmodel.Message) (string, error) {
	if f.failAll {
		return "", errors.New("llm down")
	}
	f.summarized = true
	return "사용자는 깊은 슬픔을 느끼고 있다", nil
}

type fakeResolver struct{}

func (fakeResolver) ResolveSummary(summary string) string {
	if summary == "" {
		return "알 수 없음"
	}
	return "슬픔"
}

func (fakeResolver) ResolveSub(_, _ string) string { return "세부감정 없음" }

type fakeRecommender struct {
	movies []movie.Movie
	err    error
}

func (f *fakeRecommender) Build(_ context.Context, _ string) ([]movie.Movie, error) {
	return f.movies, f.err
}

type fakeRatings struct {
	byTitle map[string]float64
	queried []string
}

func (f *fakeRatings) SearchRating(_ context.Context, title string) (movie.Movie, bool, error) {
	f.queried = append(f.queried, title)
	rating, ok := f.byTitle[title]
	if !ok {
		return movie.Movie{}, false, nil
	}
	return movie.Movie{Title: title, Rating: rating}, true, nil
}

type fakeEvents struct {
	emotions [][]string
}

func (f *fakeEvents) Record(_ context.Context, emotion string, titles []string) error {
	f.emotions = append(f.emotions, append([]string{emotion}, titles...))
	return nil
}

func slate() []movie.Movie {
	return []movie.Movie{
		{Title: "Inception", Rating: 8.4, Poster: "p1"},
		{Title: "Up", Rating: 8.0, Poster: "p2"},
	}
}

func newTestController(gen Generator, rec Recommender, ratings RatingLookup, events EventRecorder) (*Controller, *Store) {
	store := NewStore(time.Minute)
	return NewController(store, gen, fakeResolver{}, rec, ratings, events), store
}

func TestTurnOneAndTwoAreNonFinal(t *testing.T) {
	ctrl, store := newTestController(&fakeGenerator{}, &fakeRecommender{}, &fakeRatings{}, nil)
	defer store.Close()

	sessionID := ""
	for turn := 1; turn <= 2; turn++ {
		res := ctrl.HandleTurn(context.Background(), sessionID, "요즘 너무 우울해", TurnSignal{Mode: ModeNormal, Index: turn})
		if res.Phase != PhaseConversing {
			t.Fatalf("turn %d: phase = %v, want conversing", turn, res.Phase)
		}
		if res.Reply == "" {
			t.Fatalf("turn %d: empty reply", turn)
		}
		if res.Movies != nil {
			t.Fatalf("turn %d: movies present before the final turn", turn)
		}
		sessionID = res.SessionID
	}
}

func TestTurnThreeSummarizesAndRecommends(t *testing.T) {
	gen := &fakeGenerator{}
	events := &fakeEvents{}
	ctrl, store := newTestController(gen, &fakeRecommender{movies: slate()}, &fakeRatings{}, events)
	defer store.Close()

	res := ctrl.HandleTurn(context.Background(), "", "계속 눈물이 나", TurnSignal{Mode: ModeNormal, Index: 3})

	if res.Phase != PhaseFinal {
		t.Fatalf("phase = %v, want final", res.Phase)
	}
	if !gen.summarized {
		t.Fatal("final turn must request a summary")
	}
	if res.Emotion != "슬픔" || res.SubEmotion != "세부감정 없음" {
		t.Fatalf("emotion = %s / %s", res.Emotion, res.SubEmotion)
	}
	if res.Summary == "" {
		t.Fatal("final turn must carry the summary")
	}
	if len(res.Movies) != 2 {
		t.Fatalf("got %d movies, want 2", len(res.Movies))
	}
	if len(events.emotions) != 1 {
		t.Fatalf("recommendation event not recorded: %v", events.emotions)
	}

	// The slate must be remembered for follow-up referent resolution.
	sess := store.GetOrCreate(res.SessionID)
	if len(sess.LastRecommended) != 2 || sess.LastRecommended[0] != "Inception" {
		t.Fatalf("LastRecommended = %v", sess.LastRecommended)
	}
}

func TestAfterRecommendRatingInquiry(t *testing.T) {
	ratings := &fakeRatings{byTitle: map[string]float64{"Inception": 8.4}}
	ctrl, store := newTestController(&fakeGenerator{}, &fakeRecommender{movies: slate()}, ratings, nil)
	defer store.Close()

	final := ctrl.HandleTurn(context.Background(), "", "오늘 너무 답답했어", TurnSignal{Mode: ModeNormal, Index: 3})

	res := ctrl.HandleTurn(context.Background(), final.SessionID,
		"그 in ception 영화 평점 몇점이야?", TurnSignal{Mode: ModeAfterRecommend})

	if res.Phase != PhaseFollowUp {
		t.Fatalf("phase = %v, want follow-up", res.Phase)
	}
	if len(ratings.queried) != 1 || ratings.queried[0] != "Inception" {
		t.Fatalf("rating queried for %v, want Inception", ratings.queried)
	}
	if want := "8.4"; !strings.Contains(res.Reply, want) {
		t.Fatalf("reply %q missing rating %s", res.Reply, want)
	}
}

func TestAfterRecommendRatingNotFound(t *testing.T) {
	ratings := &fakeRatings{}
	ctrl, store := newTestController(&fakeGenerator{}, &fakeRecommender{movies: slate()}, ratings, nil)
	defer store.Close()

	final := ctrl.HandleTurn(context.Background(), "", "지루한 하루였어", TurnSignal{Mode: ModeNormal, Index: 3})
	res := ctrl.HandleTurn(context.Background(), final.SessionID, "평점 알려줘", TurnSignal{Mode: ModeAfterRecommend})

	if !strings.Contains(res.Reply, "찾지 못했어요") {
		t.Fatalf("reply %q missing not-found sentence", res.Reply)
	}
	// No title mentioned: default to the first recommended movie.
	if len(ratings.queried) != 1 || ratings.queried[0] != "Inception" {
		t.Fatalf("rating queried for %v, want default Inception", ratings.queried)
	}
}

func TestGenerationFailureDegradesToApology(t *testing.T) {
	ctrl, store := newTestController(&fakeGenerator{failAll: true}, &fakeRecommender{movies: slate()}, &fakeRatings{}, nil)
	defer store.Close()

	res := ctrl.HandleTurn(context.Background(), "", "안녕", TurnSignal{Mode: ModeNormal, Index: 1})
	if res.Reply != apologyReply {
		t.Fatalf("reply = %q, want apology", res.Reply)
	}

	// A failed summary still resolves, to the unknown sentinel.
	final := ctrl.HandleTurn(context.Background(), res.SessionID, "그래", TurnSignal{Mode: ModeNormal, Index: 3})
	if final.Phase != PhaseFinal {
		t.Fatalf("phase = %v, want final", final.Phase)
	}
	if final.Emotion != "알 수 없음" {
		t.Fatalf("emotion = %s, want unknown sentinel", final.Emotion)
	}
}

func TestRecommendationFailureYieldsEmptySlate(t *testing.T) {
	rec := &fakeRecommender{err: errors.New("catalog down")}
	ctrl, store := newTestController(&fakeGenerator{}, rec, &fakeRatings{}, nil)
	defer store.Close()

	res := ctrl.HandleTurn(context.Background(), "", "답답해", TurnSignal{Mode: ModeNormal, Index: 3})
	if res.Phase != PhaseFinal {
		t.Fatalf("phase = %v, want final", res.Phase)
	}
	if res.Movies == nil || len(res.Movies) != 0 {
		t.Fatalf("movies = %v, want empty non-nil slate", res.Movies)
	}
}

func TestResolveTitleNormalizedSubstring(t *testing.T) {
	recommended := []string{"Inception", "Up"}

	if got := ResolveTitle("that inception movie, what's its rating?", recommended); got != "Inception" {
		t.Fatalf("got %q, want Inception", got)
	}
	if got := ResolveTitle("IN CEPTION 평점?", recommended); got != "Inception" {
		t.Fatalf("space-normalized match failed: got %q", got)
	}
	if got := ResolveTitle("아무 제목도 없는 질문", recommended); got != "Inception" {
		t.Fatalf("default should be the first title, got %q", got)
	}
	if got := ResolveTitle("anything", nil); got != "" {
		t.Fatalf("no recommendations should resolve to empty, got %q", got)
	}
}

func TestParseTurn(t *testing.T) {
	cases := []struct {
		raw  string
		want TurnSignal
	}{
		{`2`, TurnSignal{Mode: ModeNormal, Index: 2}},
		{`"after_recommend"`, TurnSignal{Mode: ModeAfterRecommend}},
		{`"3"`, TurnSignal{Mode: ModeNormal, Index: 3}},
		{`"whatever"`, TurnSignal{Mode: ModeNormal, Index: 1}},
		{`null`, TurnSignal{Mode: ModeNormal, Index: 1}},
		{``, TurnSignal{Mode: ModeNormal, Index: 1}},
	}
	for _, tc := range cases {
		got := ParseTurn(json.RawMessage(tc.raw))
		if got != tc.want {
			t.Fatalf("ParseTurn(%q) = %+v, want %+v", tc.raw, got, tc.want)
		}
	}
}
