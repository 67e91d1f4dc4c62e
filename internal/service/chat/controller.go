package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	chatmodel "github.com/moodflick/backend/internal/model/chat"
	"github.com/moodflick/backend/internal/model/movie"
)

// summaryWindow bounds how much history feeds the emotional summary.
const summaryWindow = 6

// ratingKeywords mark a follow-up message as a rating inquiry.
var ratingKeywords = []string{"평점", "점수", "몇점", "점"}

// apologyReply is the degraded reply when generation fails mid-turn.
const apologyReply = "죄송해요, 지금은 답변을 만들기 어려워요. 잠시 후 다시 말을 걸어 주세요."

// Generator is the language-generation capability the controller drives.
type Generator interface {
	EmpatheticReply(ctx context.Context, history []chatmodel.Message, userMessage string) (string, error)
	FollowUpReply(ctx context.Context, history []chatmodel.Message, userMessage string) (string, error)
	SummarizeEmotion(ctx context.Context, window []chatmodel.Message) (string, error)
}

// Resolver maps text to emotion labels, degrading to sentinels.
type Resolver interface {
	ResolveSummary(summary string) string
	ResolveSub(mainEmotion, text string) string
}

// Recommender assembles a movie slate for a main emotion.
type Recommender interface {
	Build(ctx context.Context, emotion string) ([]movie.Movie, error)
}

// RatingLookup resolves a title to its catalog rating.
type RatingLookup interface {
	SearchRating(ctx context.Context, title string) (movie.Movie, bool, error)
}

// EventRecorder persists recommendation events for the stats endpoints.
type EventRecorder interface {
	Record(ctx context.Context, emotion string, titles []string) error
}

// Phase tells the handler which response shape to emit.
type Phase int

const (
	// PhaseConversing is an empathetic, non-final reply.
	PhaseConversing Phase = iota
	// PhaseFollowUp is a post-recommendation reply.
	PhaseFollowUp
	// PhaseFinal carries the summary, emotions and the movie slate.
	PhaseFinal
)

// TurnResult is the controller's answer for one inbound message.
type TurnResult struct {
	Phase      Phase
	SessionID  string
	Reply      string
	Summary    string
	Emotion    string
	SubEmotion string
	Movies     []movie.Movie
}

// Controller is the dialogue state machine: it decides per message
// whether to converse, follow up, or summarize-classify-recommend.
type Controller struct {
	store       *Store
	gen         Generator
	resolver    Resolver
	recommender Recommender
	ratings     RatingLookup
	events      EventRecorder
}

// NewController wires the turn controller. events may be nil when no
// relational store is configured.
func NewController(store *Store, gen Generator, resolver Resolver, recommender Recommender, ratings RatingLookup, events EventRecorder) *Controller {
	return &Controller{
		store:       store,
		gen:         gen,
		resolver:    resolver,
		recommender: recommender,
		ratings:     ratings,
		events:      events,
	}
}

// HandleTurn runs one dialogue turn. It never returns an error for
// degraded external capabilities; those surface as apologetic or
// sentinel-bearing results.
func (c *Controller) HandleTurn(ctx context.Context, sessionID, message string, turn TurnSignal) TurnResult {
	sess := c.store.GetOrCreate(sessionID)
	sess.Lock()
	defer sess.Unlock()

	prior := append([]chatmodel.Message(nil), sess.History...)
	sess.Append(chatmodel.RoleUser, message)
	sess.TurnIndex++

	switch {
	case turn.Mode == ModeAfterRecommend:
		return c.followUpTurn(ctx, sess, prior, message)
	case turn.Index < summarizeAfterTurns:
		return c.conversingTurn(ctx, sess, prior, message)
	default:
		return c.finalTurn(ctx, sess)
	}
}

func (c *Controller) conversingTurn(ctx context.Context, sess *chatmodel.Session, prior []chatmodel.Message, message string) TurnResult {
	reply, err := c.gen.EmpatheticReply(ctx, prior, message)
	if err != nil {
		log.Printf("[chat] empathetic reply failed for session=%s: %v", sess.ID, err)
		reply = apologyReply
	}
	sess.Append(chatmodel.RoleAssistant, reply)
	return TurnResult{Phase: PhaseConversing, SessionID: sess.ID, Reply: reply}
}

func (c *Controller) followUpTurn(ctx context.Context, sess *chatmodel.Session, prior []chatmodel.Message, message string) TurnResult {
	reply, err := c.gen.FollowUpReply(ctx, prior, message)
	if err != nil {
		log.Printf("[chat] follow-up reply failed for session=%s: %v", sess.ID, err)
		reply = apologyReply
	}

	if isRatingInquiry(message) && len(sess.LastRecommended) > 0 {
		reply += c.ratingSentence(ctx, sess, message)
	}

	sess.Append(chatmodel.RoleAssistant, reply)
	return TurnResult{Phase: PhaseFollowUp, SessionID: sess.ID, Reply: reply}
}

func (c *Controller) finalTurn(ctx context.Context, sess *chatmodel.Session) TurnResult {
	summary, err := c.gen.SummarizeEmotion(ctx, sess.Window(summaryWindow))
	if err != nil {
		log.Printf("[chat] summary failed for session=%s: %v", sess.ID, err)
		summary = ""
	}

	mainEmotion := c.resolver.ResolveSummary(summary)
	subEmotion := c.resolver.ResolveSub(mainEmotion, summary)

	movies, err := c.recommender.Build(ctx, mainEmotion)
	if err != nil {
		log.Printf("[chat] recommendation failed for session=%s: %v", sess.ID, err)
		movies = []movie.Movie{}
	}

	titles := make([]string, 0, len(movies))
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	sess.LastRecommended = titles

	reply := recommendationSentence(titles)
	sess.Append(chatmodel.RoleAssistant, reply)

	if c.events != nil && len(titles) > 0 {
		if err := c.events.Record(ctx, mainEmotion, titles); err != nil {
			log.Printf("[chat] failed to record recommendation event: %v", err)
		}
	}

	return TurnResult{
		Phase:      PhaseFinal,
		SessionID:  sess.ID,
		Reply:      reply,
		Summary:    summary,
		Emotion:    mainEmotion,
		SubEmotion: subEmotion,
		Movies:     movies,
	}
}

// ratingSentence resolves which recommended title the user refers to and
// appends its catalog rating, or a not-found sentence.
func (c *Controller) ratingSentence(ctx context.Context, sess *chatmodel.Session, message string) string {
	title := ResolveTitle(message, sess.LastRecommended)
	if c.ratings == nil {
		return ratingNotFoundSentence
	}
	m, found, err := c.ratings.SearchRating(ctx, title)
	if err != nil {
		log.Printf("[chat] rating lookup failed for %q: %v", title, err)
		return ratingNotFoundSentence
	}
	if !found {
		return ratingNotFoundSentence
	}
	return fmt.Sprintf("\n\n'%s'의 평점은 %.1f점이에요.", m.Title, m.Rating)
}

const ratingNotFoundSentence = "\n\n해당 영화의 평점 정보를 찾지 못했어요."

func recommendationSentence(titles []string) string {
	if len(titles) == 0 {
		return "지금은 추천할 영화를 찾지 못했어요. 다른 기분일 때 다시 이야기해 볼까요?"
	}
	return fmt.Sprintf("이런 영화들을 추천해요: %s. 더 궁금한 작품이 있으면 물어봐 주세요!", strings.Join(titles, ", "))
}

func isRatingInquiry(message string) bool {
	for _, kw := range ratingKeywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	return false
}

// ResolveTitle finds which recommended title the message refers to by
// case- and space-normalized substring match, defaulting to the first
// recommended title.
func ResolveTitle(message string, recommended []string) string {
	if len(recommended) == 0 {
		return ""
	}
	normalizedMsg := normalizeTitle(message)
	for _, title := range recommended {
		if t := normalizeTitle(title); t != "" && strings.Contains(normalizedMsg, t) {
			return title
		}
	}
	return recommended[0]
}

func normalizeTitle(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}
