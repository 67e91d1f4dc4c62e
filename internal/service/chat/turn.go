package chat

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Turn modes recognized by the controller.
const (
	ModeNormal         = "normal"
	ModeAfterRecommend = "after_recommend"
)

// summarizeAfterTurns is the turn count at which the controller stops
// conversing and moves to summarization and recommendation.
const summarizeAfterTurns = 3

// TurnSignal is the decoded turn indicator from the request.
type TurnSignal struct {
	Mode  string
	Index int
}

// ParseTurn decodes the wire-level turn field, which may be an integer
// turn count, the literal "after_recommend", or any other string that is
// coerced to an integer, defaulting to 1 when coercion fails.
func ParseTurn(raw json.RawMessage) TurnSignal {
	if len(raw) == 0 {
		return TurnSignal{Mode: ModeNormal, Index: 1}
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		return TurnSignal{Mode: ModeNormal, Index: asInt}
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == ModeAfterRecommend {
			return TurnSignal{Mode: ModeAfterRecommend}
		}
		if n, err := strconv.Atoi(asString); err == nil {
			return TurnSignal{Mode: ModeNormal, Index: n}
		}
	}

	return TurnSignal{Mode: ModeNormal, Index: 1}
}
