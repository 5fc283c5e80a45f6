package interview

import "strings"

// Action is the engine's instruction to the chat client for this turn.
type Action string

const (
	// ActionAsk delivers an acknowledgment plus the next question.
	ActionAsk Action = "ask"
	// ActionClarify repeats the previous question with a hint.
	ActionClarify Action = "clarify"
	// ActionStop ends the interview with a closing message.
	ActionStop Action = "stop"
)

// Memory is the client-held engine state echoed back on every turn. Asked is
// the client's own record of question texts it has shown; the engine carries
// it untouched.
type Memory struct {
	Asked []string `json:"asked,omitempty"`
	Facts Facts    `json:"facts"`
}

// TurnRequest is one turn of the interview. LastTopic identifies the topic of
// the previously asked question; when absent the engine falls back to
// matching LastQuestionAsked against the question templates.
type TurnRequest struct {
	Messages          []Message `json:"messages"`
	LastQuestionAsked string    `json:"lastQuestionAsked"`
	LastTopic         Topic     `json:"lastTopic,omitempty"`
	Memory            Memory    `json:"memory"`
}

// TurnResponse tells the client what to render and carries the updated facts.
// NextTopic names the topic NextQuestion belongs to so the client can echo it
// back instead of relying on question-text matching.
type TurnResponse struct {
	Action       Action `json:"action"`
	Ack          string `json:"ack"`
	Explain      string `json:"explain"`
	NextQuestion string `json:"nextQuestion"`
	NextTopic    Topic  `json:"nextTopic,omitempty"`
	Facts        Facts  `json:"facts"`
}

// Turn advances the interview by one step. It is pure: the request is not
// mutated and all state lives in the returned facts.
//
// The sequence per turn: resolve which topic the user just answered, bail to
// a clarification if the answer reads as confusion or fails to parse,
// otherwise merge the fact, find the next unfilled topic and ask it. When
// nothing is left the closing message goes out with action stop.
func Turn(req TurnRequest) TurnResponse {
	facts := req.Memory.Facts.Clone()

	if len(req.Messages) == 0 {
		return TurnResponse{Action: ActionAsk, Facts: facts}
	}

	userText := lastUserMessage(req.Messages)
	lastTopic := resolveLastTopic(req, &facts)

	if lastTopic != "" && LooksConfused(userText) {
		return TurnResponse{
			Action:       ActionClarify,
			Explain:      ClarifyExplain(lastTopic),
			NextQuestion: QuestionFor(lastTopic, &facts),
			NextTopic:    lastTopic,
			Facts:        facts,
		}
	}

	if lastTopic != "" {
		if !ParseAnswer(lastTopic, userText, &facts) {
			return TurnResponse{
				Action:       ActionClarify,
				Explain:      ClarifyExplain(lastTopic),
				NextQuestion: QuestionFor(lastTopic, &facts),
				NextTopic:    lastTopic,
				Facts:        facts,
			}
		}
		if lastTopic == TopicJobTitle || lastTopic == TopicEmployerName {
			AddJobSignals(&facts)
		}
	}

	nextTopic := NextMissingTopic(&facts)
	if nextTopic == "" {
		return TurnResponse{
			Action:       ActionStop,
			Ack:          "Got it.",
			NextQuestion: ClosingMessage,
			Facts:        facts,
		}
	}

	RefreshWarnings(&facts)

	// The mechanical failure scenario goes out as two messages: the lead-in
	// sentence takes the ack slot, the question follows.
	ack := AckFor(nextTopic)
	if nextTopic == TopicMechanicalFailurePlan {
		ack = ScenarioLeadIn
	}

	return TurnResponse{
		Action:       ActionAsk,
		Ack:          ack,
		NextQuestion: QuestionFor(nextTopic, &facts),
		NextTopic:    nextTopic,
		Facts:        facts,
	}
}

// resolveLastTopic prefers the explicit topic tag and falls back to matching
// the question text against every topic in flow order, first match winning.
func resolveLastTopic(req TurnRequest, facts *Facts) Topic {
	if req.LastTopic != "" && IsTopic(req.LastTopic) {
		return req.LastTopic
	}
	lastQ := strings.TrimSpace(req.LastQuestionAsked)
	if lastQ == "" {
		return ""
	}
	for _, t := range flow {
		if QuestionFor(t, facts) == lastQ {
			return t
		}
	}
	return ""
}

// lastUserMessage returns the content of the most recent user-role message.
func lastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
