package model

import "time"

// Step identifies where a merchant currently is in the guided conversation.
type Step string

const (
	StepIdle                 Step = "idle"
	StepAwaitingLanguage     Step = "awaiting_language"
	StepAwaitingBusinessName Step = "awaiting_business_name"
	StepAwaitingPhone        Step = "awaiting_business_phone"
	StepAwaitingAmount       Step = "awaiting_payment_amount"
	StepAwaitingDescription  Step = "awaiting_payment_description"
)

// Session holds one merchant's progress through any multi-step flow.
// Data carries values collected across steps (e.g. the business name while
// we wait for the phone) and is cleared whenever a flow completes or aborts.
type Session struct {
	ChatID       int64             `json:"chat_id"`
	Step         Step              `json:"step"`
	Data         map[string]string `json:"data"`
	Lang         string            `json:"lang"`
	LastActiveAt time.Time         `json:"last_active_at"`
}

func NewSession(chatID int64) *Session {
	return &Session{
		ChatID:       chatID,
		Step:         StepAwaitingLanguage,
		Data:         map[string]string{},
		LastActiveAt: time.Now(),
	}
}

// Reset returns the session to the main menu and drops any buffered input.
func (s *Session) Reset() {
	s.Step = StepIdle
	s.Data = map[string]string{}
}

func (s *Session) Touch() { s.LastActiveAt = time.Now() }
