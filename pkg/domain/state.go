package domain

// Session is a point-in-time view of the dialogue driver.
// Exactly one session is live at a time.
type Session struct {
	Running          bool   `json:"running"`
	RunID            string `json:"run_id,omitempty"`
	Chain            string `json:"chain,omitempty"`
	Cursor           int    `json:"cursor"`
	CurrentSpeaker   string `json:"current_speaker,omitempty"`
	Revealing        bool   `json:"revealing"`
	AwaitingContinue bool   `json:"awaiting_continue"`
	AwaitingChoice   bool   `json:"awaiting_choice"`
	Choices          int    `json:"choices,omitempty"`
}
