package httpapi

import (
	"github.com/KirkDiggler/profile-onboarding/internal/domain/onboarding"
	"github.com/KirkDiggler/profile-onboarding/internal/domain/profile"
)

// DraftView is the JSON form of a draft
type DraftView struct {
	DisplayName    string                     `json:"display_name"`
	Gender         profile.Gender             `json:"gender"`
	Picture        string                     `json:"picture,omitempty"`
	HighlightColor profile.HighlightColor     `json:"highlight_color"`
	Bio            string                     `json:"bio"`
	BioLength      int                        `json:"bio_length"`
	Interests      []string                   `json:"interests"`
	Availability   map[string]map[string]bool `json:"availability"`
}

// SessionView is the JSON form of a session's current state
type SessionView struct {
	ID       string                `json:"id"`
	Step     onboarding.StepType   `json:"step"`
	Title    string                `json:"title"`
	Prompt   string                `json:"prompt,omitempty"`
	Index    int                   `json:"index"`
	Total    int                   `json:"total"`
	Steps    []onboarding.StepType `json:"steps"`
	Progress float64               `json:"progress"`
	Terminal bool                  `json:"terminal"`
	Finished bool                  `json:"finished"`
	Greeting string                `json:"greeting,omitempty"`
	Draft    DraftView             `json:"draft"`
	Summary  *onboarding.Summary   `json:"summary,omitempty"`
}

func newSessionView(session *onboarding.Session) SessionView {
	state := session.Engine.State()
	draft := state.Draft

	interests := draft.Interests().Strings()
	if interests == nil {
		interests = []string{}
	}

	view := SessionView{
		ID:       session.ID,
		Step:     state.Step.Type,
		Title:    state.Step.Title,
		Prompt:   state.Step.Prompt,
		Index:    state.Index,
		Total:    state.Total,
		Steps:    state.Steps,
		Progress: state.Progress,
		Terminal: state.Step.Terminal,
		Finished: state.Finished,
		Greeting: session.Greeting(),
		Draft: DraftView{
			DisplayName:    draft.DisplayName(),
			Gender:         draft.Gender(),
			Picture:        draft.Picture(),
			HighlightColor: draft.HighlightColor(),
			Bio:            draft.Bio(),
			BioLength:      draft.BioLength(),
			Interests:      interests,
			Availability:   draft.Availability().Cells(),
		},
	}
	if state.Step.Terminal {
		summary := onboarding.Summarize(draft)
		view.Summary = &summary
	}
	return view
}
