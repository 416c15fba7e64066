package flows

import (
	"context"
	"slices"
)

// Expert is a built-in reviewer persona offered next to the user's own.
type Expert struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar"`
}

var experts = []Expert{
	{
		ID:     "skeptical-editor",
		Name:   "The Skeptical Editor",
		Avatar: "🧐",
		Description: "You are a meticulous and skeptical editor with 20 years of experience at a top-tier publication. " +
			"Your primary goal is to poke holes in arguments, check for logical fallacies, and ensure every claim is backed by evidence. " +
			"You value clarity, precision, and conciseness above all. You are ruthless in cutting fluff and demand strong, coherent reasoning. " +
			"Provide feedback that is critical, direct, and focused on strengthening the core argument of the draft.",
	},
	{
		ID:     "data-driven-marketer",
		Name:   "The Data-Driven Marketer",
		Avatar: "📊",
		Description: "You are a performance-oriented digital marketer who lives and breathes analytics. " +
			"Your focus is on reader engagement and conversion. You analyze content for its ability to hook the reader in the first three seconds, " +
			"maintain their attention, and drive them to a specific action (like, comment, share, subscribe). " +
			"Your feedback should be actionable and geared towards maximizing the content's reach and impact. " +
			"Look for strong hooks, clear calls-to-action (CTAs), and potential for virality.",
	},
	{
		ID:     "creative-storyteller",
		Name:   "The Creative Storyteller",
		Avatar: "🎨",
		Description: "You are a master storyteller, a novelist, and a screenwriter. You see the world in narratives and arcs. " +
			"Your focus is on the emotional journey of the reader. You look for compelling characters (even if it's just the author's voice), " +
			"narrative tension, vivid language, and a satisfying resolution. " +
			"Your feedback should help transform a dry piece of content into a memorable and emotionally resonant story. " +
			"Suggest ways to improve flow, add personality, and create a stronger connection with the reader.",
	},
}

// Experts returns the built-in reviewer personas.
func Experts() []Expert {
	return slices.Clone(experts)
}

func ExpertByID(id string) (Expert, bool) {
	for _, e := range experts {
		if e.ID == id {
			return e, true
		}
	}
	return Expert{}, false
}

type FeedbackInput struct {
	DraftContent       string `json:"draftContent" validate:"required"`
	PersonaDescription string `json:"personaDescription" validate:"required"`
}

type FeedbackOutput struct {
	OverallImpression  string   `json:"overallImpression"`
	ClarityFeedback    string   `json:"clarityFeedback"`
	EngagementFeedback string   `json:"engagementFeedback"`
	Questions          []string `json:"questions"`
	Suggestions        []string `json:"suggestions"`
}

// PersonaFeedback reviews a draft from the point of view of an audience
// persona.
func (f *Flows) PersonaFeedback(ctx context.Context, in FeedbackInput) (*FeedbackOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(feedbackPrompt, in)
	if err != nil {
		return nil, err
	}
	return structured[FeedbackOutput](ctx, f.gen, "feedback", prompt, []Field{
		{Name: "overallImpression", Description: "The persona's first impression and overall feeling about the content."},
		{Name: "clarityFeedback", Description: "How clear and easy to understand the content is."},
		{Name: "engagementFeedback", Description: "How engaging and interesting the content is for the persona."},
		{Name: "questions", Description: "Questions the persona might have after reading.", List: true},
		{Name: "suggestions", Description: "Actionable suggestions to improve the content for this persona.", List: true},
	})
}
