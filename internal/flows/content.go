package flows

import (
	"context"
	"fmt"
	"strings"
)

type LearnVoiceInput struct {
	Content string `json:"content" validate:"min=200"`
}

type LearnVoiceOutput struct {
	VoiceProfile string `json:"voiceProfile"`
}

// LearnVoice derives a voice profile from writing samples. A blank profile
// is an ErrEmptyResponse so callers never store it over a real one.
func (f *Flows) LearnVoice(ctx context.Context, in LearnVoiceInput) (*LearnVoiceOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(learnVoicePrompt, in)
	if err != nil {
		return nil, err
	}
	out, err := structured[LearnVoiceOutput](ctx, f.gen, "learn-voice", prompt, []Field{
		{Name: "voiceProfile", Description: "A description of the user's voice profile."},
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.VoiceProfile) == "" {
		return nil, fmt.Errorf("learn-voice: %w", ErrEmptyResponse)
	}
	return out, nil
}

type DraftInput struct {
	Topic        string `json:"topic" validate:"min=5"`
	Format       string `json:"format" validate:"required"`
	VoiceProfile string `json:"voiceProfile" validate:"required"`
}

type DraftOutput struct {
	DraftContent string `json:"draftContent"`
}

func (f *Flows) Draft(ctx context.Context, in DraftInput) (*DraftOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(draftPrompt, in)
	if err != nil {
		return nil, err
	}
	return structured[DraftOutput](ctx, f.gen, "draft", prompt, []Field{
		{Name: "draftContent", Description: "The generated content draft."},
	})
}

type RepurposeInput struct {
	SourceContent string `json:"sourceContent" validate:"required"`
	VoiceProfile  string `json:"voiceProfile" validate:"required"`
	TargetFormat  string `json:"targetFormat" validate:"required"`
}

type RepurposeOutput struct {
	RepurposedContent string `json:"repurposedContent"`
}

func (f *Flows) Repurpose(ctx context.Context, in RepurposeInput) (*RepurposeOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(repurposePrompt, in)
	if err != nil {
		return nil, err
	}
	return structured[RepurposeOutput](ctx, f.gen, "repurpose", prompt, []Field{
		{Name: "repurposedContent", Description: "The content rewritten in the new format."},
	})
}

type AnalyzeInput struct {
	DraftContent string `json:"draftContent" validate:"required"`
}

type AnalyzeOutput struct {
	ToneAnalysis          string   `json:"toneAnalysis"`
	ReadabilityLevel      string   `json:"readabilityLevel"`
	ClaritySuggestions    []string `json:"claritySuggestions"`
	EngagementSuggestions []string `json:"engagementSuggestions"`
}

// Analyze reviews a draft for tone, readability, clarity and engagement.
func (f *Flows) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(analyzePrompt, in)
	if err != nil {
		return nil, err
	}
	return structured[AnalyzeOutput](ctx, f.gen, "analyze", prompt, []Field{
		{Name: "toneAnalysis", Description: "A summary of the detected tone and style, e.g. 'formal and academic'."},
		{Name: "readabilityLevel", Description: "The estimated reading grade level, e.g. '8th Grade'."},
		{Name: "claritySuggestions", Description: "Sentences or phrases that could be clearer, with suggested rewrites.", List: true},
		{Name: "engagementSuggestions", Description: "Actionable suggestions to make the content more engaging.", List: true},
	})
}

type IdeasInput struct {
	UserVoiceProfile string `json:"userVoiceProfile" validate:"required"`
	TrendingTopics   string `json:"trendingTopics" validate:"min=3"`
}

type IdeasOutput struct {
	ContentIdeas []string `json:"contentIdeas"`
}

func (f *Flows) GenerateIdeas(ctx context.Context, in IdeasInput) (*IdeasOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(ideasPrompt, in)
	if err != nil {
		return nil, err
	}
	return structured[IdeasOutput](ctx, f.gen, "ideas", prompt, []Field{
		{Name: "contentIdeas", Description: "A list of personalized content ideas.", List: true},
	})
}

type ScheduleInput struct {
	Topic  string `json:"topic" validate:"required"`
	Format string `json:"format" validate:"required"`
}

type ScheduleOutput struct {
	SuggestedDay  string `json:"suggestedDay"`
	SuggestedTime string `json:"suggestedTime"`
	Reasoning     string `json:"reasoning"`
}

// SuggestSchedule proposes a publishing day and time for a draft.
func (f *Flows) SuggestSchedule(ctx context.Context, in ScheduleInput) (*ScheduleOutput, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	prompt, err := render(schedulePrompt, in)
	if err != nil {
		return nil, err
	}
	return structured[ScheduleOutput](ctx, f.gen, "schedule", prompt, []Field{
		{Name: "suggestedDay", Description: "The suggested day of the week, e.g. 'Tuesday'."},
		{Name: "suggestedTime", Description: "The suggested time of day, e.g. '9:00 AM EST'."},
		{Name: "reasoning", Description: "Why this slot works for the content format."},
	})
}
