package flows

import "text/template"

var (
	learnVoicePrompt = template.Must(template.New("learn-voice").Parse(
		`You are a voice and style learning engine. Analyze the following content and extract the unique characteristics of the author's voice, tone and style.

Content: {{.Content}}

Create a voice profile that summarizes these characteristics. Describe the author's writing style, tone, vocabulary, sentence structure and anything else that makes the voice unique.
`))

	draftPrompt = template.Must(template.New("draft").Parse(
		`You generate content drafts in a specific user's voice and style.
The user's voice profile is:
{{.VoiceProfile}}

Write a draft on the following topic, formatted as a {{.Format}}:
{{.Topic}}
`))

	repurposePrompt = template.Must(template.New("repurpose").Parse(
		`You are an expert content strategist. Repurpose the source content below into a new format while strictly following the user's voice profile.

User's voice profile:
{{.VoiceProfile}}

Source content:
{{.SourceContent}}

Rewrite the source content as a "{{.TargetFormat}}". Keep the core message and adapt structure, length and tone to the new format.
`))

	analyzePrompt = template.Must(template.New("analyze").Parse(
		`You are an expert editor and writing coach. Analyze the following draft for tone, readability, clarity and engagement.

Draft content:
"{{.DraftContent}}"

For suggestions, be specific and give concrete examples of how to improve the text.
`))

	feedbackPrompt = template.Must(template.New("feedback").Parse(
		`You simulate an audience persona giving feedback on a piece of content.

Your persona:
{{.PersonaDescription}}

Read the draft below from the perspective of this persona. Be critical, insightful and helpful: the creator wants this content to connect with you.

Draft content:
"{{.DraftContent}}"
`))

	ideasPrompt = template.Must(template.New("ideas").Parse(
		`You specialize in content creation. Generate personalized content ideas from the user's voice profile and trending topics.

User voice profile: {{.UserVoiceProfile}}
Trending topics: {{.TrendingTopics}}

Produce a diverse set of ideas that fit the user's style and expertise.
`))

	schedulePrompt = template.Must(template.New("schedule").Parse(
		`You are a content marketing expert. Based on general best practices for audience engagement, suggest an optimal day and time to publish this content.

Content topic: {{.Topic}}
Content format: {{.Format}}

Give a specific day of the week, a time, and a brief explanation.
`))

	chatSystemPrompt = template.Must(template.New("chat").Parse(
		`You are a "Ghost-in-the-Shell" writing partner. Help the user brainstorm, outline and write content in a conversational, collaborative way.
Adopt the user's voice and style, described in this profile:
<VoiceProfile>
{{.VoiceProfile}}
</VoiceProfile>

Keep this voice throughout the conversation. Answer the user's prompts, ask clarifying questions and help turn ideas into full drafts.
`))

	summarizeForImagePrompt = template.Must(template.New("summarize-for-image").Parse(
		`Summarize the following content into a short, visually descriptive prompt for an image generation model. Focus on the key subjects, actions and overall mood.

Content:
{{.Content}}
`))

	imagePrompt = template.Must(template.New("image").Parse(
		`Generate a visually appealing and relevant image based on this description: {{.}}. Style: digital illustration, professional, clean.`))
)
