// Package routes defines the HTTP route patterns of the service.
package routes

const (
	// State and voice
	APIState             = "GET /api/state"
	APIVoiceProfileGet   = "GET /api/voice-profile"
	APIVoiceProfilePut   = "PUT /api/voice-profile"
	APIVoiceProfileClear = "DELETE /api/voice-profile"
	APIVoiceProfileLearn = "POST /api/voice-profile/learn"

	// Drafts
	APIDrafts          = "GET /api/drafts"
	APIDraftCreate     = "POST /api/drafts"
	APIDraft           = "GET /api/drafts/{id}"
	APIDraftUpdate     = "PATCH /api/drafts/{id}"
	APIDraftDelete     = "DELETE /api/drafts/{id}"
	APIDraftSchedule   = "PUT /api/drafts/{id}/schedule"
	APIDraftUnschedule = "DELETE /api/drafts/{id}/schedule"
	APIDraftPreview    = "GET /api/drafts/{id}/preview"
	APIDraftRepurpose  = "POST /api/drafts/{id}/repurpose"
	APICalendar        = "GET /api/calendar"

	// Personas
	APIPersonas      = "GET /api/personas"
	APIPersonaCreate = "POST /api/personas"
	APIPersonaDelete = "DELETE /api/personas/{id}"
	APIExperts       = "GET /api/experts"

	// Flows
	APIFlowDraft     = "POST /api/flows/draft"
	APIFlowRepurpose = "POST /api/flows/repurpose"
	APIFlowAnalyze   = "POST /api/flows/analyze"
	APIFlowFeedback  = "POST /api/flows/feedback"
	APIFlowIdeas     = "POST /api/flows/ideas"
	APIFlowSchedule  = "POST /api/flows/schedule"
	APIFlowChat      = "POST /api/flows/chat"
	APIFlowVisual    = "POST /api/flows/visual"

	// Placeholder; there is no authentication.
	APILogin = "POST /api/login"

	// SSE
	SSEPath = "GET /events"

	// Assets
	SyntaxCSS    = "GET /syntax.css"
	SyntaxThemes = "GET /api/syntax-themes"
	RobotsPath   = "GET /robots.txt"
)
