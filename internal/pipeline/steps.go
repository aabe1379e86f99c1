package pipeline

// Step names reported in progress events.
const (
	StepResolve   = "resolve_company"
	StepCache     = "check_cache"
	StepAggregate = "aggregate"
	StepProcess   = "process"
	StepPersist   = "persist"
	StepPublish   = "publish"

	StepHighlights = "extract_highlights"
	StepSocial     = "generate_social"
	StepStore      = "store_content"
)

// Step categories.
const (
	CategoryNews       = "news"
	CategoryGeneration = "generation"
)

// StepDefinition describes one pipeline step.
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds every step the service reports.
var StepRegistry = map[string]StepDefinition{
	StepResolve:   {Name: StepResolve, Category: CategoryNews},
	StepCache:     {Name: StepCache, Category: CategoryNews, Dependencies: []string{StepResolve}},
	StepAggregate: {Name: StepAggregate, Category: CategoryNews, Dependencies: []string{StepResolve}},
	StepProcess:   {Name: StepProcess, Category: CategoryNews, Dependencies: []string{StepAggregate}},
	StepPersist:   {Name: StepPersist, Category: CategoryNews, Dependencies: []string{StepProcess}},
	StepPublish:   {Name: StepPublish, Category: CategoryNews, Dependencies: []string{StepPersist}},

	StepHighlights: {Name: StepHighlights, Category: CategoryGeneration},
	StepSocial:     {Name: StepSocial, Category: CategoryGeneration, Dependencies: []string{StepHighlights}},
	StepStore:      {Name: StepStore, Category: CategoryGeneration, Dependencies: []string{StepSocial}},
}

// GetStepCategory returns the category of a step, or "" for unknown steps.
func GetStepCategory(step string) string {
	return StepRegistry[step].Category
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

func emit(cb ProgressCallback, runID, step, message string, content any) {
	if cb == nil {
		return
	}
	cb(ProgressEvent{
		Step:     step,
		Category: GetStepCategory(step),
		Message:  message,
		RunID:    runID,
		Content:  content,
	})
}
