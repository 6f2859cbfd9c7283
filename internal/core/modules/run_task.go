package modules

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JonMunkholm/sheethooks/internal/core"
)

func init() {
	core.Register(core.ModuleDefinition{
		Info: core.ModuleInfo{
			Key:         "run_task",
			Label:       "Run Task",
			Description: "Accept a browser task definition and echo the recognised fields",
		},
		Execute: runTask,
	})
}

// RunTaskData echoes the recognised browser-task fields. Unknown payload
// fields are dropped.
type RunTaskData struct {
	Success               bool   `json:"success"`
	Task                  string `json:"task"`
	Secrets               any    `json:"secrets"`
	AllowedDomains        any    `json:"allowed_domains"`
	SaveBrowserData       any    `json:"save_browser_data"`
	StructuredOutputJSON  any    `json:"structured_output_json"`
	LLMModel              any    `json:"llm_model"`
	UseAdblock            any    `json:"use_adblock"`
	UseProxy              any    `json:"use_proxy"`
	ProxyCountryCode      any    `json:"proxy_country_code"`
	HighlightElements     any    `json:"highlight_elements"`
	IncludedFileNames     any    `json:"included_file_names"`
	BrowserViewportWidth  any    `json:"browser_viewport_width"`
	BrowserViewportHeight any    `json:"browser_viewport_height"`
	MaxAgentSteps         any    `json:"max_agent_steps"`
	EnablePublicShare     any    `json:"enable_public_share"`
	ProcessedAt           string `json:"processed_at"`
}

var now = time.Now

func runTask(ctx context.Context, env core.Env, payload json.RawMessage) (*core.Result, error) {
	var in struct {
		RunTaskData
		Task core.Ref `json:"task"`
	}
	if err := core.DecodePayload(payload, &in); err != nil {
		return nil, err
	}
	if in.Task.Empty() {
		return nil, core.Missing("task")
	}

	data := in.RunTaskData
	data.Success = true
	data.Task = in.Task.String()
	data.ProcessedAt = now().UTC().Format(time.RFC3339)

	return &core.Result{
		Data:     data,
		Metadata: core.Metadata{AffectedRecords: 1, Message: "Task accepted"},
	}, nil
}
