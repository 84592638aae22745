package agent

// Function names the model may call. These are the only two operations
// the session declares.
const (
	FuncGetScheduleDetails = "get_schedule_details"
	FuncUpdateSchedule     = "update_schedule"
)

// ToolCall is one function-call request from the model. Calls arrive
// in batches; every call in a batch must be answered.
type ToolCall struct {
	// ID matches the response back to the call.
	ID string

	// Name is the declared function being invoked.
	Name string

	// Args contains the parsed arguments from the model.
	Args map[string]any
}

// ToolResponse is the structured result for one call.
type ToolResponse struct {
	ID   string
	Name string

	// Output is the call-specific payload, always carrying at least
	// {"success": bool}.
	Output map[string]any
}

// Declarations returns the function declarations sent in the session
// setup message. The schemas mirror what the fulfillment engine
// accepts; anything else the model sends is a caller error.
func Declarations() []map[string]any {
	return []map[string]any{
		{
			"name": FuncGetScheduleDetails,
			"description": "Look up a person's work schedule. Returns the matching entries " +
				"and refreshes the on-screen calendar. Omit date fields to fetch the " +
				"whole schedule.",
			"parameters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Display name of the person to look up",
					},
					"date": map[string]any{
						"type":        "string",
						"description": "Single date to fetch, YYYY-MM-DD",
					},
					"start_date": map[string]any{
						"type":        "string",
						"description": "Inclusive range start, YYYY-MM-DD",
					},
					"end_date": map[string]any{
						"type":        "string",
						"description": "Inclusive range end, YYYY-MM-DD",
					},
				},
				"required": []string{"name"},
			},
		},
		{
			"name": FuncUpdateSchedule,
			"description": "Create, overwrite or clear one schedule entry for a person on a " +
				"specific date. Unknown people are created on first write.",
			"parameters": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"date": map[string]any{
						"type":        "string",
						"description": "Date of the entry, YYYY-MM-DD",
					},
					"name": map[string]any{
						"type":        "string",
						"description": "Display name; defaults to the configured identity",
					},
					"workType": map[string]any{
						"type":        "string",
						"description": "Short shift label, e.g. early, late, off",
					},
					"content": map[string]any{
						"type":        "string",
						"description": "Free-text note for the entry",
					},
					"operation": map[string]any{
						"type":        "string",
						"enum":        []string{"set", "clear"},
						"description": "set upserts the entry, clear removes it. Default set.",
					},
				},
				"required": []string{"date"},
			},
		},
	}
}
