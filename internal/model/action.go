package model

// ActionResult is the small tagged result a form action returns to the UI.
// Exactly one of Redirect, FieldErrors, Error, or Success describes the outcome.
type ActionResult struct {
	Success     bool                `json:"success,omitempty"`
	Error       string              `json:"error,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
	Redirect    string              `json:"redirect,omitempty"`
	Data        interface{}         `json:"data,omitempty"`
}

func Succeeded(data interface{}) ActionResult {
	return ActionResult{Success: true, Data: data}
}

func Failed(msg string) ActionResult {
	return ActionResult{Error: msg}
}

func Invalid(fields map[string][]string) ActionResult {
	return ActionResult{Error: "validation failed", FieldErrors: fields}
}

func RedirectTo(path string) ActionResult {
	return ActionResult{Success: true, Redirect: path}
}

// Outcome names the result kind for metrics and logs.
func (r ActionResult) Outcome() string {
	switch {
	case len(r.FieldErrors) > 0:
		return "invalid"
	case r.Error != "":
		return "error"
	case r.Redirect != "":
		return "redirect"
	default:
		return "success"
	}
}
