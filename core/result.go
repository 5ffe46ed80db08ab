package core

import "errors"

// Result is the outcome of a user-facing command such as a login or an enrollment.
// Callers branch on Success; Message is meant to be shown to the user as is.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Ok(msg string) Result { return Result{Success: true, Message: msg} }
func Fail(msg string) Result { return Result{Success: false, Message: msg} }

// Err converts a failed Result into an error, nil on success.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return errors.New(r.Message)
}
