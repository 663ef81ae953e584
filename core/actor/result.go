package actor

import "fmt"

// ErrorActor is the error id of results produced by the dispatcher itself:
// unknown command tags and argument count mismatches.
const ErrorActor = 1

// ErrorResult is a data-plane failure. It is delivered as the resolved value of
// a message, not as a fault, so callers of AsyncFunc tell it apart from a
// success by its type. It implements error for callers that want one.
type ErrorResult struct {
	ErrorID  int    `json:"error_id"`
	ErrorMsg string `json:"error_msg"`
	ID       int64  `json:"id"`
}

func (e *ErrorResult) Error() string {
	return fmt.Sprintf("actor: %s (id=%d error_id=%d)", e.ErrorMsg, e.ID, e.ErrorID)
}

func errorResult(id int64, format string, args ...any) *ErrorResult {
	return &ErrorResult{
		ErrorID:  ErrorActor,
		ErrorMsg: fmt.Sprintf(format, args...),
		ID:       id,
	}
}

// AsErrorResult reports whether v is a data-plane error result.
func AsErrorResult(v any) (*ErrorResult, bool) {
	er, ok := v.(*ErrorResult)
	return er, ok && er != nil
}
