package variable

import "fmt"

// DuplicateVariableError means the same (process, name) was declared twice.
type DuplicateVariableError struct {
	Process string
	Var     string
}

func (e *DuplicateVariableError) Error() string {
	return fmt.Sprintf("duplicate variable %q declared by process %q", e.Var, e.Process)
}

// DuplicateProcessError means two process instances share a name.
type DuplicateProcessError struct {
	Process string
}

func (e *DuplicateProcessError) Error() string {
	return fmt.Sprintf("duplicate process %q", e.Process)
}

// InvalidIntentError means an intent is not one of in, out or inout, or is
// not allowed for the variable's kind.
type InvalidIntentError struct {
	Process string
	Var     string
	Value   string
	Reason  string
}

func (e *InvalidIntentError) Error() string {
	msg := fmt.Sprintf("invalid intent %q", e.Value)
	if e.Var != "" {
		msg = fmt.Sprintf("%s for variable %q of process %q", msg, e.Var, e.Process)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// InvalidDeclarationError reports a structurally malformed declaration.
type InvalidDeclarationError struct {
	Process string
	Var     string
	Reason  string
}

func (e *InvalidDeclarationError) Error() string {
	return fmt.Sprintf("invalid declaration of variable %q in process %q: %s", e.Var, e.Process, e.Reason)
}
