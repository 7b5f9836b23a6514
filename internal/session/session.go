// Package session resolves the parameters of a generation run, either from
// command-line flags or through an interactive prompt sequence.
package session

import (
	"errors"
	"fmt"
	"os"
)

// Defaults applied to parameters left unresolved in non-interactive mode.
const (
	DefaultTarget     = "."
	DefaultOutputPath = "openapi.yaml"
	DefaultBaseURL    = "http://localhost:3000"
)

// ErrAborted signals a user-initiated abort. It is not a failure: callers
// exit cleanly when they see it.
var ErrAborted = errors.New("aborted by user")

// PreconditionError reports a fatal condition detected before any network
// call is made, such as a missing target in non-interactive mode.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "precondition failed: " + e.Reason
}

// State identifies a step of the setup state machine. States advance in
// declaration order.
type State int

const (
	StateAwaitConsent State = iota
	StateAwaitDirectory
	StateAwaitOutputPath
	StateAwaitBaseURL
	StateReady
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateAwaitConsent:
		return "await-consent"
	case StateAwaitDirectory:
		return "await-directory"
	case StateAwaitOutputPath:
		return "await-output-path"
	case StateAwaitBaseURL:
		return "await-base-url"
	case StateReady:
		return "ready"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome records how a single step was settled.
type Outcome int

const (
	// OutcomeSupplied means the value came from a flag or argument.
	OutcomeSupplied Outcome = iota
	// OutcomeResolved means the user answered a prompt.
	OutcomeResolved
	// OutcomeSkipped means prompting was skipped and a default applied.
	OutcomeSkipped
	// OutcomeCancelled means the user dismissed a prompt or declined consent.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSupplied:
		return "supplied"
	case OutcomeResolved:
		return "resolved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Prompter supplies interactive answers. Implementations return an error
// wrapping ErrAborted when the user dismisses a prompt; any other error is
// surfaced to the caller unchanged.
type Prompter interface {
	Confirm(question string, def bool) (bool, error)
	Input(label, placeholder, fallback string) (string, error)
}

// Params holds the settled inputs of a generation run. Model is carried
// through unchanged: it always arrives from a flag with a default and has
// no prompt step.
type Params struct {
	Target     string
	OutputPath string
	BaseURL    string
	Model      string
}

// Controller walks the setup steps in order and records how each one was
// settled.
type Controller struct {
	prompter    Prompter
	skipPrompts bool

	// OnWarn receives non-fatal notices, such as a supplied target that
	// does not exist.
	OnWarn func(string)

	state    State
	outcomes map[State]Outcome
}

// New returns a controller positioned at the consent step. When skipPrompts
// is set, every unresolved step settles to its default instead of asking.
func New(p Prompter, skipPrompts bool) *Controller {
	return &Controller{
		prompter:    p,
		skipPrompts: skipPrompts,
		state:       StateAwaitConsent,
		outcomes:    make(map[State]Outcome),
	}
}

// State reports the step the controller is currently at.
func (c *Controller) State() State {
	return c.state
}

// Outcome reports how a step was settled, if it ran.
func (c *Controller) Outcome(s State) (Outcome, bool) {
	o, ok := c.outcomes[s]
	return o, ok
}

// Resolve walks the steps from consent to ready and returns the settled
// parameters. Empty fields of supplied were not given on the command line.
// It returns ErrAborted on user cancellation and *PreconditionError when a
// fatal condition is detected.
func (c *Controller) Resolve(supplied Params) (Params, error) {
	if err := c.resolveConsent(); err != nil {
		return Params{}, err
	}

	target, err := c.resolveTarget(supplied.Target)
	if err != nil {
		return Params{}, err
	}

	output, err := c.resolveString(StateAwaitOutputPath, supplied.OutputPath, "Output file", DefaultOutputPath)
	if err != nil {
		return Params{}, err
	}

	baseURL, err := c.resolveString(StateAwaitBaseURL, supplied.BaseURL, "Server base URL", DefaultBaseURL)
	if err != nil {
		return Params{}, err
	}

	// The target can disappear while later steps are prompting, and the
	// skip-prompts default path never checked it at all.
	if _, statErr := os.Stat(target); statErr != nil {
		return Params{}, &PreconditionError{Reason: fmt.Sprintf("target %q does not exist", target)}
	}

	return Params{
		Target:     target,
		OutputPath: output,
		BaseURL:    baseURL,
		Model:      supplied.Model,
	}, nil
}

func (c *Controller) resolveConsent() error {
	if c.skipPrompts {
		c.settle(StateAwaitConsent, OutcomeSkipped)
		return nil
	}

	ok, err := c.prompter.Confirm("Scan the target and generate an API document?", true)
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return c.abort(StateAwaitConsent)
		}
		return err
	}
	if !ok {
		return c.abort(StateAwaitConsent)
	}

	c.settle(StateAwaitConsent, OutcomeResolved)
	return nil
}

func (c *Controller) resolveTarget(supplied string) (string, error) {
	if supplied != "" {
		if _, err := os.Stat(supplied); err == nil {
			c.settle(StateAwaitDirectory, OutcomeSupplied)
			return supplied, nil
		}
		if c.skipPrompts {
			return "", &PreconditionError{Reason: fmt.Sprintf("target %q does not exist", supplied)}
		}
		c.warn(fmt.Sprintf("target %q does not exist, enter another path", supplied))
	}

	if c.skipPrompts {
		c.settle(StateAwaitDirectory, OutcomeSkipped)
		return DefaultTarget, nil
	}

	for {
		value, err := c.prompter.Input("Target directory or file", DefaultTarget, DefaultTarget)
		if err != nil {
			if errors.Is(err, ErrAborted) {
				return "", c.abort(StateAwaitDirectory)
			}
			return "", err
		}
		if _, statErr := os.Stat(value); statErr == nil {
			c.settle(StateAwaitDirectory, OutcomeResolved)
			return value, nil
		}
		c.warn(fmt.Sprintf("%q does not exist, enter another path", value))
	}
}

func (c *Controller) resolveString(step State, supplied, label, fallback string) (string, error) {
	if supplied != "" {
		c.settle(step, OutcomeSupplied)
		return supplied, nil
	}
	if c.skipPrompts {
		c.settle(step, OutcomeSkipped)
		return fallback, nil
	}

	value, err := c.prompter.Input(label, fallback, fallback)
	if err != nil {
		if errors.Is(err, ErrAborted) {
			return "", c.abort(step)
		}
		return "", err
	}

	c.settle(step, OutcomeResolved)
	return value, nil
}

func (c *Controller) settle(step State, o Outcome) {
	c.outcomes[step] = o
	c.state = step + 1
}

func (c *Controller) abort(step State) error {
	c.outcomes[step] = OutcomeCancelled
	c.state = StateAborted
	return ErrAborted
}

func (c *Controller) warn(msg string) {
	if c.OnWarn != nil {
		c.OnWarn(msg)
	}
}
