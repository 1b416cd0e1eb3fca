// Package wizard tracks progress through the multi-step event registration
// form: a linear chain of numbered steps, per-step completion flags and the
// form data gathered so far.
package wizard

import "sync"

// Canonical step numbers.
const (
	StepPersonalInfo = iota + 1
	StepAcademicDetails
	StepEventSelection
	StepPayment
	StepConfirmation
)

// StepDefinition names a step.
type StepDefinition struct {
	Title       string
	Description string
}

// DefaultSteps is the registration flow shown on the registration page.
func DefaultSteps() []StepDefinition {
	return []StepDefinition{
		{Title: "Personal Info", Description: "Tell us who you are"},
		{Title: "Academic Details", Description: "Your college and year of study"},
		{Title: "Event Selection", Description: "Pick an event and how you will participate"},
		{Title: "Payment", Description: "Choose how to pay the registration fee"},
		{Title: "Confirmation", Description: "Emergency contact and terms"},
	}
}

// Step is one entry of a snapshot. IDs start at 1.
type Step struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
	IsActive    bool   `json:"isActive"`
}

// State is a point-in-time copy of the wizard.
type State struct {
	CurrentStep int      `json:"currentStep"`
	TotalSteps  int      `json:"totalSteps"`
	Steps       []Step   `json:"steps"`
	FormData    FormData `json:"formData"`
}

// ActiveStep returns the step whose IsActive flag is set.
func (s State) ActiveStep() Step {
	return s.Steps[s.CurrentStep-1]
}

// Progress is the wizard state machine. The active step is always the
// current step, and completion flags only clear on Reset.
type Progress struct {
	mu        sync.RWMutex
	defs      []StepDefinition
	current   int
	completed []bool
	form      FormData
}

// New starts a wizard at step 1. Without definitions it uses DefaultSteps.
func New(defs ...StepDefinition) *Progress {
	if len(defs) == 0 {
		defs = DefaultSteps()
	}
	return &Progress{
		defs:      append([]StepDefinition(nil), defs...),
		current:   1,
		completed: make([]bool, len(defs)),
	}
}

// Snapshot returns a copy of the current state.
func (p *Progress) Snapshot() State {
	p.mu.RLock()
	defer p.mu.RUnlock()

	steps := make([]Step, len(p.defs))
	for i, d := range p.defs {
		steps[i] = Step{
			ID:          i + 1,
			Title:       d.Title,
			Description: d.Description,
			IsCompleted: p.completed[i],
			IsActive:    i+1 == p.current,
		}
	}
	return State{
		CurrentStep: p.current,
		TotalSteps:  len(p.defs),
		Steps:       steps,
		FormData:    p.form.clone(),
	}
}

// CurrentStep returns the active step number.
func (p *Progress) CurrentStep() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// TotalSteps returns the number of steps.
func (p *Progress) TotalSteps() int {
	return len(p.defs)
}

// IsCompleted reports the completion flag of step n.
func (p *Progress) IsCompleted(n int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.inRange(n) {
		return false
	}
	return p.completed[n-1]
}

// NextStep completes the current step and advances. No-op on the last step.
func (p *Progress) NextStep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current >= len(p.defs) {
		return
	}
	p.completed[p.current-1] = true
	p.current++
}

// PreviousStep moves back one step, keeping completion flags.
func (p *Progress) PreviousStep() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current > 1 {
		p.current--
	}
}

// GoToStep jumps to step n, forwards or backwards. Out of range is ignored.
func (p *Progress) GoToStep(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inRange(n) {
		p.current = n
	}
}

// UpdateFormData merges patch into the form data.
func (p *Progress) UpdateFormData(patch FormPatch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = patch.apply(p.form)
}

// MarkStepCompleted sets the completion flag of step n without moving.
func (p *Progress) MarkStepCompleted(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inRange(n) {
		p.completed[n-1] = true
	}
}

// Reset returns to step 1 with nothing completed and an empty form.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = 1
	p.completed = make([]bool, len(p.defs))
	p.form = FormData{}
}

func (p *Progress) inRange(n int) bool {
	return n >= 1 && n <= len(p.defs)
}
