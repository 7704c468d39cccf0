// Package testing drives Bubbletea models step by step in unit tests.
package testing

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
)

// TestHarness runs a Bubbletea model through a sequence of messages and checks
// View() and model state after each one. Commands returned by Update() are run
// synchronously and their messages fed back, the way the Bubbletea runtime
// would. A tea.Batch is not unpacked: its BatchMsg reaches Update() as-is.
//
//	harness := NewTestHarness(t, view)
//	harness.
//		Step(TestStep[*LoggerView]{Name: "empty", ViewAssert: ...}).
//		Step(TestStep[*LoggerView]{Name: "refresh", Msg: Key("r"), ModelAssert: ...}).
//		Run(t)
//
// Expect() steps intercept messages produced by commands instead of feeding
// them straight back; Finally() intercepts one last message and stops.
type TestHarness[T tea.Model] struct {
	model              T
	steps              []TestStep[T]
	expectedSteps      []TestStep[T]
	finalStep          *TestStep[T]
	goldie             *goldie.Goldie
	currentExpectIndex int
	stopProcessing     bool
}

// TestStep is one message and the assertions to run after it
type TestStep[T tea.Model] struct {
	// Name identifies this step in subtest and golden file names
	Name string

	// Msg to send to Update(). Nil only renders. Expect/Finally steps leave it
	// nil: their message comes from a command.
	Msg tea.Msg

	// ExpectedMsgType is matched by exact type in Expect/Finally steps
	ExpectedMsgType tea.Msg

	// MessageAssert inspects the intercepted message before Update()
	MessageAssert func(t *testing.T, msg tea.Msg)

	// ViewGolden compares View() to testdata/<ViewGolden>.golden (go test -update)
	ViewGolden string

	// ViewGoldenData, when set, executes the golden file as a text/template
	// with this data before comparing
	ViewGoldenData any

	ViewAssert  func(t *testing.T, view string)
	ModelAssert func(t *testing.T, m T)

	SkipViewAssertion bool
}

// NewTestHarness creates a harness. It forces the ASCII colour profile so
// rendered views carry no escape codes. Run() calls Init().
func NewTestHarness[T tea.Model](t *testing.T, model T) *TestHarness[T] {
	t.Helper()

	lipgloss.SetColorProfile(termenv.Ascii)

	return &TestHarness[T]{
		model: model,
		goldie: goldie.New(t,
			goldie.WithFixtureDir("testdata"),
			goldie.WithNameSuffix(".golden"),
		),
	}
}

// Step adds a step; steps run in order
func (h *TestHarness[T]) Step(step TestStep[T]) *TestHarness[T] {
	h.steps = append(h.steps, step)
	return h
}

// Expect adds a step that receives the next message produced by a command.
// A message of the wrong type fails the test.
func (h *TestHarness[T]) Expect(step TestStep[T]) *TestHarness[T] {
	h.expectedSteps = append(h.expectedSteps, step)
	return h
}

// Finally adds the step after which no further commands are processed
func (h *TestHarness[T]) Finally(step TestStep[T]) *TestHarness[T] {
	h.finalStep = &step
	return h
}

// Run calls Init(), then sends each step's message and runs its assertions
func (h *TestHarness[T]) Run(t *testing.T) {
	t.Helper()

	h.currentExpectIndex = 0
	h.stopProcessing = false

	h.processCommands(t, h.model.Init(), 0)

	for _, step := range h.steps {
		if h.stopProcessing {
			break
		}

		t.Run(step.Name, func(t *testing.T) {
			if step.Msg != nil {
				updatedModel, cmd := h.model.Update(step.Msg)
				var ok bool
				h.model, ok = updatedModel.(T)
				if !ok {
					t.Fatalf("model %T is not %T", updatedModel, new(T))
				}
				h.processCommands(t, cmd, 0)
			}
			h.assertStep(t, step)
		})
	}
}

// maxCommandDepth bounds tick-driven command chains such as spinner.Tick
const maxCommandDepth = 10

func (h *TestHarness[T]) processCommands(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()

	if cmd == nil || h.stopProcessing {
		return
	}
	if depth >= maxCommandDepth {
		t.Log("max command depth exceeded")
		return
	}

	msg := cmd()
	if msg == nil {
		return
	}
	if h.shouldIntercept(t, msg) {
		return
	}

	updatedModel, nextCmd := h.model.Update(msg)
	h.model = updatedModel.(T) //nolint:errcheck // Type assertion guaranteed by test harness generic type
	h.processCommands(t, nextCmd, depth+1)
}

// shouldIntercept hands msg to the next Expect or Finally step. It reports
// whether the message was consumed.
func (h *TestHarness[T]) shouldIntercept(t *testing.T, msg tea.Msg) bool {
	t.Helper()

	if len(h.expectedSteps) == 0 && h.finalStep == nil {
		return false
	}

	if h.currentExpectIndex < len(h.expectedSteps) {
		step := h.expectedSteps[h.currentExpectIndex]
		if !matchesMessageType(msg, step) {
			t.Fatalf("Unexpected message type during command processing.\nExpected step: %s (type: %s)\nGot message type: %T\nMessage: %+v",
				step.Name, expectedTypeName(step), msg, msg)
			return true
		}

		h.currentExpectIndex++
		h.deliver(t, msg, step)
		return true
	}

	if h.finalStep == nil {
		return false
	}

	if matchesMessageType(msg, *h.finalStep) {
		h.deliver(t, msg, *h.finalStep)
		h.stopProcessing = true
		return true
	}

	if !isFrameworkMessage(msg) {
		t.Fatalf("Unexpected message before Finally step.\nExpected Finally step: %s (type: %s)\nGot message type: %T\nMessage: %+v",
			h.finalStep.Name, expectedTypeName(*h.finalStep), msg, msg)
	}
	return false
}

// deliver runs MessageAssert, feeds msg to Update() and asserts the result
func (h *TestHarness[T]) deliver(t *testing.T, msg tea.Msg, step TestStep[T]) {
	t.Helper()

	if step.MessageAssert != nil {
		step.MessageAssert(t, msg)
	}

	updatedModel, _ := h.model.Update(msg)
	h.model = updatedModel.(T) //nolint:errcheck // Type assertion guaranteed by test harness generic type

	t.Run(step.Name, func(t *testing.T) {
		h.assertStep(t, step)
	})
}

func (h *TestHarness[T]) assertStep(t *testing.T, step TestStep[T]) {
	t.Helper()

	if !step.SkipViewAssertion {
		view := normalizeView(h.model.View())

		switch {
		case step.ViewGolden != "" && step.ViewGoldenData != nil:
			h.goldie.AssertWithTemplate(t, step.ViewGolden, step.ViewGoldenData, []byte(view))
		case step.ViewGolden != "":
			h.goldie.Assert(t, step.ViewGolden, []byte(view))
		}
		if step.ViewAssert != nil {
			step.ViewAssert(t, view)
		}
	}

	if step.ModelAssert != nil {
		step.ModelAssert(t, h.model)
	}
}

func expectedTypeName[T tea.Model](step TestStep[T]) string {
	if step.ExpectedMsgType == nil {
		return "any async message"
	}
	return reflect.TypeOf(step.ExpectedMsgType).String()
}

// isFrameworkMessage reports messages that Finally() lets pass through
func isFrameworkMessage(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.BatchMsg, tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg:
		return true
	default:
		return false
	}
}

// matchesMessageType matches ExpectedMsgType exactly when set, otherwise any
// message that is not user input or a batch
func matchesMessageType[T tea.Model](msg tea.Msg, step TestStep[T]) bool {
	if step.ExpectedMsgType != nil {
		return reflect.TypeOf(msg) == reflect.TypeOf(step.ExpectedMsgType)
	}

	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg, tea.WindowSizeMsg, tea.BatchMsg:
		return false
	default:
		return true
	}
}

// normalizeView trims surrounding whitespace and normalises line endings
func normalizeView(view string) string {
	view = strings.TrimSpace(view)
	return strings.ReplaceAll(view, "\r\n", "\n")
}

// Key builds the tea.KeyMsg for a key name as printed by tea.KeyMsg.String(),
// e.g. "r", "enter", "esc", "ctrl+c", "ctrl+u"
func Key(name string) tea.KeyMsg {
	switch name {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

// Type builds the key message for typing text into a focused input
func Type(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)}
}

// AssertContains checks that view contains substring
func AssertContains(t *testing.T, view, substring string) {
	t.Helper()
	if !strings.Contains(view, substring) {
		t.Errorf("View does not contain expected substring.\nExpected substring: %q\nActual view:\n%s", substring, view)
	}
}

// AssertNotContains checks that view does not contain substring
func AssertNotContains(t *testing.T, view, substring string) {
	t.Helper()
	if strings.Contains(view, substring) {
		t.Errorf("View contains unexpected substring.\nUnexpected substring: %q\nActual view:\n%s", substring, view)
	}
}
