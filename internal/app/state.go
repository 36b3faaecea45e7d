package app

import (
	"fmt"

	"github.com/jsamuelsen/quote-generator/internal/domain"
)

// Status is the presentation state of a widget.
type Status int

const (
	// StatusLoading shows the loading indicator.
	StatusLoading Status = iota

	// StatusError shows the error message.
	StatusError

	// StatusReady shows the selected quote.
	StatusReady
)

// String returns the lowercase state name.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusReady:
		return "ready"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText encodes the status as its name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "loading":
		*s = StatusLoading
	case "error":
		*s = StatusError
	case "ready":
		*s = StatusReady
	default:
		return fmt.Errorf("unknown widget status %q", text)
	}

	return nil
}

// Button labels.
const (
	ButtonLabelIdle    = "Get Another Quote"
	ButtonLabelLoading = "Loading..."
)

// State is a point-in-time snapshot of a widget.
// Quote is the last selected quote, if any; it is only rendered in Ready.
type State struct {
	Status Status
	Error  string
	Quote  *domain.DisplayedQuote
}

// View is the render model of a widget snapshot.
type View struct {
	Status          Status
	Loading         bool
	Error           string
	Quote           *domain.DisplayedQuote
	DefaultImageURL string
	ButtonLabel     string
	ButtonDisabled  bool
}

// View derives the render model. Loading wins over Error, Error wins over
// the quote, and the button is disabled exactly while Loading.
func (s State) View(defaultImageURL string) View {
	v := View{
		Status:          s.Status,
		DefaultImageURL: defaultImageURL,
		ButtonLabel:     ButtonLabelIdle,
	}

	switch s.Status {
	case StatusLoading:
		v.Loading = true
		v.ButtonLabel = ButtonLabelLoading
		v.ButtonDisabled = true
	case StatusError:
		v.Error = s.Error
	case StatusReady:
		v.Quote = s.Quote
	}

	return v
}

// View returns the render model of the widget's current state.
func (w *Widget) View() View {
	return w.State().View(w.images.Default())
}
