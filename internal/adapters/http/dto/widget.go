package dto

import "github.com/jsamuelsen/quote-generator/internal/app"

// QuoteResponse is the displayed quote.
type QuoteResponse struct {
	Content  string `json:"content"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
}

// ButtonResponse describes the "new quote" button.
type ButtonResponse struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// WidgetResponse is the JSON snapshot of one widget session.
type WidgetResponse struct {
	SessionID       string         `json:"sessionId"`
	Status          app.Status     `json:"status"`
	Loading         bool           `json:"loading"`
	Error           string         `json:"error,omitempty"`
	Quote           *QuoteResponse `json:"quote,omitempty"`
	DefaultImageURL string         `json:"defaultImageUrl"`
	Button          ButtonResponse `json:"button"`
}

// NewWidgetResponse converts a widget view.
func NewWidgetResponse(sessionID string, v app.View) *WidgetResponse {
	resp := &WidgetResponse{
		SessionID:       sessionID,
		Status:          v.Status,
		Loading:         v.Loading,
		Error:           v.Error,
		DefaultImageURL: v.DefaultImageURL,
		Button: ButtonResponse{
			Label:    v.ButtonLabel,
			Disabled: v.ButtonDisabled,
		},
	}

	if v.Quote != nil {
		resp.Quote = &QuoteResponse{
			Content:  v.Quote.Content,
			Author:   v.Quote.Author,
			ImageURL: v.Quote.ImageURL,
		}
	}

	return resp
}
