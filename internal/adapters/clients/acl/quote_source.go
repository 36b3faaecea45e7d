package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-generator/internal/adapters/clients"
	"github.com/jsamuelsen/quote-generator/internal/domain"
	"github.com/jsamuelsen/quote-generator/internal/platform/logging"
)

// DefaultQuotesPath is the listing endpoint of the quotes API.
const DefaultQuotesPath = "/quotes"

const listOperation = "list quotes"

// QuoteSourceConfig contains configuration for the quote source.
type QuoteSourceConfig struct {
	// Client is the HTTP client; its BaseURL points at the quotes API. Required.
	Client *clients.Client

	// ServiceName is used in errors and health output. Defaults to "quote-service".
	ServiceName string

	// Path of the listing endpoint. Defaults to DefaultQuotesPath.
	Path string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// QuoteSource implements ports.QuoteSource against a dummyjson-style quotes
// listing.
type QuoteSource struct {
	BaseAdapter

	path   string
	logger *slog.Logger
}

// NewQuoteSource creates the quote source adapter.
// Panics if Client is nil.
func NewQuoteSource(cfg QuoteSourceConfig) *QuoteSource {
	if cfg.Client == nil {
		panic("QuoteSource: Client is required")
	}

	name := cfg.ServiceName
	if name == "" {
		name = "quote-service"
	}

	path := cfg.Path
	if path == "" {
		path = DefaultQuotesPath
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteSource{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		path:        path,
		logger:      logger.With(slog.String("component", "acl.QuoteSource")),
	}
}

// quotesListing is the external listing DTO. Paging fields are ignored.
// Quotes stays raw so a malformed field degrades to an empty listing.
type quotesListing struct {
	Quotes json.RawMessage `json:"quotes"`
}

// quoteRecord is one external quote. The id is not carried into the domain.
type quoteRecord struct {
	ID     int    `json:"id"`
	Quote  string `json:"quote"  validate:"required"`
	Author string `json:"author" validate:"required"`
}

// FetchQuotes retrieves the full listing and translates it.
// A body that is not JSON is an error. A body that is not an object, or whose
// "quotes" field is absent or not an array, yields an empty collection.
// Elements that do not decode or validate are dropped.
func (s *QuoteSource) FetchQuotes(ctx context.Context) (domain.QuoteCollection, error) {
	s.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", s.path))

	body, err := s.Get(ctx, s.path, listOperation)
	if err != nil {
		s.logger.WarnContext(ctx, "quotes request failed", slog.Any("error", err))
		return nil, err
	}

	raw, err := DecodeResponse[json.RawMessage](body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", s.ServiceName(), err)
	}

	elements := listingElements(*raw)
	if len(elements) == 0 {
		s.logger.DebugContext(ctx, "quotes listing has no usable records")
		return domain.QuoteCollection{}, nil
	}

	quotes, rejected := TranslateValid(elements, translateRawQuote)
	for _, rerr := range rejected {
		s.logger.DebugContext(ctx, "dropping invalid quote record", slog.Any("error", rerr))
	}

	s.logger.Log(ctx, logging.LevelTrace, "translated quotes listing",
		slog.Int("received", len(elements)),
		slog.Int("kept", len(quotes)))

	return domain.QuoteCollection(quotes), nil
}

// listingElements extracts the raw "quotes" elements, or nil when the
// document does not carry an array there.
func listingElements(raw json.RawMessage) []json.RawMessage {
	var listing quotesListing
	if err := json.Unmarshal(raw, &listing); err != nil || len(listing.Quotes) == 0 {
		return nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(listing.Quotes, &elements); err != nil {
		return nil
	}

	return elements
}

func translateRawQuote(raw *json.RawMessage) (domain.Quote, error) {
	var rec quoteRecord
	if err := json.Unmarshal(*raw, &rec); err != nil {
		return domain.Quote{}, domain.NewValidationError("", "malformed quote record: "+err.Error())
	}

	return translateQuote(&rec)
}

func translateQuote(rec *quoteRecord) (domain.Quote, error) {
	if err := ValidateRecord(rec); err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{
		Content: rec.Quote,
		Author:  rec.Author,
	}, nil
}

// Name implements ports.HealthChecker.
func (s *QuoteSource) Name() string {
	return s.ServiceName()
}

// Check implements ports.HealthChecker with a one-record listing request.
func (s *QuoteSource) Check(ctx context.Context) error {
	path := s.path
	if !strings.Contains(path, "?") {
		path += "?limit=1"
	}

	body, err := s.Get(ctx, path, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}
