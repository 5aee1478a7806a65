package recipient

import "context"

// StaticSource serves a fixed token list per country from memory.
// Used in tests to control recipient set sizes exactly.
type StaticSource struct {
	Tokens map[int64][]string

	// ListErr makes every call fail; ListErrOnPage (0-based, with
	// ListErr set) fails only that page so partial fan-out can be
	// exercised. A negative ListErrOnPage fails every page.
	ListErr       error
	ListErrOnPage int
}

func NewStaticSource(tokens map[int64][]string) *StaticSource {
	return &StaticSource{Tokens: tokens, ListErrOnPage: -1}
}

func (s *StaticSource) ListTokens(_ context.Context, countryID int64, pageSize, page int) ([]string, error) {
	if s.ListErr != nil && (s.ListErrOnPage < 0 || s.ListErrOnPage == page) {
		return nil, s.ListErr
	}

	all := s.Tokens[countryID]
	start := page * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}
