package parser

import (
	"context"
	"fmt"
	"time"
)

type stubFetcher struct {
	docs  map[string]string
	errs  map[string]error
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	s.calls = append(s.calls, url)
	if err, ok := s.errs[url]; ok {
		return nil, err
	}
	doc, ok := s.docs[url]
	if !ok {
		return nil, fmt.Errorf("unexpected url %s", url)
	}
	return []byte(doc), nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
}
