package gbp

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/rest"
)

// pages lists path one page at a time, yielding the records stored under
// field. Nothing is fetched until the sequence is ranged over, and every
// range starts again from the first page.
func pages(ctx context.Context, svc *rest.Service, path, field string, pageSize int) iter.Seq2[[]domain.Record, error] {
	return func(yield func([]domain.Record, error) bool) {
		token := ""
		seen := map[string]bool{}
		for {
			q := url.Values{}
			if pageSize > 0 {
				q.Set("pageSize", strconv.Itoa(pageSize))
			}
			if token != "" {
				q.Set("pageToken", token)
			}

			var page map[string]json.RawMessage
			if err := svc.Do(ctx, http.MethodGet, path, q, nil, &page); err != nil {
				yield(nil, err)
				return
			}

			var records []domain.Record
			if raw, ok := page[field]; ok {
				if err := json.Unmarshal(raw, &records); err != nil {
					yield(nil, fmt.Errorf("failed to decode %s of %s: %w", field, path, err))
					return
				}
			}
			if !yield(records, nil) {
				return
			}

			var next string
			if raw, ok := page["nextPageToken"]; ok {
				if err := json.Unmarshal(raw, &next); err != nil {
					yield(nil, fmt.Errorf("failed to decode nextPageToken of %s: %w", path, err))
					return
				}
			}
			if next == "" {
				return
			}
			if seen[next] {
				yield(nil, fmt.Errorf("failed to list %s: page token %q repeated", path, next))
				return
			}
			seen[next] = true
			token = next
		}
	}
}

// drain collects every page of seq. A failure on any page discards the
// records gathered so far.
func drain(seq iter.Seq2[[]domain.Record, error]) ([]domain.Record, error) {
	all := []domain.Record{}
	for page, err := range seq {
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
	}
	return all, nil
}
