package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/raterudder/ptxhub/pkg/common"
	"github.com/raterudder/ptxhub/pkg/types"
)

type sources struct {
	client *http.Client
}

// load decodes the JSON at loc, a file path or an http(s) URL, into v.
func (s sources) load(ctx context.Context, loc string, v any) error {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return common.FetchJSON(ctx, s.client, loc, v)
	}
	b, err := os.ReadFile(loc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", loc, err)
	}
	return nil
}

// scenarios loads every location. A location holds either one scenario or
// an array of them.
func (s sources) scenarios(ctx context.Context, locs []string) ([]types.Scenario, error) {
	var out []types.Scenario
	seen := make(map[string]bool)
	for _, loc := range locs {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		var raw json.RawMessage
		if err := s.load(ctx, loc, &raw); err != nil {
			return nil, err
		}
		var batch []types.Scenario
		if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(raw, &batch); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", loc, err)
			}
		} else {
			var sc types.Scenario
			if err := json.Unmarshal(raw, &sc); err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", loc, err)
			}
			batch = append(batch, sc)
		}
		for _, sc := range batch {
			if sc.ID == "" {
				return nil, fmt.Errorf("scenario in %s has no id", loc)
			}
			if seen[sc.ID] {
				return nil, fmt.Errorf("duplicate scenario id %q", sc.ID)
			}
			seen[sc.ID] = true
			out = append(out, sc)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no scenarios given")
	}
	return out, nil
}
