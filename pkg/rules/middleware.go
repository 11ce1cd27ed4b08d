package rules

import (
	"context"

	"github.com/zoobzio/detent"
	"github.com/zoobzio/pipz"
)

var rulesID = pipz.NewIdentity("detent:rules", "Evaluate expression rules")

// Use returns Confirmer middleware that applies rules in order. Each rule
// sees the value produced by the one before it; the first rejection stops
// the candidate.
//
// Example:
//
//	limit := rules.MustCompile("value <= end - 6")
//	detent.NewConfirmer(group, detent.WithMiddleware(rules.Use(limit)))
func Use(rules ...*Rule) pipz.Chainable[*detent.Request] {
	return pipz.Apply(rulesID, func(_ context.Context, req *detent.Request) (*detent.Request, error) {
		for _, r := range rules {
			value, err := r.Evaluate(req)
			if err != nil {
				return req, err
			}
			req.Value = value
		}
		return req, nil
	})
}
