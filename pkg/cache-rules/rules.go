// Package cacherules turns configured rules into evaluation listeners,
// so that storage and retrieval can be forced on or off per path.
package cacherules

import (
	"net/http"
	"strings"

	"github.com/always-cache/httpcache/evaluation"
	sink "github.com/always-cache/httpcache/pkg/response-sink"

	"github.com/rs/zerolog"
)

type Rules []Rule

// Rule matches requests by method, path and query, and responses additionally by status.
// A rule without a method matches GET and HEAD requests only.
// Unset decisions are left to other listeners and the built-in rules.
type Rule struct {
	Prefix string            `yaml:"prefix"`
	Path   string            `yaml:"path"`
	Method string            `yaml:"method"`
	Query  map[string]string `yaml:"query"`
	// Response status codes the rule applies to. A rule with status codes
	// only takes part in response evaluation.
	Status      []int `yaml:"status"`
	Storable    *bool `yaml:"storable"`
	Retrievable *bool `yaml:"retrievable"`
}

// Registrar accepts evaluation listeners.
type Registrar interface {
	OnRequest(evaluation.RequestListener)
	OnResponse(evaluation.ResponseListener)
}

// Register adds listeners applying the rules to both request and response evaluation.
func (r Rules) Register(reg Registrar, logger zerolog.Logger) {
	if len(r) == 0 {
		return
	}
	reg.OnRequest(r.requestListener(logger))
	reg.OnResponse(r.responseListener(logger))
}

func (r Rules) requestListener(logger zerolog.Logger) evaluation.RequestListener {
	return func(req *http.Request, s sink.Sink, c *evaluation.RequestContext) error {
		if rule := r.find(req, 0, logger); rule != nil {
			applyRuleToRequest(*rule, c)
		}
		return nil
	}
}

func (r Rules) responseListener(logger zerolog.Logger) evaluation.ResponseListener {
	return func(req *http.Request, s sink.Sink, c *evaluation.ResponseContext) error {
		if rule := r.find(req, c.StatusCode, logger); rule != nil {
			applyRuleToResponse(*rule, c)
		}
		return nil
	}
}

func applyRuleToRequest(rule Rule, c *evaluation.RequestContext) {
	if rule.Storable != nil {
		c.FlagStorable(*rule.Storable)
	}
	if rule.Retrievable != nil {
		c.FlagRetrievable(*rule.Retrievable)
	}
}

func applyRuleToResponse(rule Rule, c *evaluation.ResponseContext) {
	if rule.Storable != nil {
		c.FlagStorable(*rule.Storable)
	}
}

// find returns the first rule matching the request.
// For request evaluation statusCode is 0, and rules with status codes are skipped.
func (r Rules) find(req *http.Request, statusCode int, logger zerolog.Logger) *Rule {
	logger.Trace().Msgf("Finding rule for request %s:%s", req.Method, req.URL.Path)
rulesLoop:
	for i := range r {
		rule := &r[i]
		if rule.Method == "" && req.Method != http.MethodGet && req.Method != http.MethodHead {
			continue
		}
		if rule.Method != "" && !strings.EqualFold(rule.Method, req.Method) {
			continue
		}
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		if len(rule.Query) > 0 {
			qry := req.URL.Query()
			for name, value := range rule.Query {
				if value == "" && !qry.Has(name) {
					continue rulesLoop
				} else if value != "" && qry.Get(name) != value {
					continue rulesLoop
				}
			}
		}
		if len(rule.Status) > 0 && !hasStatus(rule.Status, statusCode) {
			continue
		}
		logger.Trace().Msgf("Applying rule %+v", *rule)
		return rule
	}
	return nil
}

func hasStatus(codes []int, statusCode int) bool {
	for _, code := range codes {
		if code == statusCode {
			return true
		}
	}
	return false
}
