// Package pricing resolves the credit cost of a feature request. It is
// pure data plus lookup: no I/O, no per-feature branching.
package pricing

import (
	"errors"
	"strconv"
	"strings"
)

// ErrFeatureUnknown means no pricing rule resolved and no explicit cost was
// supplied. No default charge is ever applied.
var ErrFeatureUnknown = errors.New("unknown_feature_type")

// AspectDuration keys a price on an (aspect_ratio, duration) pair.
type AspectDuration struct {
	Aspect   string
	Duration int64
}

// Rule prices one feature. Lookup order within a rule: the metadata-driven
// tables first, then the base price.
type Rule struct {
	Base    int64
	HasBase bool

	ByDuration       map[int64]int64
	ByAspectDuration map[AspectDuration]int64
}

// Table maps feature type to its pricing rule.
type Table map[string]Rule

// Resolve returns the cost in credits for one request.
//
// Precedence:
//  1. A caller-supplied explicit cost (finite, non-negative) wins verbatim —
//     the calling system may price dynamically per request.
//  2. A metadata-driven rule for the feature.
//  3. The feature's static base price.
//  4. ErrFeatureUnknown.
func (t Table) Resolve(featureType string, explicitCost *int64, metadata map[string]any) (int64, error) {
	if explicitCost != nil && *explicitCost >= 0 {
		return *explicitCost, nil
	}

	rule, ok := t[featureType]
	if !ok {
		return 0, ErrFeatureUnknown
	}

	if len(rule.ByAspectDuration) > 0 {
		aspect, aspectOK := metadataString(metadata, "aspect_ratio")
		duration, durationOK := metadataInt(metadata, "duration")
		if aspectOK && durationOK {
			if cost, ok := rule.ByAspectDuration[AspectDuration{Aspect: aspect, Duration: duration}]; ok {
				return cost, nil
			}
		}
	}

	if len(rule.ByDuration) > 0 {
		if duration, ok := metadataInt(metadata, "duration"); ok {
			if cost, ok := rule.ByDuration[duration]; ok {
				return cost, nil
			}
		}
	}

	if rule.HasBase {
		return rule.Base, nil
	}
	return 0, ErrFeatureUnknown
}

func metadataString(metadata map[string]any, key string) (string, bool) {
	if metadata == nil {
		return "", false
	}
	raw, ok := metadata[key]
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func metadataInt(metadata map[string]any, key string) (int64, bool) {
	if metadata == nil {
		return 0, false
	}
	switch value := metadata[key].(type) {
	case int:
		return int64(value), true
	case int64:
		return value, true
	case float64:
		if value != float64(int64(value)) {
			return 0, false
		}
		return int64(value), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
