// Package color maps free-text color phrases onto the closed color vocabulary.
package color

import (
	"context"
	"strings"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
	"github.com/iconsmith/iconsmith-backend/internal/metrics"
)

// Stage is one step of the resolution chain. It reports false when it has
// no answer and the next stage should be tried.
type Stage interface {
	Name() string
	Resolve(ctx context.Context, input string) (domain.ColorResolution, bool)
}

// StageFunc adapts a plain function to Stage.
type StageFunc func(ctx context.Context, input string) (domain.ColorResolution, bool)

type namedStage struct {
	name string
	fn   StageFunc
}

func (s namedStage) Name() string { return s.name }

func (s namedStage) Resolve(ctx context.Context, input string) (domain.ColorResolution, bool) {
	return s.fn(ctx, input)
}

// Named wraps fn as a Stage called name.
func Named(name string, fn StageFunc) Stage {
	return namedStage{name: name, fn: fn}
}

// Resolver tries its stages in order and falls back to domain.FallbackColor.
// It never fails.
type Resolver struct {
	stages []Stage
}

func NewResolver(stages ...Stage) *Resolver {
	return &Resolver{stages: stages}
}

// NewDefaultResolver builds the exact → fuzzy → classifier chain. A nil
// classifier leaves the model stage out.
func NewDefaultResolver(classifier Classifier, wrap ...func(Stage) Stage) *Resolver {
	stages := []Stage{ExactStage(), FuzzyStage()}
	if classifier != nil {
		s := ClassifierStage(classifier)
		for _, w := range wrap {
			s = w(s)
		}
		stages = append(stages, s)
	}
	return NewResolver(stages...)
}

// Resolve maps input onto the vocabulary.
func (r *Resolver) Resolve(ctx context.Context, input string) domain.ColorResolution {
	input = strings.TrimSpace(input)
	if input != "" {
		for _, s := range r.stages {
			if res, ok := s.Resolve(ctx, input); ok {
				metrics.ColorResolutions.WithLabelValues(s.Name()).Inc()
				return res
			}
		}
	}

	metrics.ColorResolutions.WithLabelValues("fallback").Inc()
	logger.FromContext(ctx).Warn("color resolution fallback",
		"input", input, "resolved_color", domain.FallbackColor)
	return domain.ColorResolution{ResolvedColor: domain.FallbackColor}
}
