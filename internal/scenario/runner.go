package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/cardlinks/internal/apperr"
	"github.com/starford/cardlinks/internal/linkservice"
	"github.com/starford/cardlinks/internal/models"
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Index    int               `json:"index" yaml:"index"`
	Op       string            `json:"op" yaml:"op"`
	Target   string            `json:"target" yaml:"target"`
	OK       bool              `json:"ok" yaml:"ok"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
	Chain    []models.CardLink `json:"chain,omitempty" yaml:"chain,omitempty"`
	Mismatch string            `json:"mismatch,omitempty" yaml:"mismatch,omitempty"`
}

// Report is the result of running one scenario.
type Report struct {
	Name     string               `json:"name" yaml:"name"`
	Path     string               `json:"path,omitempty" yaml:"path,omitempty"`
	Checksum string               `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Steps    []StepResult         `json:"steps" yaml:"steps"`
	Failures int                  `json:"failures" yaml:"failures"`
	Final    linkservice.Snapshot `json:"final" yaml:"final"`
}

// Passed reports whether every step met its expectation.
func (r *Report) Passed() bool {
	return r.Failures == 0
}

// Run executes s against a new link service. Cards listed under the
// scenario's cards key are registered first, as if they were add steps.
func Run(ctx context.Context, s *Scenario, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("scenario", s.Name))
	svc := linkservice.New(logger)

	steps := make([]Step, 0, len(s.Cards)+len(s.Steps))
	for i := range s.Cards {
		steps = append(steps, Step{Op: OpAdd, Card: &s.Cards[i], Expect: ExpectOK})
	}
	steps = append(steps, s.Steps...)

	rep := &Report{Name: s.Name, Path: s.Path, Checksum: s.Checksum, Steps: make([]StepResult, 0, len(steps))}
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := runStep(ctx, svc, st)
		res.Index = i + 1
		if res.Mismatch != "" {
			rep.Failures++
			logger.Info("step mismatch",
				slog.Int("step", res.Index),
				slog.String("op", res.Op),
				slog.String("mismatch", res.Mismatch))
		}
		rep.Steps = append(rep.Steps, res)
	}
	rep.Final = svc.Snapshot(ctx)

	logger.Debug("scenario finished",
		slog.Int("steps", len(rep.Steps)),
		slog.Int("failures", rep.Failures))
	return rep, nil
}

func runStep(ctx context.Context, svc *linkservice.Service, st Step) StepResult {
	res := StepResult{Op: st.Op}

	var err error
	switch st.Op {
	case OpAdd:
		res.Target = st.Card.ID
		err = svc.AddCard(ctx, *st.Card)
	case OpLink:
		res.Target = st.Primary + "->" + st.Linked
		err = svc.Link(ctx, st.Primary, st.Linked, st.Reason)
	case OpDelink:
		res.Target = st.Group
		err = svc.Delink(ctx, st.Group)
	case OpSwap:
		res.Target = st.Group
		err = svc.Swap(ctx, st.Group)
	case OpChain:
		res.Target = st.Group
		res.Chain = svc.Chain(ctx, st.Group)
		res.OK = len(res.Chain) > 0
		if st.Want != nil {
			res.Mismatch = compareChain(st.Group, st.Want, res.Chain)
		}
		return res
	default:
		err = fmt.Errorf("unsupported op %q", st.Op)
	}

	res.OK = err == nil
	if err != nil {
		res.Error = err.Error()
	}
	res.Mismatch = checkExpect(st.Expect, err)
	return res
}

func checkExpect(expect string, err error) string {
	switch {
	case expect == ExpectOK && err != nil:
		return "expected ok, got " + err.Error()
	case expect == ExpectFail && err == nil:
		return "expected failure, got ok"
	case expect == "" && err != nil && !apperr.IsPrecondition(err):
		// Bad references and unknown ops are scenario bugs, not outcomes.
		return err.Error()
	}
	return ""
}

func compareChain(group string, want []string, got []models.CardLink) string {
	wantLinks := make([]models.CardLink, 0, len(want))
	for _, w := range want {
		p, l, err := ParseEdge(w)
		if err != nil {
			return err.Error()
		}
		wantLinks = append(wantLinks, models.CardLink{PrimaryCardID: p, LinkedCardID: l, GroupID: group})
	}
	if len(wantLinks) != len(got) {
		return fmt.Sprintf("want %s, got %s", strings.Join(want, ", "), FormatChain(got))
	}
	for i := range got {
		if got[i].PrimaryCardID != wantLinks[i].PrimaryCardID ||
			got[i].LinkedCardID != wantLinks[i].LinkedCardID ||
			got[i].GroupID != group {
			return fmt.Sprintf("want %s, got %s", strings.Join(want, ", "), FormatChain(got))
		}
	}
	return ""
}

// FormatChain renders a chain as "a->b, b->c"; an empty chain renders as "(none)".
func FormatChain(chain []models.CardLink) string {
	if len(chain) == 0 {
		return "(none)"
	}
	parts := make([]string, len(chain))
	for i, e := range chain {
		parts[i] = e.PrimaryCardID + "->" + e.LinkedCardID
	}
	return strings.Join(parts, ", ")
}

// ErrFailed is returned by callers that treat any mismatching report as a failed run.
var ErrFailed = errors.New("scenario failed")
