// Coordinator runs the validate-then-render sequence for one trigger.

package render

import (
	"github.com/yumyai/snpview/logger"
	"github.com/yumyai/snpview/pkg/model"
	"go.uber.org/zap"
)

// State is the slice of session state the coordinator writes. The
// session package owns the full record.
type State interface {
	MarkValidated(bool)
	SetQuery(chromosome string, flank, position int64)
}

type Coordinator struct {
	Validator *model.Validator
	Pipeline  Pipeline

	// Observer hooks driving the UI progress indicator. Either may be
	// nil.
	OnStart  func(q model.Query)
	OnFinish func(o Outcome)
}

// HandleTrigger validates the request and, if it passes, runs the
// pipeline synchronously. Validation is always fresh - a validated
// flag left over from an earlier trigger is never trusted.
//
// A failed validation touches nothing but the validated flag. A
// pipeline failure leaves validated set: the query itself was
// acceptable, only execution failed.
func (c *Coordinator) HandleTrigger(req Request, files *model.FileSet, st State) Outcome {

	res := c.Validator.Validate(req.Query, files)

	if !res.Passed {
		st.MarkValidated(false)
		logger.Info("Trigger rejected",
			zap.String("locus", req.Query.Locus()),
			zap.String("source", string(req.Source)),
			zap.Strings("reasons", res.Reasons),
		)
		return Outcome{Status: StatusRejected, Reasons: res.Reasons}
	}

	st.MarkValidated(true)
	st.SetQuery(req.Query.Chromosome, req.Query.Flank, req.Query.Position)

	if c.OnStart != nil {
		c.OnStart(req.Query)
	}

	artifacts, err := c.Pipeline.Render(req.Query, files)

	var out Outcome
	if err != nil {
		logger.Error("Render pipeline failed",
			zap.String("locus", req.Query.Locus()),
			zap.Error(err),
		)
		out = Outcome{Status: StatusFailed, Err: err}
	} else {
		logger.Info("Render finished",
			zap.String("locus", req.Query.Locus()),
			zap.Int("artifacts", len(artifacts)),
		)
		out = Outcome{Status: StatusRendered, Artifacts: artifacts}
	}

	if c.OnFinish != nil {
		c.OnFinish(out)
	}
	return out
}
