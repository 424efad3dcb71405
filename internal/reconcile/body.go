package reconcile

import (
	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

// Body returns the wire form of o. Errors without a known code carry only their short reason.
func (o Outcome) Body() models.LinkResult {
	res := models.LinkResult{Op: string(o.Op), ScannerID: o.MemberID, AssignmentID: o.AssignmentID}
	if o.Err != nil {
		res.Code = shared.ErrorCode(o.Err)
		res.Error = o.Err.Error()
		if res.Code == shared.CodeInternal {
			res.Error = Reason(o.Err)
		}
	}
	return res
}

// Body returns the wire form of r: successes first, then failures.
func (r *Result) Body() models.SyncResultBody {
	body := models.SyncResultBody{
		Status:      r.Status().String(),
		Message:     r.Message(),
		Results:     make([]models.LinkResult, 0, len(r.Succeeded)+len(r.Failed)),
		Assignments: r.After,
	}
	for _, o := range r.Succeeded {
		body.Results = append(body.Results, o.Body())
	}
	for _, o := range r.Failed {
		body.Results = append(body.Results, o.Body())
	}
	return body
}
