package pipeline

import (
	"fmt"
	"strings"

	"github.com/sells-group/valuation-agent/internal/model"
)

// CollectData grades the completeness of the subject's required
// attributes. Missing data is recorded in the log, never returned as an
// error; only an unsupported property type faults the stage.
func CollectData(s model.Subject) (Collected, error) {
	if !s.Type.Valid() {
		return Collected{}, stageErr(CodeInvalidProperty, fmt.Sprintf("unsupported property type %q", s.Type), nil)
	}

	missing := s.MissingRequired()
	out := Collected{
		Subject: s,
		Intake: model.IntakeAssessment{
			Completeness:  completeness(len(missing)),
			MissingFields: missing,
			QualityScore:  max(0, 100-20*len(missing)),
		},
		Log:  model.NewLog(),
		Step: model.StepDataCollected,
	}

	switch out.Intake.Completeness {
	case model.CompletenessIncomplete:
		out.Log = out.Log.Error("Insufficient property data: missing " + strings.Join(missing, ", "))
	case model.CompletenessPartial:
		out.Log = out.Log.Warn("Some property data missing: " + strings.Join(missing, ", "))
	}
	return out, nil
}

func completeness(missing int) model.Completeness {
	switch {
	case missing == 0:
		return model.CompletenessComplete
	case missing <= 2:
		return model.CompletenessPartial
	default:
		return model.CompletenessIncomplete
	}
}
