package scheduler

import (
	"sort"
	"time"

	"github.com/segal-development/nurtureflow/pkg/schema"
)

// ScheduledSend is one planned message delivery for an enrolled prospect.
type ScheduledSend struct {
	StageID string
	Label   string
	Channel schema.Channel
	SendAt  time.Time
}

// Timeline computes the send plan for a prospect enrolled at the given
// instant. Wait days accumulate across stages in orden order, a stage's
// fecha_inicio overrides the accumulated offset, and inactive stages are
// skipped without consuming their wait.
func Timeline(def schema.FlowDefinition, enrolledAt time.Time) ([]ScheduledSend, error) {
	stages := make([]schema.StageData, len(def.Stages))
	copy(stages, def.Stages)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	var plan []ScheduledSend
	offset := 0
	for _, stage := range stages {
		if !stage.Active {
			continue
		}
		offset += stage.WaitDays

		sendAt := enrolledAt.AddDate(0, 0, offset)
		if stage.StartDate != "" {
			start, err := time.Parse("2006-01-02", stage.StartDate)
			if err != nil {
				return nil, schema.NewErrorf(schema.ErrCodeValidation,
					"invalid fecha_inicio %q", stage.StartDate).
					WithNode(stage.ID).
					WithCause(err)
			}
			sendAt = start
		}

		plan = append(plan, ScheduledSend{
			StageID: stage.ID,
			Label:   stage.Label,
			Channel: stage.TipoMensaje,
			SendAt:  sendAt,
		})
	}
	return plan, nil
}
