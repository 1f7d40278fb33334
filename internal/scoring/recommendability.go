package scoring

import (
	"math"

	"github.com/lucera/minicheck/internal/model"
	"github.com/lucera/minicheck/internal/signals"
)

const (
	weightAccess        = 0.20
	weightEntitySchema  = 0.35
	weightTrustSignals  = 0.25
	weightAnswerability = 0.20

	answerableContent = 1200
)

// capRule limits the composite score when a critical signal is missing.
type capRule struct {
	limit   int
	reason  string
	applies func(signals.Signals) bool
}

var capRules = []capRule{
	{
		limit:   75,
		reason:  "missing medical schema entities (MedicalClinic / Physician / MedicalService)",
		applies: func(sig signals.Signals) bool { return !sig.HasMedicalSchema },
	},
}

// Recommendability computes the four pillars, their weighted composite and
// any caps. Every triggered cap is reported; the lowest one wins.
func Recommendability(sig signals.Signals) model.AIScore {
	p := model.Pillars{
		Access:        accessPillar(sig),
		EntitySchema:  entitySchemaPillar(sig),
		TrustSignals:  trustPillar(sig),
		Answerability: answerabilityPillar(sig),
	}

	composite := weightAccess*float64(p.Access) +
		weightEntitySchema*float64(p.EntitySchema) +
		weightTrustSignals*float64(p.TrustSignals) +
		weightAnswerability*float64(p.Answerability)

	res := model.AIScore{Pillars: p, CapReasons: []string{}}
	for _, rule := range capRules {
		if !rule.applies(sig) {
			continue
		}
		if res.Cap == nil || rule.limit < *res.Cap {
			limit := rule.limit
			res.Cap = &limit
		}
		res.CapReasons = append(res.CapReasons, rule.reason)
	}

	if res.Cap != nil {
		composite = math.Min(composite, float64(*res.Cap))
	}
	res.Score = int(math.Round(composite))

	return res
}

func accessPillar(sig signals.Signals) int {
	v := 100
	if sig.NoIndex {
		v -= 60
	}
	if sig.TextLength < thinContent {
		v -= 20
	}
	return clamp(v)
}

func entitySchemaPillar(sig signals.Signals) int {
	v := 100
	if len(sig.SchemaTypes) == 0 {
		v -= 60
	}
	if !sig.HasMedicalSchema {
		v -= 50
	}
	if !sig.HasMedicalClinic {
		v -= 30
	}
	if !sig.HasPhysician {
		v -= 20
	}
	return clamp(v)
}

func trustPillar(sig signals.Signals) int {
	v := 100
	if !sig.HasPhone && !sig.HasEmail {
		v -= 30
	}
	if !sig.HasMedicalClinic {
		v -= 30
	}
	return clamp(v)
}

func answerabilityPillar(sig signals.Signals) int {
	v := 100
	if !sig.HasFAQ {
		v -= 20
	}
	if sig.TextLength < answerableContent {
		v -= 30
	}
	return clamp(v)
}

func clamp(v int) int {
	return max(0, min(100, v))
}
