package engine

import (
	"errors"
	"fmt"
)

// Rules bundles every declarative table the engine consults
type Rules struct {
	Risks           []RiskBinding        `json:"risks" yaml:"risks"`
	Summary         []SummaryRule        `json:"summary" yaml:"summary"`
	Recommendations []RecommendationRule `json:"recommendations" yaml:"recommendations"`
	Deepening       []DeepeningRule      `json:"deepening" yaml:"deepening"`
}

// DefaultRules returns the stock rule tables
func DefaultRules() Rules {
	return Rules{
		Risks: DefaultRiskBindings(),
		Summary: []SummaryRule{
			{Condition: Condition{Metric: RiskStress, Op: CmpGT, Threshold: 70}, Text: "Nível de estresse elevado detectado."},
			{Condition: Condition{Metric: RiskSleepQuality, Op: CmpLT, Threshold: 50}, Text: "Qualidade de sono pode ser melhorada."},
			{Condition: Condition{Metric: RiskReadiness, Op: CmpGTE, Threshold: 60}, Text: "Boa prontidão para mudanças de hábitos."},
		},
		Recommendations: []RecommendationRule{
			{Condition: Condition{Metric: RiskStress, Op: CmpGT, Threshold: 60}, Text: "Incluir técnicas de manejo de estresse, como respiração diafragmática e pausas ativas."},
			{Condition: Condition{Metric: RiskSleepQuality, Op: CmpLT, Threshold: 50}, Text: "Trabalhar higiene do sono: horários regulares e menos telas antes de dormir."},
			{Condition: Condition{Metric: RiskDropout, Op: CmpGT, Threshold: 50}, Text: "Agendar retornos mais frequentes para reduzir o risco de abandono."},
		},
		Deepening: DefaultDeepeningRules(),
	}
}

// Validate checks that every table entry names known metrics and operators
func (r Rules) Validate() error {
	var errs []error
	for i, b := range r.Risks {
		if !b.Key.Valid() {
			errs = append(errs, fmt.Errorf("risks[%d]: unknown metric %q", i, b.Key))
		}
		switch b.Strategy {
		case StrategyAvg, StrategyMax, StrategyMin, StrategyWeighted:
		default:
			errs = append(errs, fmt.Errorf("risks[%d]: unknown strategy %q", i, b.Strategy))
		}
		if len(b.Tags) == 0 {
			errs = append(errs, fmt.Errorf("risks[%d]: no tags", i))
		}
	}
	for i, s := range r.Summary {
		if err := validateText(s.Condition, s.Text); err != nil {
			errs = append(errs, fmt.Errorf("summary[%d]: %w", i, err))
		}
	}
	for i, s := range r.Recommendations {
		if err := validateText(s.Condition, s.Text); err != nil {
			errs = append(errs, fmt.Errorf("recommendations[%d]: %w", i, err))
		}
	}
	for i, d := range r.Deepening {
		if d.Question.ID == "" {
			errs = append(errs, fmt.Errorf("deepening[%d]: question without id", i))
		}
		for j, t := range d.Triggers {
			switch t.Op {
			case TriggerIn:
				if len(t.Values) == 0 {
					errs = append(errs, fmt.Errorf("deepening[%d].triggers[%d]: in without values", i, j))
				}
			case TriggerGT, TriggerGTE, TriggerLT, TriggerLTE:
			default:
				errs = append(errs, fmt.Errorf("deepening[%d].triggers[%d]: unknown op %q", i, j, t.Op))
			}
			if t.Tag == "" && t.QuestionID == "" {
				errs = append(errs, fmt.Errorf("deepening[%d].triggers[%d]: needs tag or questionId", i, j))
			}
		}
	}
	return errors.Join(errs...)
}

func validateText(c Condition, text string) error {
	if !c.Metric.Valid() {
		return fmt.Errorf("unknown metric %q", c.Metric)
	}
	switch c.Op {
	case CmpGT, CmpGTE, CmpLT, CmpLTE:
	default:
		return fmt.Errorf("unknown op %q", c.Op)
	}
	if text == "" {
		return errors.New("empty text")
	}
	return nil
}
