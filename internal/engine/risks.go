package engine

// Strategy reduces a list of scores into one value
type Strategy string

const (
	StrategyAvg      Strategy = "avg"
	StrategyMax      Strategy = "max"
	StrategyMin      Strategy = "min"
	StrategyWeighted Strategy = "weighted"
)

// RiskKey names one of the four risk metrics
type RiskKey string

const (
	RiskReadiness    RiskKey = "readiness"
	RiskDropout      RiskKey = "dropoutRisk"
	RiskStress       RiskKey = "stress"
	RiskSleepQuality RiskKey = "sleepQuality"
)

// RiskKeys lists every metric in display order
var RiskKeys = []RiskKey{RiskReadiness, RiskDropout, RiskStress, RiskSleepQuality}

// Valid reports whether k is one of the four known metrics
func (k RiskKey) Valid() bool {
	switch k {
	case RiskReadiness, RiskDropout, RiskStress, RiskSleepQuality:
		return true
	}
	return false
}

// Risks holds the four metrics, each in [0,100]
type Risks struct {
	Readiness    int `json:"readiness" bson:"readiness"`
	DropoutRisk  int `json:"dropoutRisk" bson:"dropoutRisk"`
	Stress       int `json:"stress" bson:"stress"`
	SleepQuality int `json:"sleepQuality" bson:"sleepQuality"`
}

// Get returns the metric for k
func (r Risks) Get(k RiskKey) (int, bool) {
	switch k {
	case RiskReadiness:
		return r.Readiness, true
	case RiskDropout:
		return r.DropoutRisk, true
	case RiskStress:
		return r.Stress, true
	case RiskSleepQuality:
		return r.SleepQuality, true
	}
	return 0, false
}

func (r *Risks) set(k RiskKey, v int) {
	switch k {
	case RiskReadiness:
		r.Readiness = v
	case RiskDropout:
		r.DropoutRisk = v
	case RiskStress:
		r.Stress = v
	case RiskSleepQuality:
		r.SleepQuality = v
	}
}

// RiskBinding binds a metric to its source tags
type RiskBinding struct {
	Key      RiskKey  `json:"key" yaml:"key"`
	Tags     []string `json:"tags" yaml:"tags"`
	Strategy Strategy `json:"strategy" yaml:"strategy"`
	Default  int      `json:"default" yaml:"default"`
}

// DefaultRiskBindings returns the stock binding table
func DefaultRiskBindings() []RiskBinding {
	return []RiskBinding{
		{Key: RiskStress, Tags: []string{"stress"}, Strategy: StrategyAvg, Default: 50},
		{Key: RiskSleepQuality, Tags: []string{"sleep"}, Strategy: StrategyAvg, Default: 50},
		{Key: RiskReadiness, Tags: []string{"readiness", "exercise", "physical_activity"}, Strategy: StrategyAvg, Default: 50},
		{Key: RiskDropout, Tags: []string{"food_emotional", "dropout"}, Strategy: StrategyAvg, Default: 30},
	}
}

// ComputeRisks reduces tag scores into the four metrics. Metrics without a
// binding keep the stock default
func ComputeRisks(scores TagScores, bindings []RiskBinding) Risks {
	var risks Risks
	for _, b := range DefaultRiskBindings() {
		risks.set(b.Key, b.Default)
	}
	for _, b := range bindings {
		var collected []int
		for _, tag := range b.Tags {
			collected = append(collected, scores[tag]...)
		}
		if len(collected) == 0 {
			risks.set(b.Key, clamp(b.Default, 0, 100))
			continue
		}
		risks.set(b.Key, clamp(aggregate(b.Strategy, collected), 0, 100))
	}
	return risks
}

func aggregate(s Strategy, values []int) int {
	switch s {
	case StrategyMax:
		m := values[0]
		for _, v := range values[1:] {
			m = max(m, v)
		}
		return m
	case StrategyMin:
		m := values[0]
		for _, v := range values[1:] {
			m = min(m, v)
		}
		return m
	case StrategyWeighted:
		var sum, weights float64
		for i, v := range values {
			w := float64(i + 1)
			sum += w * float64(v)
			weights += w
		}
		return round(sum / weights)
	default:
		var sum float64
		for _, v := range values {
			sum += float64(v)
		}
		return round(sum / float64(len(values)))
	}
}
