package linear

import "math"

// Term is one weighted indicator of an additive model.
type Term[K comparable] struct {
	Key    K
	Weight float64
}

// Model is a hand-calibrated additive score: the intercept plus the weight of
// every active term. Models are values and are never mutated after
// declaration.
type Model[K comparable] struct {
	Name      string
	Intercept float64
	Terms     []Term[K]
}

// Score returns the raw additive score and the terms that fired, in model
// order.
func (m Model[K]) Score(active func(K) bool) (float64, []Term[K]) {
	sum := m.Intercept
	var fired []Term[K]
	for _, term := range m.Terms {
		if !active(term.Key) {
			continue
		}
		sum += term.Weight
		fired = append(fired, term)
	}
	return sum, fired
}

// Probability passes the score through the logistic link.
func (m Model[K]) Probability(active func(K) bool) (float64, []Term[K]) {
	score, fired := m.Score(active)
	return Sigmoid(score), fired
}

func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Keys returns the keys of terms in order.
func Keys[K comparable](terms []Term[K]) []K {
	keys := make([]K, len(terms))
	for i, t := range terms {
		keys[i] = t.Key
	}
	return keys
}
